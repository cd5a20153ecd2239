// Copyright 2025 The pmcpctl Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package values loads, layers and validates the chart values of a release.
package values

import "github.com/prometheus-mcp-server/pmcpctl/internal/naming"

// Values is the typed view of the keys the tooling reads. Keys it does not
// model stay available in the raw tree.
type Values struct {
	ReplicaCount     int            `json:"replicaCount"`
	NameOverride     string         `json:"nameOverride"`
	FullnameOverride string         `json:"fullnameOverride"`
	Image            Image          `json:"image"`
	ServiceAccount   ServiceAccount `json:"serviceAccount"`
	Prometheus       Prometheus     `json:"prometheus"`
	Server           Server         `json:"server"`
	Service          Service        `json:"service"`
}

type Image struct {
	Registry   string `json:"registry"`
	Repository string `json:"repository"`
	Version    string `json:"version"`
	PullPolicy string `json:"pullPolicy"`
}

type ServiceAccount struct {
	Create      bool              `json:"create"`
	Automount   bool              `json:"automount"`
	Annotations map[string]string `json:"annotations"`
	Name        string            `json:"name"`
}

// Prometheus holds the connection settings passed to the server container.
type Prometheus struct {
	URL            string `json:"url"`
	OrgID          string `json:"orgId"`
	ExistingSecret string `json:"existingSecret"`
}

type Server struct {
	Transport string `json:"transport"`
	Port      int    `json:"port"`
}

type Service struct {
	Type string `json:"type"`
	Port int    `json:"port"`
}

// Naming returns the subset of values consumed by the naming helpers.
func (v *Values) Naming() naming.Values {
	return naming.Values{
		NameOverride:     v.NameOverride,
		FullnameOverride: v.FullnameOverride,
		ServiceAccount: naming.ServiceAccount{
			Create: v.ServiceAccount.Create,
			Name:   v.ServiceAccount.Name,
		},
		Image: naming.Image{
			Registry:   v.Image.Registry,
			Repository: v.Image.Repository,
			Version:    v.Image.Version,
		},
	}
}
