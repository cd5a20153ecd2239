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

// Package naming derives the resource names, labels and image references used
// by the prometheus-mcp-server chart. Every function here reproduces the output
// of the matching named template in the chart's _helpers.tpl.
package naming

// Chart is the subset of Chart.yaml metadata the helpers read.
type Chart struct {
	Name       string `json:"name" yaml:"name"`
	Version    string `json:"version" yaml:"version"`
	AppVersion string `json:"appVersion,omitempty" yaml:"appVersion,omitempty"`
}

// ServiceAccount mirrors the serviceAccount block of values.yaml.
type ServiceAccount struct {
	Create bool   `json:"create" yaml:"create"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Image describes a container image. Version is either a tag or a
// "sha256:"-prefixed digest.
type Image struct {
	Registry   string `json:"registry" yaml:"registry"`
	Repository string `json:"repository" yaml:"repository"`
	Version    string `json:"version,omitempty" yaml:"version,omitempty"`
}

// Values holds the user-overridable fields the helpers consult.
type Values struct {
	NameOverride     string         `json:"nameOverride,omitempty" yaml:"nameOverride,omitempty"`
	FullnameOverride string         `json:"fullnameOverride,omitempty" yaml:"fullnameOverride,omitempty"`
	ServiceAccount   ServiceAccount `json:"serviceAccount" yaml:"serviceAccount"`
	Image            Image          `json:"image" yaml:"image"`
}

// Release identifies a deployed instance of the chart.
type Release struct {
	Name      string `json:"name" yaml:"name"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Service   string `json:"service" yaml:"service"`
}

// Context is the render-time input for every helper. It is built once per
// render and never mutated.
type Context struct {
	Chart   Chart
	Values  Values
	Release Release
}
