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

package naming

// Kubernetes object names and label values are bounded by the DNS label limit.
const MaxNameLength = 63

// Label keys written by the chart.
const (
	LabelChart     = "helm.sh/chart"
	LabelName      = "app.kubernetes.io/name"
	LabelInstance  = "app.kubernetes.io/instance"
	LabelVersion   = "app.kubernetes.io/version"
	LabelManagedBy = "app.kubernetes.io/managed-by"
)

const (
	// DefaultServiceAccountName is used when no account is created and none is named.
	DefaultServiceAccountName = "default"

	// DigestPrefix marks an image version as a content digest instead of a tag.
	DigestPrefix = "sha256:"

	// DefaultReleaseService is what Helm reports as .Release.Service.
	DefaultReleaseService = "Helm"
)
