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

package helm

// Chart preparation
const (
	// TempChartPrefix is the prefix for temporary chart directories
	TempChartPrefix = "pmcpctl-chart-"

	// TempChartCopyPrefix is the prefix for per-operation chart copies
	TempChartCopyPrefix = "pmcpctl-chart-copy-"
)

// Release storage labels
const (
	// LabelManagedBy marks releases installed by this tool.
	LabelManagedBy = "pmcpctl.dev/managed-by"

	// LabelChartVersion records the embedded chart version of a revision.
	LabelChartVersion = "pmcpctl.dev/chart-version"

	// ManagedByValue is the value of LabelManagedBy.
	ManagedByValue = "pmcpctl"
)

// Client defaults
const (
	DefaultStorageDriver = "secret"
	DefaultHistoryMax    = 10
)

// StorageDrivers lists the release storage backends NewClient accepts.
var StorageDrivers = []string{"secret", "configmap", "memory"}
