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

package runtime

import (
	"slices"
	"time"

	"github.com/prometheus-mcp-server/pmcpctl/internal/helm"
)

const (
	DefaultTimeout       = 10 * time.Minute
	DefaultStorageDriver = helm.DefaultStorageDriver
	DefaultNamespace     = "default"

	// DefaultReleaseName is the release managed when --release is not given.
	DefaultReleaseName = "prometheus-mcp-server"
)

// Storage drivers accepted by --storage-driver. Memory is for tests and dry runs.
const (
	HelmStorageDriverSecret    = "secret"
	HelmStorageDriverConfigMap = "configmap"
	HelmStorageDriverMemory    = "memory"
)

// Bounds for --timeout.
const (
	HelmTimeoutMin = 30 * time.Second
	HelmTimeoutMax = 60 * time.Minute
)

// Environment fallbacks for persistent flags.
const (
	KubeConfigEnvVar = "KUBECONFIG"
	NamespaceEnvVar  = "PMCP_NAMESPACE"
	DebugEnvVar      = "PMCP_DEBUG"
)

// ValidateTimeout reports whether timeout lies within the accepted bounds.
func ValidateTimeout(timeout time.Duration) bool {
	return timeout >= HelmTimeoutMin && timeout <= HelmTimeoutMax
}

func ValidateStorageDriver(driver string) bool {
	return slices.Contains(helm.StorageDrivers, driver)
}

// GetValidStorageDrivers returns the accepted storage drivers.
func GetValidStorageDrivers() []string {
	return slices.Clone(helm.StorageDrivers)
}
