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
	"context"

	v1 "helm.sh/helm/v4/pkg/release/v1"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/client-go/kubernetes"

	"github.com/prometheus-mcp-server/pmcpctl/internal/values"
)

// RuntimeProvider defines the interface for runtime dependency management.
type RuntimeProvider interface {
	// Helm returns a configured Helm client for release operations
	Helm() (HelmClient, error)

	// Kubernetes returns a configured Kubernetes clientset
	Kubernetes() (KubernetesClient, error)

	// Values loads and returns the layered chart values
	Values(ctx context.Context) (*values.Result, error)

	// ReleaseName returns the release the invocation operates on
	ReleaseName() string

	// DebugKeepTempChart returns whether temporary chart directories should be kept
	DebugKeepTempChart() bool

	// Close performs cleanup of resources held by the runtime
	Close() error
}

// HelmClient defines the release operations used by the commands.
type HelmClient interface {
	// Install installs or upgrades the release with the given values
	Install(ctx context.Context, releaseName string, vals map[string]any, dryRun bool) error

	// Uninstall removes a release
	Uninstall(ctx context.Context, releaseName string) error

	// Get retrieves the latest revision of a release
	Get(ctx context.Context, releaseName string) (*v1.Release, error)

	// List returns the managed releases matching the selector
	List(ctx context.Context, selector labels.Selector) ([]*v1.Release, error)

	// History returns up to max revisions of a release
	History(ctx context.Context, releaseName string, max int) ([]*v1.Release, error)

	// Rollback rolls a release back to a revision, zero meaning the previous one
	Rollback(ctx context.Context, releaseName string, revision int) error

	// Close releases cached resources
	Close() error
}

// KubernetesClient defines the interface for Kubernetes operations.
type KubernetesClient interface {
	kubernetes.Interface
}

// LoggerProvider defines the logging surface the runtime depends on.
type LoggerProvider interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
	With(keyvals ...any) LoggerProvider
}
