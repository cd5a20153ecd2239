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

// Package helm manages prometheus-mcp-server releases through the Helm SDK.
package helm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"helm.sh/helm/v4/pkg/action"
	"helm.sh/helm/v4/pkg/chart/v2/loader"
	"helm.sh/helm/v4/pkg/cli"
	"helm.sh/helm/v4/pkg/kube"
	v1 "helm.sh/helm/v4/pkg/release/v1"
	"helm.sh/helm/v4/pkg/storage/driver"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/selection"

	"github.com/prometheus-mcp-server/pmcpctl/internal/chart"
	"github.com/prometheus-mcp-server/pmcpctl/internal/logging"
)

type Client struct {
	settings      *cli.EnvSettings
	config        *action.Configuration
	timeout       time.Duration
	namespace     string
	kubeconfig    string
	storageDriver string
	debug         bool
}

// Option is a functional option for configuring the Helm client
type Option func(*Client)

// WithNamespace sets the Kubernetes namespace for Helm operations
func WithNamespace(namespace string) Option {
	return func(c *Client) {
		c.namespace = namespace
	}
}

// WithKubeconfig sets the path to the kubeconfig file
func WithKubeconfig(kubeconfig string) Option {
	return func(c *Client) {
		c.kubeconfig = kubeconfig
	}
}

// WithStorageDriver sets the Helm storage driver (secret, configmap, or memory)
func WithStorageDriver(driver string) Option {
	return func(c *Client) {
		c.storageDriver = driver
	}
}

// WithTimeout sets the default timeout for Helm operations
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithDebug keeps expanded chart directories on disk.
func WithDebug(keep bool) Option {
	return func(c *Client) {
		c.debug = keep
	}
}

// NewClient initializes the Helm action configuration.
// The storage driver defaults to "secret" and the timeout to 5 minutes.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		storageDriver: DefaultStorageDriver,
		timeout:       5 * time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}

	if !slices.Contains(StorageDrivers, c.storageDriver) {
		return nil, fmt.Errorf("invalid storage driver '%s': must be one of %s", c.storageDriver, strings.Join(StorageDrivers, ", "))
	}

	settings := cli.New()
	if c.kubeconfig != "" {
		settings.KubeConfig = c.kubeconfig
	}
	if c.namespace != "" {
		settings.SetNamespace(c.namespace)
	}

	c.config = new(action.Configuration)
	if err := c.config.Init(settings.RESTClientGetter(), settings.Namespace(), c.storageDriver); err != nil {
		return nil, fmt.Errorf("failed to initialize Helm configuration: %w", err)
	}
	c.settings = settings

	return c, nil
}

// Namespace returns the namespace releases are managed in.
func (c *Client) Namespace() string {
	return c.settings.Namespace()
}

// StorageLabels returns the labels stored with every release revision.
func StorageLabels(meta *chart.Metadata) map[string]string {
	return map[string]string{
		LabelManagedBy:    ManagedByValue,
		LabelChartVersion: meta.Version,
	}
}

// Install installs the embedded chart as releaseName, or upgrades it when the
// release already has history. Dry runs are always client-only installs.
func (c *Client) Install(ctx context.Context, releaseName string, values map[string]any, dryRun bool) error {
	if releaseName == "" {
		return errors.New("release name cannot be empty")
	}
	logger := logging.FromContext(ctx).With("release", releaseName)

	meta, err := chart.LoadMetadata()
	if err != nil {
		return err
	}
	storageLabels := StorageLabels(meta)

	chartPath, err := PrepareChart(ctx)
	if err != nil {
		return fmt.Errorf("failed to prepare chart: %w", err)
	}
	if c.debug {
		logger.Debug("Keeping expanded chart", "path", chartPath)
	} else {
		defer os.RemoveAll(chartPath)
	}

	ch, err := loader.Load(chartPath)
	if err != nil {
		return fmt.Errorf("failed to load chart: %w", err)
	}

	if dryRun {
		install := action.NewInstall(c.config)
		install.ReleaseName = releaseName
		install.Namespace = c.settings.Namespace()
		install.CreateNamespace = true
		install.Timeout = c.timeout
		install.WaitStrategy = kube.StatusWatcherStrategy
		install.RollbackOnFailure = true
		install.DryRun = true
		install.ClientOnly = true
		install.DisableHooks = true
		install.DisableOpenAPIValidation = true
		install.Labels = storageLabels

		if _, err := install.RunWithContext(ctx, ch, values); err != nil {
			return c.wrapHelmError("install", releaseName, err)
		}
		return nil
	}

	history := action.NewHistory(c.config)
	history.Max = 1
	if _, histErr := history.Run(releaseName); histErr != nil {
		logger.Debug("No release history, installing", "err", histErr)

		install := action.NewInstall(c.config)
		install.ReleaseName = releaseName
		install.Namespace = c.settings.Namespace()
		install.CreateNamespace = true
		install.Timeout = c.timeout
		install.WaitStrategy = kube.StatusWatcherStrategy
		install.RollbackOnFailure = true
		install.Labels = storageLabels

		if _, err := install.RunWithContext(ctx, ch, values); err != nil {
			return c.wrapHelmError("install", releaseName, err)
		}
		return nil
	}

	logger.Debug("Release exists, upgrading")
	upgrade := action.NewUpgrade(c.config)
	upgrade.Namespace = c.settings.Namespace()
	upgrade.Timeout = c.timeout
	upgrade.RollbackOnFailure = true
	upgrade.WaitStrategy = kube.StatusWatcherStrategy
	upgrade.Labels = storageLabels
	if _, err := upgrade.RunWithContext(ctx, releaseName, ch, values); err != nil {
		return c.wrapHelmError("upgrade", releaseName, err)
	}
	return nil
}

// ManagedSelector narrows selector to releases installed by this tool.
func ManagedSelector(selector labels.Selector) (labels.Selector, error) {
	if selector == nil {
		selector = labels.Everything()
	}
	req, err := labels.NewRequirement(LabelManagedBy, selection.Equals, []string{ManagedByValue})
	if err != nil {
		return nil, fmt.Errorf("failed to create managed-by label requirement: %w", err)
	}
	return selector.Add(*req), nil
}

// List returns the managed releases in the current namespace.
func (c *Client) List(ctx context.Context, selector labels.Selector) ([]*v1.Release, error) {
	selector, err := ManagedSelector(selector)
	if err != nil {
		return nil, err
	}

	lister := action.NewList(c.config)
	lister.All = false
	lister.AllNamespaces = false
	lister.Selector = selector.String()
	lister.StateMask = action.ListAll

	rels, err := lister.Run()
	if err != nil {
		return nil, c.wrapHelmError("list", "", err)
	}
	return rels, nil
}

// Get returns the latest revision of a release.
func (c *Client) Get(ctx context.Context, releaseName string) (*v1.Release, error) {
	get := action.NewGet(c.config)
	get.Version = 0
	rel, err := get.Run(releaseName)
	if err != nil {
		return nil, c.wrapHelmError("get", releaseName, err)
	}
	return rel, nil
}

// Uninstall removes a release. Missing releases are not an error.
func (c *Client) Uninstall(ctx context.Context, releaseName string) error {
	if releaseName == "" {
		return errors.New("release name cannot be empty")
	}

	un := action.NewUninstall(c.config)
	un.IgnoreNotFound = true
	un.KeepHistory = false
	un.Timeout = c.timeout
	un.WaitStrategy = kube.StatusWatcherStrategy

	if _, err := un.Run(releaseName); err != nil {
		return c.wrapHelmError("uninstall", releaseName, err)
	}
	return nil
}

// History returns up to max revisions of a release.
func (c *Client) History(ctx context.Context, releaseName string, max int) ([]*v1.Release, error) {
	if releaseName == "" {
		return nil, errors.New("release name cannot be empty")
	}
	if max <= 0 {
		max = DefaultHistoryMax
	}

	history := action.NewHistory(c.config)
	history.Max = max
	releases, err := history.Run(releaseName)
	if err != nil {
		return nil, c.wrapHelmError("history", releaseName, err)
	}
	return releases, nil
}

// Rollback rolls a release back to revision. Zero selects the previous one.
func (c *Client) Rollback(ctx context.Context, releaseName string, revision int) error {
	if releaseName == "" {
		return errors.New("release name cannot be empty")
	}

	rollback := action.NewRollback(c.config)
	rollback.Version = revision
	rollback.Timeout = c.timeout
	rollback.WaitStrategy = kube.StatusWatcherStrategy

	if err := rollback.Run(releaseName); err != nil {
		return c.wrapHelmError("rollback", releaseName, err)
	}
	return nil
}

// Close removes cached chart directories unless debug is set.
func (c *Client) Close() error {
	if c.debug {
		return nil
	}
	return ClearChartCache()
}

// wrapHelmError provides better error messages for common Helm errors.
func (c *Client) wrapHelmError(operation, releaseName string, err error) error {
	if errors.Is(err, driver.ErrReleaseNotFound) {
		return fmt.Errorf("release '%s' not found", releaseName)
	}
	errMsg := err.Error()

	switch {
	case strings.Contains(errMsg, "not found"):
		return fmt.Errorf("release '%s' not found", releaseName)
	case strings.Contains(errMsg, "another operation") || strings.Contains(errMsg, "pending"):
		return fmt.Errorf("another operation is in progress for release '%s', please try again later", releaseName)
	case strings.Contains(errMsg, "timeout"):
		return fmt.Errorf("operation timed out for release '%s': %w", releaseName, err)
	case strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "dial"):
		return fmt.Errorf("unable to connect to Kubernetes cluster: %w", err)
	case strings.Contains(errMsg, "forbidden") || strings.Contains(errMsg, "unauthorized"):
		return fmt.Errorf("insufficient permissions for %s operation on release '%s': %w", operation, releaseName, err)
	case strings.Contains(errMsg, "already exists"):
		return fmt.Errorf("release '%s' already exists", releaseName)
	default:
		return fmt.Errorf("helm %s failed for release '%s': %w", operation, releaseName, err)
	}
}
