package runtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/prometheus-mcp-server/pmcpctl/internal/helm"
	"github.com/prometheus-mcp-server/pmcpctl/internal/values"
)

// runtimeKey is a private context key for storing the Runtime in context
type runtimeKey struct{}

// Runtime holds per-invocation state and lazily initialized clients/resources.
// It implements the RuntimeProvider interface for dependency injection.
type Runtime struct {
	namespace   string
	kubeconfig  string
	releaseName string
	valuesOpts  values.Options

	storageDriver string
	debug         bool
	timeout       time.Duration

	logger LoggerProvider
	helm   HelmClient
	k8s    KubernetesClient
	values *values.Result
	mu     sync.Mutex

	// Factories are replaceable in tests.
	helmFactory  func(*Runtime) (HelmClient, error)
	k8sFactory   func(*Runtime) (KubernetesClient, error)
	valuesLoader func(context.Context, values.Options) (*values.Result, error)
}

// Option defines a functional option for configuring Runtime.
type Option func(*Runtime)

// WithNamespace sets the Kubernetes namespace.
func WithNamespace(namespace string) Option {
	return func(r *Runtime) {
		r.namespace = namespace
	}
}

// WithKubeconfig sets the kubeconfig file path.
func WithKubeconfig(kubeconfig string) Option {
	return func(r *Runtime) {
		r.kubeconfig = kubeconfig
	}
}

// WithReleaseName sets the release the invocation operates on.
func WithReleaseName(name string) Option {
	return func(r *Runtime) {
		r.releaseName = name
	}
}

// WithValuesOptions sets the value sources layered over the chart defaults.
func WithValuesOptions(opts values.Options) Option {
	return func(r *Runtime) {
		r.valuesOpts = opts
	}
}

// WithStorageDriver sets the storage driver (default: "secret").
func WithStorageDriver(driver string) Option {
	return func(r *Runtime) {
		r.storageDriver = driver
	}
}

// WithDebug controls whether to keep temporary chart directories.
func WithDebug(keep bool) Option {
	return func(r *Runtime) {
		r.debug = keep
	}
}

// WithTimeout sets the timeout for Helm operations.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Runtime) {
		r.timeout = timeout
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger LoggerProvider) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// WithHelmFactory sets a custom Helm client factory for testing.
func WithHelmFactory(factory func(*Runtime) (HelmClient, error)) Option {
	return func(r *Runtime) {
		r.helmFactory = factory
	}
}

// WithKubernetesFactory sets a custom Kubernetes client factory for testing.
func WithKubernetesFactory(factory func(*Runtime) (KubernetesClient, error)) Option {
	return func(r *Runtime) {
		r.k8sFactory = factory
	}
}

// WithValuesLoader sets a custom values loader for testing.
func WithValuesLoader(loader func(context.Context, values.Options) (*values.Result, error)) Option {
	return func(r *Runtime) {
		r.valuesLoader = loader
	}
}

func defaultHelmFactory(r *Runtime) (HelmClient, error) {
	var opts []helm.Option
	if r.namespace != "" {
		opts = append(opts, helm.WithNamespace(r.namespace))
	}
	if r.kubeconfig != "" {
		opts = append(opts, helm.WithKubeconfig(r.kubeconfig))
	}
	if r.storageDriver != "" {
		opts = append(opts, helm.WithStorageDriver(r.storageDriver))
	}
	if r.timeout > 0 {
		opts = append(opts, helm.WithTimeout(r.timeout))
	}
	if r.debug {
		opts = append(opts, helm.WithDebug(r.debug))
	}

	return helm.NewClient(opts...)
}

func defaultKubernetesFactory(r *Runtime) (KubernetesClient, error) {
	cfg, err := r.RESTConfig()
	if err != nil {
		return nil, err
	}
	cs, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes clientset: %w", err)
	}
	return cs, nil
}

// New constructs a Runtime with functional options.
func New(options ...Option) *Runtime {
	r := &Runtime{
		releaseName:   DefaultReleaseName,
		storageDriver: DefaultStorageDriver,
		timeout:       DefaultTimeout,
		helmFactory:   defaultHelmFactory,
		k8sFactory:    defaultKubernetesFactory,
		valuesLoader:  values.Load,
	}

	for _, option := range options {
		option(r)
	}

	return r
}

// WithRuntime returns a new context carrying the provided runtime.
func WithRuntime(ctx context.Context, rt *Runtime) context.Context {
	return context.WithValue(ctx, runtimeKey{}, rt)
}

// FromRuntime extracts a Runtime from the command context, or nil if absent.
func FromRuntime(ctx context.Context) *Runtime {
	if v := ctx.Value(runtimeKey{}); v != nil {
		if rt, ok := v.(*Runtime); ok {
			return rt
		}
	}
	return nil
}

func (r *Runtime) debugf(msg string, keyvals ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, keyvals...)
	}
}

// Helm returns a memoized Helm client configured for this runtime.
func (r *Runtime) Helm() (HelmClient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.helm != nil {
		return r.helm, nil
	}

	c, err := r.helmFactory(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create helm client (namespace=%q, kubeconfig=%q): %w",
			r.namespace, r.kubeconfig, err)
	}
	r.debugf("Initialized helm client", "namespace", r.Namespace(), "driver", r.storageDriver)
	r.helm = c
	return r.helm, nil
}

// Kubernetes returns a memoized Kubernetes clientset configured for this runtime.
func (r *Runtime) Kubernetes() (KubernetesClient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.k8s != nil {
		return r.k8s, nil
	}

	cs, err := r.k8sFactory(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}
	r.k8s = cs
	return r.k8s, nil
}

// Values loads and memoizes the layered chart values.
func (r *Runtime) Values(ctx context.Context) (*values.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.values != nil {
		return r.values, nil
	}

	res, err := r.valuesLoader(ctx, r.valuesOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to load values: %w", err)
	}
	r.debugf("Loaded values", "files", len(r.valuesOpts.Files), "set", len(r.valuesOpts.Set), "dropped", len(res.Dropped))
	r.values = res
	return res, nil
}

// Close performs cleanup of resources held by the runtime.
// It's safe to call multiple times.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	if r.helm != nil {
		if err := r.helm.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close helm client: %w", err))
		}
	}
	r.helm = nil
	r.k8s = nil
	r.values = nil

	return errors.Join(errs...)
}

// ReleaseName returns the release the invocation operates on.
func (r *Runtime) ReleaseName() string { return r.releaseName }

// DebugKeepTempChart returns whether temporary chart directories should be kept.
func (r *Runtime) DebugKeepTempChart() bool { return r.debug }

// Timeout returns the configured timeout for Helm operations.
func (r *Runtime) Timeout() time.Duration { return r.timeout }

// Namespace returns the configured namespace, or "default" if none is set.
func (r *Runtime) Namespace() string {
	if r.namespace != "" {
		return r.namespace
	}
	return DefaultNamespace
}

// RESTConfig returns a Kubernetes REST config, preferring in-cluster
// configuration over kubeconfig resolution.
func (r *Runtime) RESTConfig() (*rest.Config, error) {
	cfg, err := rest.InClusterConfig()
	if err == nil {
		return cfg, nil
	}

	if r.kubeconfig != "" {
		cfg, err = clientcmd.BuildConfigFromFlags("", r.kubeconfig)
	} else {
		loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
		overrides := &clientcmd.ConfigOverrides{}
		cfg, err = clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, overrides).ClientConfig()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build kubernetes config: %w (provide --kubeconfig or ensure KUBECONFIG/~/.kube/config is set)", err)
	}
	return cfg, nil
}
