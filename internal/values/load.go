package values

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"dario.cat/mergo"
	"github.com/fluxcd/pkg/envsubst"
	"github.com/joho/godotenv"
	"helm.sh/helm/v4/pkg/strvals"
	"sigs.k8s.io/yaml"

	"github.com/prometheus-mcp-server/pmcpctl/internal/chart"
	"github.com/prometheus-mcp-server/pmcpctl/internal/logging"
	"github.com/prometheus-mcp-server/pmcpctl/internal/naming"
)

// Options selects the value sources layered on top of the chart defaults.
type Options struct {
	// Files are merged in order; later files win.
	Files []string
	// Set holds --set expressions applied after all files.
	Set []string
	// SetString holds --set-string expressions, applied last and never typed.
	SetString []string
	// EnvFile provides variables for ${VAR} references in Files. The process
	// environment takes precedence over it.
	EnvFile string
	// Strict turns unknown top-level keys into an error.
	Strict bool
}

// Result is the outcome of Load.
type Result struct {
	// Raw is the merged tree handed to the chart templates.
	Raw    map[string]any
	Values *Values
	// Dropped lists the unknown top-level keys removed from Raw.
	Dropped []string
}

// Context assembles the naming context for a release.
func (r *Result) Context(ch naming.Chart, rel naming.Release) naming.Context {
	if rel.Service == "" {
		rel.Service = naming.DefaultReleaseService
	}
	return naming.Context{Chart: ch, Values: r.Values.Naming(), Release: rel}
}

// Load merges the chart defaults, value files and --set expressions, strips
// unknown keys, validates the result against the chart schema and decodes it.
func Load(ctx context.Context, opts Options) (*Result, error) {
	logger := logging.FromContext(ctx)

	data, err := chart.DefaultValues()
	if err != nil {
		return nil, err
	}
	merged, err := parse(data, chart.ValuesFile)
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(merged))
	for k := range merged {
		known[k] = struct{}{}
	}

	vars, err := loadVariables(opts.EnvFile)
	if err != nil {
		return nil, err
	}

	for _, file := range opts.Files {
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read values file: %w", err)
		}
		substituted, err := Substitute(raw, vars)
		if err != nil {
			return nil, fmt.Errorf("failed to substitute variables in %s: %w", file, err)
		}
		layer, err := parse(substituted, file)
		if err != nil {
			return nil, err
		}
		if err := mergo.Merge(&merged, layer, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge values file %s: %w", file, err)
		}
		logger.Debug("Merged values file", "file", file)
	}

	for _, expr := range opts.Set {
		if err := strvals.ParseInto(expr, merged); err != nil {
			return nil, fmt.Errorf("failed to parse --set %q: %w", expr, err)
		}
	}
	for _, expr := range opts.SetString {
		if err := strvals.ParseIntoString(expr, merged); err != nil {
			return nil, fmt.Errorf("failed to parse --set-string %q: %w", expr, err)
		}
	}

	dropped := StripUnknown(merged, known)
	if len(dropped) > 0 {
		if opts.Strict {
			return nil, fmt.Errorf("unknown values keys: %s", strings.Join(dropped, ", "))
		}
		for _, key := range dropped {
			logger.Info("Dropping unknown values key", "key", key)
		}
	}

	if err := Validate(merged); err != nil {
		return nil, err
	}

	typed, err := Decode(merged)
	if err != nil {
		return nil, err
	}

	return &Result{Raw: merged, Values: typed, Dropped: dropped}, nil
}

// StripUnknown removes top-level keys absent from known and returns them sorted.
func StripUnknown(values map[string]any, known map[string]struct{}) []string {
	var dropped []string
	for key := range values {
		if _, ok := known[key]; !ok {
			dropped = append(dropped, key)
		}
	}
	slices.Sort(dropped)
	for _, key := range dropped {
		delete(values, key)
	}
	return dropped
}

// Substitute expands ${VAR} references in data. Unset variables expand to
// the empty string unless the reference carries a default.
func Substitute(data []byte, vars map[string]string) ([]byte, error) {
	content, err := envsubst.Eval(string(data), func(name string) (string, bool) {
		return vars[name], true
	})
	if err != nil {
		return nil, err
	}
	return []byte(content), nil
}

// loadVariables merges the env file (lowest priority) and the process
// environment (highest priority).
func loadVariables(envFile string) (map[string]string, error) {
	vars := make(map[string]string)

	if envFile != "" {
		fileVars, err := godotenv.Read(envFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read env file %s: %w", envFile, err)
		}
		if err := mergo.Merge(&vars, fileVars); err != nil {
			return nil, fmt.Errorf("failed to merge env file variables: %w", err)
		}
	}

	osVars := make(map[string]string)
	for _, kv := range os.Environ() {
		if key, value, ok := strings.Cut(kv, "="); ok {
			osVars[key] = value
		}
	}
	if err := mergo.Merge(&vars, osVars, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("failed to merge OS environment variables: %w", err)
	}

	return vars, nil
}

func parse(data []byte, source string) (map[string]any, error) {
	out := map[string]any{}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", source, err)
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}
