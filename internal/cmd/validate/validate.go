// Package validate provides the validate sub-command.
package validate

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/prometheus-mcp-server/pmcpctl/internal/chart"
	"github.com/prometheus-mcp-server/pmcpctl/internal/cli"
	"github.com/prometheus-mcp-server/pmcpctl/internal/logging"
	"github.com/prometheus-mcp-server/pmcpctl/internal/naming"
)

// New creates the validate sub-command for the CLI.
func New() *cobra.Command {
	validateCommand := &cobra.Command{
		Use:   "validate",
		Short: "Validate values, derived names and rendered manifests",
		Long: `Validate the layered values against the chart schema, check that every derived
name and label is accepted by Kubernetes, and render the chart to make sure
each manifest carries the selector labels.`,
		Example: `
# Validate the default values
pmcpctl validate

# Validate a values file, failing on unknown keys
pmcpctl validate -f values.yaml --strict`,
		Args: cobra.NoArgs,
		RunE: runValidate,
	}

	return validateCommand
}

func runValidate(cmd *cobra.Command, args []string) error {
	logger := logging.GetLogger(cmd)

	in, err := cli.LoadInputs(cmd.Context())
	if err != nil {
		return err
	}
	logger.Info("Values validated", "release", in.Naming.Release.Name, "dropped", len(in.Values.Dropped))

	if err := naming.Validate(in.Naming); err != nil {
		return fmt.Errorf("invalid derived names: %w", err)
	}

	engine, err := chart.NewEngine()
	if err != nil {
		return err
	}
	rendered, err := engine.Render(in.RenderInput())
	if err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	if err := CheckRendered(rendered, in.Naming); err != nil {
		return fmt.Errorf("invalid manifests: %w", err)
	}

	logger.Info("Manifest validated successfully", "manifests", len(rendered.Manifests), "fullname", naming.Fullname(in.Naming))
	return nil
}

// CheckRendered verifies every rendered object has a name and carries the
// selector labels of ctx.
func CheckRendered(rendered *chart.Rendered, ctx naming.Context) error {
	objs, err := rendered.Objects()
	if err != nil {
		return err
	}

	selector := naming.SelectorLabels(ctx)
	var errs []error
	for _, obj := range objs {
		if obj.GetName() == "" {
			errs = append(errs, fmt.Errorf("%s has no name", obj.GetKind()))
			continue
		}
		labels := obj.GetLabels()
		for _, key := range slices.Sorted(maps.Keys(selector)) {
			if labels[key] != selector[key] {
				errs = append(errs, fmt.Errorf("%s/%s: label %s is %q, expected %q",
					obj.GetKind(), obj.GetName(), key, labels[key], selector[key]))
			}
		}
	}
	return utilerrors.NewAggregate(errs)
}
