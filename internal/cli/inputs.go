package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prometheus-mcp-server/pmcpctl/internal/chart"
	"github.com/prometheus-mcp-server/pmcpctl/internal/naming"
	"github.com/prometheus-mcp-server/pmcpctl/internal/runtime"
	"github.com/prometheus-mcp-server/pmcpctl/internal/values"
)

// Inputs bundles everything a render of the chart depends on.
type Inputs struct {
	Runtime *runtime.Runtime
	Values  *values.Result
	Chart   *chart.Metadata
	Naming  naming.Context
}

// LoadInputs loads the values and chart metadata for the runtime in ctx.
func LoadInputs(ctx context.Context) (*Inputs, error) {
	rt, err := GetRuntime(ctx)
	if err != nil {
		return nil, err
	}

	res, err := rt.Values(ctx)
	if err != nil {
		return nil, err
	}

	meta, err := chart.LoadMetadata()
	if err != nil {
		return nil, err
	}

	release := naming.Release{Name: rt.ReleaseName(), Namespace: rt.Namespace()}
	return &Inputs{
		Runtime: rt,
		Values:  res,
		Chart:   meta,
		Naming:  res.Context(meta.Naming(), release),
	}, nil
}

// RenderInput returns the template dot context for these inputs.
func (in *Inputs) RenderInput() chart.RenderInput {
	return chart.NewRenderInput(in.Naming.Chart, in.Values.Raw, in.Naming.Release)
}

// AddOutputFlag registers the --output flag on cmd.
func AddOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", OutputFormatTable, "Output format: table, json, yaml")
}

// GetOutputFormat reads and validates the --output flag.
func GetOutputFormat(cmd *cobra.Command) (string, error) {
	format, err := cmd.Flags().GetString("output")
	if err != nil {
		return "", fmt.Errorf("failed to get output format: %w", err)
	}
	if err := ValidateOutputFormat(format); err != nil {
		return "", err
	}
	return format, nil
}
