// Package template provides the template sub-command.
package template

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/prometheus-mcp-server/pmcpctl/internal/chart"
	"github.com/prometheus-mcp-server/pmcpctl/internal/cli"
	"github.com/prometheus-mcp-server/pmcpctl/internal/logging"
)

// New creates the template sub-command for the CLI.
func New() *cobra.Command {
	templateCommand := &cobra.Command{
		Use:   "template",
		Short: "Render the chart locally",
		Long:  `Render the embedded chart with the layered values and print the manifests. Nothing is sent to the cluster.`,
		Args:  cobra.NoArgs,
		RunE:  runTemplate,
		Example: `
# Render every manifest
pmcpctl template -f values.yaml

# Only the deployment, with the release notes
pmcpctl template -s templates/deployment.yaml --notes`,
	}

	templateCommand.Flags().StringSliceP("show-only", "s", nil, "Only show manifests rendered from the given templates")
	templateCommand.Flags().Bool("notes", false, "Print the release notes after the manifests")

	return templateCommand
}

func runTemplate(cmd *cobra.Command, args []string) error {
	logger := logging.GetObservableLogger(cmd)

	showOnly, err := cmd.Flags().GetStringSlice("show-only")
	if err != nil {
		return fmt.Errorf("failed to get show-only flag: %w", err)
	}
	notes, err := cmd.Flags().GetBool("notes")
	if err != nil {
		return fmt.Errorf("failed to get notes flag: %w", err)
	}

	in, err := cli.LoadInputs(cmd.Context())
	if err != nil {
		return err
	}

	var rendered *chart.Rendered
	err = logger.Time(cmd.Context(), "render", func() error {
		engine, err := chart.NewEngine()
		if err != nil {
			return err
		}
		rendered, err = engine.Render(in.RenderInput())
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	if len(showOnly) > 0 {
		for _, name := range showOnly {
			if !slices.Contains(rendered.Names(), name) {
				return fmt.Errorf("could not find template %s in chart (rendered: %s)", name, strings.Join(rendered.Names(), ", "))
			}
		}
		for name := range rendered.Manifests {
			if !slices.Contains(showOnly, name) {
				delete(rendered.Manifests, name)
			}
		}
	}

	out := cmd.OutOrStdout()
	if _, err := io.WriteString(out, rendered.String()); err != nil {
		return err
	}
	if notes && rendered.Notes != "" {
		if _, err := fmt.Fprintf(out, "\nNOTES:\n%s\n", rendered.Notes); err != nil {
			return err
		}
	}
	return nil
}
