// Package list provides the list sub-command.
package list

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	v1 "helm.sh/helm/v4/pkg/release/v1"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/selection"

	"github.com/prometheus-mcp-server/pmcpctl/internal/cli"
	"github.com/prometheus-mcp-server/pmcpctl/internal/helm"
	"github.com/prometheus-mcp-server/pmcpctl/internal/k8s"
	"github.com/prometheus-mcp-server/pmcpctl/internal/logging"
	"github.com/prometheus-mcp-server/pmcpctl/internal/ui"
)

// New creates the list sub-command for the CLI.
func New() *cobra.Command {
	listCommand := &cobra.Command{
		Use:   "list",
		Short: "List prometheus-mcp-server releases",
		Long:  `List the releases installed by pmcpctl in the current namespace.`,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := cli.GetOutputFormat(cmd)
			return err
		},
		RunE: runList,
		Example: `
# List releases in the monitoring namespace
pmcpctl list -n monitoring

# Only releases of a chart version, with pod readiness
pmcpctl list --chart-version 1.2.0 --detailed -o json`,
	}

	cli.AddOutputFlag(listCommand)
	listCommand.Flags().String("chart-version", "", "Filter by chart version")
	listCommand.Flags().Bool("detailed", false, "Show pod readiness")

	return listCommand
}

func runList(cmd *cobra.Command, args []string) error {
	logger := logging.GetLogger(cmd)

	format, err := cli.GetOutputFormat(cmd)
	if err != nil {
		return err
	}
	chartVersion, err := cmd.Flags().GetString("chart-version")
	if err != nil {
		return fmt.Errorf("failed to get chart-version filter: %w", err)
	}
	detailed, err := cmd.Flags().GetBool("detailed")
	if err != nil {
		return fmt.Errorf("failed to get detailed flag: %w", err)
	}

	helmClient, err := cli.GetHelmClient(cmd.Context())
	if err != nil {
		return err
	}

	selector := labels.NewSelector()
	if chartVersion != "" {
		req, err := labels.NewRequirement(helm.LabelChartVersion, selection.Equals, []string{chartVersion})
		if err != nil {
			return fmt.Errorf("failed to create chart version label requirement: %w", err)
		}
		selector = selector.Add(*req)
	}

	releases, err := helmClient.List(cmd.Context(), selector)
	if err != nil {
		return fmt.Errorf("failed to list releases: %w", err)
	}

	valid := make([]*v1.Release, 0, len(releases))
	for _, rel := range releases {
		if rel != nil {
			valid = append(valid, rel)
		}
	}

	if len(valid) == 0 && format == cli.OutputFormatTable {
		msg := "no releases found"
		if chartVersion != "" {
			msg += fmt.Sprintf(" (chart version: %s)", chartVersion)
		}
		logger.Info(msg)
		return nil
	}

	var pods cli.PodStatusGetter
	if detailed {
		rt, err := cli.GetRuntime(cmd.Context())
		if err != nil {
			return err
		}
		client, err := k8s.NewClientFromRuntime(rt)
		if err != nil {
			return fmt.Errorf("failed to create k8s client: %w", err)
		}
		pods = client
	}

	viewModels := toViewModels(cmd.Context(), pods, valid)
	if format != cli.OutputFormatTable {
		return cli.WriteStructured(cmd.OutOrStdout(), format, viewModels)
	}

	rows := make([]ui.Row, 0, len(viewModels))
	for _, vm := range viewModels {
		rows = append(rows, vm.Row())
	}
	return ui.NewTable().
		SetColumns(cli.GetTableColumns(detailed)).
		SetRows(rows).
		Fprint(cmd.OutOrStdout())
}

func toViewModels(ctx context.Context, pods cli.PodStatusGetter, releases []*v1.Release) []cli.ReleaseViewModel {
	viewModels := make([]cli.ReleaseViewModel, 0, len(releases))
	for _, rel := range releases {
		vm := cli.ReleaseToViewModel(rel)
		if pods != nil {
			vm = cli.ReleaseToViewModelWithPods(ctx, pods, rel)
		}
		vm.Values = nil
		vm.Notes = ""
		viewModels = append(viewModels, vm)
	}
	return viewModels
}
