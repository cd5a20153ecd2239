// Package status provides the status sub-command.
package status

import (
	"fmt"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/prometheus-mcp-server/pmcpctl/internal/cli"
	"github.com/prometheus-mcp-server/pmcpctl/internal/k8s"
	"github.com/prometheus-mcp-server/pmcpctl/internal/logging"
	"github.com/prometheus-mcp-server/pmcpctl/internal/ui"
)

// New creates the status sub-command for the CLI.
func New() *cobra.Command {
	statusCommand := &cobra.Command{
		Use:   "status",
		Short: "Display the status of the release",
		Long:  `Display the state, revision and pod readiness of the release.`,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := cli.GetOutputFormat(cmd)
			return err
		},
		RunE: runStatus,
		Example: `
# Status of the default release
pmcpctl status -n monitoring

# Include the applied values and notes
pmcpctl status -r observability --show-values --show-notes -o yaml`,
	}

	cli.AddOutputFlag(statusCommand)
	statusCommand.Flags().Bool("show-values", false, "Include the user supplied values")
	statusCommand.Flags().Bool("show-notes", false, "Include the release notes")
	statusCommand.Flags().Bool("skip-pods", false, "Do not query pod readiness")

	return statusCommand
}

func runStatus(cmd *cobra.Command, args []string) error {
	logger := logging.GetLogger(cmd)

	format, err := cli.GetOutputFormat(cmd)
	if err != nil {
		return err
	}
	showValues, _ := cmd.Flags().GetBool("show-values")
	showNotes, _ := cmd.Flags().GetBool("show-notes")
	skipPods, _ := cmd.Flags().GetBool("skip-pods")

	rt, err := cli.GetRuntime(cmd.Context())
	if err != nil {
		return err
	}
	helmClient, err := rt.Helm()
	if err != nil {
		return err
	}

	rel, err := helmClient.Get(cmd.Context(), rt.ReleaseName())
	if err != nil {
		return fmt.Errorf("%w\n\nHint: Use 'pmcpctl list' to see the installed releases", err)
	}

	vm := cli.ReleaseToViewModel(rel)
	if !skipPods {
		client, err := k8s.NewClientFromRuntime(rt)
		if err != nil {
			logger.Warn("Skipping pod readiness", "err", err)
		} else {
			vm = cli.ReleaseToViewModelWithPods(cmd.Context(), client, rel)
		}
	}
	if !showValues {
		vm.Values = nil
	}
	if !showNotes {
		vm.Notes = ""
	}

	if format != cli.OutputFormatTable {
		return cli.WriteStructured(cmd.OutOrStdout(), format, vm)
	}

	out := cmd.OutOrStdout()
	err = ui.NewTable().
		SetColumns(cli.GetTableColumns(!skipPods)).
		SetRows([]ui.Row{vm.Row()}).
		Fprint(out)
	if err != nil {
		return err
	}
	if vm.Description != "" {
		fmt.Fprintf(out, "\nDESCRIPTION: %s\n", vm.Description)
	}
	if len(vm.Values) > 0 {
		data, err := yaml.Marshal(vm.Values)
		if err != nil {
			return fmt.Errorf("failed to serialize values: %w", err)
		}
		fmt.Fprintf(out, "\nUSER-SUPPLIED VALUES:\n%s", data)
	}
	if vm.Notes != "" {
		fmt.Fprintf(out, "\nNOTES:\n%s\n", vm.Notes)
	}
	return nil
}
