// Package uninstall provides the uninstall sub-command.
package uninstall

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prometheus-mcp-server/pmcpctl/internal/cli"
	"github.com/prometheus-mcp-server/pmcpctl/internal/logging"
	"github.com/prometheus-mcp-server/pmcpctl/internal/ui"
)

// confirm is replaceable in tests.
var confirm = ui.Confirm

// New creates the uninstall sub-command for the CLI.
func New() *cobra.Command {
	uninstallCommand := &cobra.Command{
		Use:     "uninstall",
		Aliases: []string{"delete", "remove"},
		Short:   "Uninstall the release",
		Long:    `Uninstall the release and remove all of its resources and history from the cluster.`,
		Args:    cobra.NoArgs,
		RunE:    runUninstall,
		Example: `
# Uninstall after confirmation
pmcpctl uninstall -r observability -n monitoring

# Uninstall without asking
pmcpctl uninstall -r observability --yes`,
	}

	uninstallCommand.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")

	return uninstallCommand
}

func runUninstall(cmd *cobra.Command, args []string) error {
	logger := logging.GetObservableLogger(cmd)

	yes, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return fmt.Errorf("failed to get yes flag: %w", err)
	}

	rt, err := cli.GetRuntime(cmd.Context())
	if err != nil {
		return err
	}
	release := rt.ReleaseName()

	helmClient, err := rt.Helm()
	if err != nil {
		return err
	}

	if !yes {
		ok, err := confirm(
			fmt.Sprintf("Uninstall release '%s' from namespace '%s'?", release, rt.Namespace()),
			"All resources and the release history will be removed from the cluster.",
		)
		if err != nil {
			return err
		}
		if !ok {
			logger.Info("Uninstall cancelled", "release", release)
			return nil
		}
	}

	err = logger.Time(cmd.Context(), "uninstall", func() error {
		return ui.RunWithSpinner(cmd.Context(), fmt.Sprintf("Uninstalling release '%s'...", release), func(ctx context.Context) error {
			return helmClient.Uninstall(ctx, release)
		})
	})
	if err != nil {
		return err
	}

	logger.Info("Release uninstalled successfully", "release", release)
	return nil
}
