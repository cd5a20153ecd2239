// Package install provides the install sub-command.
package install

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prometheus-mcp-server/pmcpctl/internal/chart"
	"github.com/prometheus-mcp-server/pmcpctl/internal/cli"
	"github.com/prometheus-mcp-server/pmcpctl/internal/logging"
	"github.com/prometheus-mcp-server/pmcpctl/internal/naming"
	"github.com/prometheus-mcp-server/pmcpctl/internal/ui"
)

// New creates the install sub-command for the CLI.
func New() *cobra.Command {
	installCommand := &cobra.Command{
		Use:     "install",
		Aliases: []string{"upgrade", "deploy"},
		Short:   "Install or upgrade the release",
		Long: `Install the embedded prometheus-mcp-server chart, or upgrade the release when it
already exists. Derived names are validated before anything is sent to the cluster.`,
		Args: cobra.NoArgs,
		RunE: runInstall,
		Example: `
# Install with a values file
pmcpctl install -r observability -n monitoring -f values.yaml

# Pin the image and simulate the install
pmcpctl install --image ghcr.io/pab1it0/prometheus-mcp-server:1.2.0 --dry-run`,
	}

	installCommand.Flags().Bool("dry-run", false, "Simulate the install without touching the cluster")
	installCommand.Flags().Bool("skip-validation", false, "Do not validate derived names and labels")

	return installCommand
}

func runInstall(cmd *cobra.Command, args []string) error {
	logger := logging.GetObservableLogger(cmd)

	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return fmt.Errorf("failed to get dry-run flag: %w", err)
	}
	skipValidation, err := cmd.Flags().GetBool("skip-validation")
	if err != nil {
		return fmt.Errorf("failed to get skip-validation flag: %w", err)
	}

	in, err := cli.LoadInputs(cmd.Context())
	if err != nil {
		return err
	}
	release := in.Naming.Release

	if !skipValidation {
		if err := naming.Validate(in.Naming); err != nil {
			return fmt.Errorf("invalid derived names: %w", err)
		}
	}

	helmClient, err := in.Runtime.Helm()
	if err != nil {
		return err
	}

	logger.Info("Installing release", "release", release.Name, "namespace", release.Namespace,
		"fullname", naming.Fullname(in.Naming), "dryRun", dryRun)

	err = logger.Time(cmd.Context(), "install", func() error {
		return ui.RunWithSpinner(cmd.Context(), fmt.Sprintf("Installing release '%s'...", release.Name), func(ctx context.Context) error {
			return helmClient.Install(ctx, release.Name, in.Values.Raw, dryRun)
		})
	})
	if err != nil {
		return err
	}

	if dryRun {
		logger.Info("Dry run completed", "release", release.Name)
		return nil
	}
	logger.Info("Release installed successfully", "release", release.Name)

	if notes := renderNotes(in); notes != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "NOTES:\n%s\n", notes)
	}
	return nil
}

// renderNotes renders NOTES.txt locally; failures yield no notes.
func renderNotes(in *cli.Inputs) string {
	engine, err := chart.NewEngine()
	if err != nil {
		return ""
	}
	rendered, err := engine.Render(in.RenderInput())
	if err != nil {
		return ""
	}
	return rendered.Notes
}
