// Package rollback provides the rollback sub-command.
package rollback

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"k8s.io/utils/ptr"

	"github.com/prometheus-mcp-server/pmcpctl/internal/cli"
	"github.com/prometheus-mcp-server/pmcpctl/internal/logging"
	"github.com/prometheus-mcp-server/pmcpctl/internal/ui"
)

// confirm is replaceable in tests.
var confirm = ui.Confirm

// New creates the rollback sub-command for the CLI.
func New() *cobra.Command {
	rollbackCommand := &cobra.Command{
		Use:   "rollback [revision]",
		Short: "Roll the release back to a previous revision",
		Long:  `Roll the release back to the given revision, or to the previous one when no revision is given.`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRollback,
		Example: `
# Roll back to the previous revision
pmcpctl rollback -r observability

# Roll back to revision 3 without asking
pmcpctl rollback 3 -r observability --yes`,
	}

	rollbackCommand.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")

	return rollbackCommand
}

// parseRevision returns nil when no revision was given.
func parseRevision(args []string) (*int, error) {
	if len(args) == 0 {
		return nil, nil
	}
	rev, err := strconv.Atoi(args[0])
	if err != nil || rev <= 0 {
		return nil, fmt.Errorf("revision must be a positive integer, got %q", args[0])
	}
	return ptr.To(rev), nil
}

func runRollback(cmd *cobra.Command, args []string) error {
	logger := logging.GetObservableLogger(cmd)

	revision, err := parseRevision(args)
	if err != nil {
		return err
	}
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

	target := "the previous revision"
	if revision != nil {
		target = fmt.Sprintf("revision %d", *revision)
	}

	if !yes {
		ok, err := confirm(
			fmt.Sprintf("Roll back release '%s' to %s?", release, target),
			"A new revision is created with the configuration of the target revision.",
		)
		if err != nil {
			return err
		}
		if !ok {
			logger.Info("Rollback cancelled", "release", release)
			return nil
		}
	}

	err = logger.Time(cmd.Context(), "rollback", func() error {
		return ui.RunWithSpinner(cmd.Context(), fmt.Sprintf("Rolling back release '%s'...", release), func(ctx context.Context) error {
			return helmClient.Rollback(ctx, release, ptr.Deref(revision, 0))
		})
	})
	if err != nil {
		return err
	}

	logger.Info("Rollback completed", "release", release, "target", target)
	return nil
}
