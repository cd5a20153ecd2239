// Package history provides the history sub-command.
package history

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/prometheus-mcp-server/pmcpctl/internal/cli"
	"github.com/prometheus-mcp-server/pmcpctl/internal/helm"
	"github.com/prometheus-mcp-server/pmcpctl/internal/ui"
)

// New creates the history sub-command for the CLI.
func New() *cobra.Command {
	historyCommand := &cobra.Command{
		Use:   "history",
		Short: "Show the revision history of the release",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := cli.GetOutputFormat(cmd)
			return err
		},
		RunE: runHistory,
	}

	cli.AddOutputFlag(historyCommand)
	historyCommand.Flags().Int("max", helm.DefaultHistoryMax, "Maximum number of revisions to show")

	return historyCommand
}

func runHistory(cmd *cobra.Command, args []string) error {
	format, err := cli.GetOutputFormat(cmd)
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("max")
	if err != nil {
		return fmt.Errorf("failed to get max flag: %w", err)
	}

	rt, err := cli.GetRuntime(cmd.Context())
	if err != nil {
		return err
	}
	helmClient, err := rt.Helm()
	if err != nil {
		return err
	}

	releases, err := helmClient.History(cmd.Context(), rt.ReleaseName(), limit)
	if err != nil {
		return err
	}

	revisions := make([]cli.RevisionViewModel, 0, len(releases))
	for _, rel := range releases {
		if rel != nil {
			revisions = append(revisions, cli.ReleaseToRevision(rel))
		}
	}
	slices.SortFunc(revisions, func(a, b cli.RevisionViewModel) int { return a.Revision - b.Revision })

	if format != cli.OutputFormatTable {
		return cli.WriteStructured(cmd.OutOrStdout(), format, revisions)
	}

	rows := make([]ui.Row, 0, len(revisions))
	for _, rv := range revisions {
		rows = append(rows, rv.Row())
	}
	return ui.NewTable().
		SetColumns(cli.GetHistoryColumns()).
		SetRows(rows).
		Fprint(cmd.OutOrStdout())
}
