// Package names provides the names and labels sub-commands.
package names

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/prometheus-mcp-server/pmcpctl/internal/cli"
	"github.com/prometheus-mcp-server/pmcpctl/internal/naming"
	"github.com/prometheus-mcp-server/pmcpctl/internal/ui"
)

// View is the structured output of the names command.
type View struct {
	Name               string `json:"name" yaml:"name"`
	Fullname           string `json:"fullname" yaml:"fullname"`
	Chart              string `json:"chart" yaml:"chart"`
	ServiceAccountName string `json:"serviceAccountName" yaml:"serviceAccountName"`
	Image              string `json:"image" yaml:"image"`
}

// Derive computes every name for ctx.
func Derive(ctx naming.Context) View {
	return View{
		Name:               naming.Name(ctx),
		Fullname:           naming.Fullname(ctx),
		Chart:              naming.ChartLabel(ctx.Chart),
		ServiceAccountName: naming.ServiceAccountName(ctx),
		Image:              naming.ImageReference(naming.ResolveImage(ctx)),
	}
}

// New creates the names sub-command for the CLI.
func New() *cobra.Command {
	namesCommand := &cobra.Command{
		Use:   "names",
		Short: "Print the resource names derived for a release",
		Long:  `Print the chart name, full name, chart label, service account name and image reference the chart derives for the release and values.`,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := cli.GetOutputFormat(cmd)
			return err
		},
		RunE: runNames,
		Example: `
# Names for the default release
pmcpctl names

# Names with overrides from a values file
pmcpctl names -r observability -f values.yaml -o json`,
	}

	cli.AddOutputFlag(namesCommand)

	return namesCommand
}

func runNames(cmd *cobra.Command, args []string) error {
	format, err := cli.GetOutputFormat(cmd)
	if err != nil {
		return err
	}

	in, err := cli.LoadInputs(cmd.Context())
	if err != nil {
		return err
	}

	view := Derive(in.Naming)
	if format != cli.OutputFormatTable {
		return cli.WriteStructured(cmd.OutOrStdout(), format, view)
	}

	return keyValueTable([]ui.Row{
		{"key": "name", "value": view.Name},
		{"key": "fullname", "value": view.Fullname},
		{"key": "chart", "value": view.Chart},
		{"key": "serviceAccountName", "value": view.ServiceAccountName},
		{"key": "image", "value": view.Image},
	}).Fprint(cmd.OutOrStdout())
}

// NewLabels creates the labels sub-command for the CLI.
func NewLabels() *cobra.Command {
	labelsCommand := &cobra.Command{
		Use:   "labels",
		Short: "Print the common or selector labels of a release",
		Long:  `Print the labels the chart attaches to every resource, or only the immutable selector labels.`,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := cli.GetOutputFormat(cmd)
			return err
		},
		RunE: runLabels,
		Example: `
# Common labels
pmcpctl labels

# Selector labels as a kubectl selector
pmcpctl labels --selector -o json`,
	}

	cli.AddOutputFlag(labelsCommand)
	labelsCommand.Flags().Bool("selector", false, "Only print the selector labels")

	return labelsCommand
}

func runLabels(cmd *cobra.Command, args []string) error {
	format, err := cli.GetOutputFormat(cmd)
	if err != nil {
		return err
	}
	selectorOnly, err := cmd.Flags().GetBool("selector")
	if err != nil {
		return fmt.Errorf("failed to get selector flag: %w", err)
	}

	in, err := cli.LoadInputs(cmd.Context())
	if err != nil {
		return err
	}

	set := naming.Labels(in.Naming)
	if selectorOnly {
		set = naming.SelectorLabels(in.Naming)
	}

	if format != cli.OutputFormatTable {
		return cli.WriteStructured(cmd.OutOrStdout(), format, set)
	}

	rows := make([]ui.Row, 0, len(set))
	for _, key := range slices.Sorted(maps.Keys(set)) {
		rows = append(rows, ui.Row{"key": key, "value": set[key]})
	}
	return keyValueTable(rows).Fprint(cmd.OutOrStdout())
}

func keyValueTable(rows []ui.Row) *ui.Table {
	return ui.NewTable().
		SetColumns([]ui.Column{
			{Title: "KEY", Key: "key", MinWidth: 10},
			{Title: "VALUE", Key: "value", MinWidth: 10},
		}).
		SetRows(rows)
}
