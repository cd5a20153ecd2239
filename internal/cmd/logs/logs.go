// Package logs provides the logs sub-command.
package logs

import (
	"fmt"
	"os"
	"regexp"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stern/stern/stern"
	"k8s.io/apimachinery/pkg/fields"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/utils/ptr"

	"github.com/prometheus-mcp-server/pmcpctl/internal/cli"
	"github.com/prometheus-mcp-server/pmcpctl/internal/k8s"
)

// defaultTemplate prints the pod suffix and the message.
const defaultTemplate = "{{color .PodColor (index .Labels \"app.kubernetes.io/instance\")}} [{{trunc -5 .PodName}}] {{.Message}}\n"

// New creates the logs sub-command for the CLI.
func New() *cobra.Command {
	logsCommand := &cobra.Command{
		Use:   "logs",
		Short: "Stream logs of the release pods",
		Long:  `Stream logs from the pods matching the selector labels of the release.`,
		Args:  cobra.NoArgs,
		RunE:  runLogs,
		Example: `
# Follow the logs of the default release
pmcpctl logs -n monitoring

# Last 100 lines, raw messages only
pmcpctl logs -r observability --tail 100 --no-follow --only-log-lines

# Custom log format
pmcpctl logs --template="{{.PodName}} {{.Message}}"

# Timezone for timestamps
pmcpctl logs --timestamps --timezone=Europe/Amsterdam`,
	}

	logsCommand.Flags().Bool("no-follow", false, "Do not follow log output")
	logsCommand.Flags().String("container", "", "Container name (if pod has multiple containers)")
	logsCommand.Flags().Duration("since", 48*time.Hour, "Show logs since duration (e.g., 10s, 1m, 1h)")
	logsCommand.Flags().Int64("tail", -1, "Number of lines to show from the end of the logs (-1 shows all)")
	logsCommand.Flags().Bool("timestamps", false, "Include timestamps in log output")
	logsCommand.Flags().Bool("only-log-lines", false, "Only output the log message lines")
	logsCommand.Flags().String("template", "", "Go template for each log line")
	logsCommand.Flags().String("template-file", "", "Path to a file containing a Go template for each log line")
	logsCommand.Flags().String("timezone", time.Local.String(), "Timezone for timestamps (e.g., Europe/Amsterdam)")

	return logsCommand
}

// options holds the parsed flags of the logs command.
type options struct {
	noFollow     bool
	container    string
	since        time.Duration
	tail         int64
	timestamps   bool
	onlyLogLines bool
	template     string
	templateFile string
	timezone     string
}

func parseOptions(cmd *cobra.Command) (options, error) {
	var (
		o   options
		err error
	)
	flags := cmd.Flags()
	if o.noFollow, err = flags.GetBool("no-follow"); err != nil {
		return o, fmt.Errorf("failed to get no-follow flag: %w", err)
	}
	if o.container, err = flags.GetString("container"); err != nil {
		return o, fmt.Errorf("failed to get container flag: %w", err)
	}
	if o.since, err = flags.GetDuration("since"); err != nil {
		return o, fmt.Errorf("failed to get since flag: %w", err)
	}
	if o.tail, err = flags.GetInt64("tail"); err != nil {
		return o, fmt.Errorf("failed to get tail flag: %w", err)
	}
	if o.timestamps, err = flags.GetBool("timestamps"); err != nil {
		return o, fmt.Errorf("failed to get timestamps flag: %w", err)
	}
	if o.onlyLogLines, err = flags.GetBool("only-log-lines"); err != nil {
		return o, fmt.Errorf("failed to get only-log-lines flag: %w", err)
	}
	if o.template, err = flags.GetString("template"); err != nil {
		return o, fmt.Errorf("failed to get template flag: %w", err)
	}
	if o.templateFile, err = flags.GetString("template-file"); err != nil {
		return o, fmt.Errorf("failed to get template-file flag: %w", err)
	}
	if o.timezone, err = flags.GetString("timezone"); err != nil {
		return o, fmt.Errorf("failed to get timezone flag: %w", err)
	}

	if o.template != "" && o.templateFile != "" {
		return o, fmt.Errorf("cannot specify both --template and --template-file")
	}
	return o, nil
}

// parseTemplate builds the per-line template with sprig and a color helper.
func parseTemplate(o options) (*template.Template, error) {
	text := defaultTemplate
	switch {
	case o.templateFile != "":
		data, err := os.ReadFile(o.templateFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read template file %q: %w", o.templateFile, err)
		}
		text = string(data)
	case o.template != "":
		text = o.template
	}

	funcs := map[string]any{
		"color": func(c color.Color, text string) string {
			return c.SprintFunc()(text)
		},
	}
	tmpl, err := template.New("logs").Funcs(funcs).Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log template: %w", err)
	}
	return tmpl, nil
}

// buildConfig assembles the stern configuration for the release pods.
func buildConfig(cmd *cobra.Command, o options, namespace string, selector string) (*stern.Config, error) {
	labelSelector, err := labels.Parse(selector)
	if err != nil {
		return nil, fmt.Errorf("failed to parse label selector: %w", err)
	}

	containerState, err := stern.NewContainerState(stern.RUNNING)
	if err != nil {
		return nil, fmt.Errorf("invalid container-state %q: %w", containerState, err)
	}

	tmpl, err := parseTemplate(o)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(o.timezone)
	if err != nil && o.timezone != "" {
		return nil, fmt.Errorf("invalid timezone %q: %w", o.timezone, err)
	}

	containerQuery := regexp.MustCompile(".*")
	if o.container != "" {
		containerQuery, err = regexp.Compile("^" + regexp.QuoteMeta(o.container) + "$")
		if err != nil {
			return nil, fmt.Errorf("invalid container name '%s': %w", o.container, err)
		}
	}

	cfg := &stern.Config{
		Namespaces:      []string{namespace},
		Timestamps:      o.timestamps,
		Location:        loc,
		Since:           o.since,
		Template:        tmpl,
		LabelSelector:   labelSelector,
		FieldSelector:   fields.Everything(),
		ContainerStates: []stern.ContainerState{containerState},
		Follow:          !o.noFollow,
		OnlyLogLines:    o.onlyLogLines,
		MaxLogRequests:  50,
		DiffContainer:   true,
		PodQuery:        regexp.MustCompile(".*"),
		ContainerQuery:  containerQuery,
		Out:             cmd.OutOrStdout(),
		ErrOut:          cmd.ErrOrStderr(),
	}
	if o.tail >= 0 {
		cfg.TailLines = ptr.To(o.tail)
	}
	return cfg, nil
}

func runLogs(cmd *cobra.Command, args []string) error {
	o, err := parseOptions(cmd)
	if err != nil {
		return err
	}

	in, err := cli.LoadInputs(cmd.Context())
	if err != nil {
		return err
	}

	selector, err := k8s.ReleaseSelector(in.Naming)
	if err != nil {
		return fmt.Errorf("failed to build label selector: %w", err)
	}

	cfg, err := buildConfig(cmd, o, in.Runtime.Namespace(), selector)
	if err != nil {
		return err
	}

	clientset, err := in.Runtime.Kubernetes()
	if err != nil {
		return fmt.Errorf("failed to create k8s client: %w", err)
	}

	if err := stern.Run(cmd.Context(), clientset, cfg); err != nil {
		return fmt.Errorf("failed to stream logs for release %s: %w", in.Naming.Release.Name, err)
	}
	return nil
}
