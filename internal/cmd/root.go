// Copyright 2025 The pmcpctl Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cmd provides the commands of pmcpctl.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/prometheus-mcp-server/pmcpctl/internal/cli"
	"github.com/prometheus-mcp-server/pmcpctl/internal/cmd/history"
	"github.com/prometheus-mcp-server/pmcpctl/internal/cmd/install"
	"github.com/prometheus-mcp-server/pmcpctl/internal/cmd/list"
	"github.com/prometheus-mcp-server/pmcpctl/internal/cmd/logs"
	"github.com/prometheus-mcp-server/pmcpctl/internal/cmd/names"
	"github.com/prometheus-mcp-server/pmcpctl/internal/cmd/rollback"
	"github.com/prometheus-mcp-server/pmcpctl/internal/cmd/status"
	"github.com/prometheus-mcp-server/pmcpctl/internal/cmd/template"
	"github.com/prometheus-mcp-server/pmcpctl/internal/cmd/uninstall"
	"github.com/prometheus-mcp-server/pmcpctl/internal/cmd/validate"
	"github.com/prometheus-mcp-server/pmcpctl/internal/logging"
	"github.com/prometheus-mcp-server/pmcpctl/internal/naming"
	"github.com/prometheus-mcp-server/pmcpctl/internal/runtime"
	"github.com/prometheus-mcp-server/pmcpctl/internal/values"
)

// NewRootCommand creates the root command with every sub-command attached.
// Extra runtime options are applied after the ones derived from flags. The
// returned cleanup closes the runtime of the executed command, if any, and
// must run after execution whatever its outcome.
func NewRootCommand(extra ...runtime.Option) (*cobra.Command, func() error) {
	var (
		rt        *runtime.Runtime
		collector *logging.MetricsCollector
		logger    *log.Logger
	)
	cleanup := func() error {
		if collector != nil {
			for _, m := range collector.Snapshot() {
				logger.Debug("Metric", "name", m.Name, "count", m.Count, "value", m.Value, "tags", m.Tags)
			}
		}
		if rt == nil {
			return nil
		}
		return rt.Close()
	}

	rootCmd := &cobra.Command{
		Use:   "pmcpctl",
		Short: "Render and manage prometheus-mcp-server releases",
		Long: `pmcpctl renders the prometheus-mcp-server chart, derives its resource names
and labels, and manages its releases on a Kubernetes cluster.`,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logLevel, _ := cmd.Flags().GetString("log-level")
			noColor, _ := cmd.Flags().GetBool("no-color")
			quiet, _ := cmd.Flags().GetBool("quiet")

			// Errors are still returned; quiet only silences their printing.
			cmd.SilenceErrors = quiet
			cmd.SilenceUsage = true

			var err error
			if collector, err = logging.SetupCharmLogger(cmd, logLevel, noColor, quiet); err != nil {
				return err
			}
			logger = logging.GetLogger(cmd)

			opts, err := runtimeOptions(cmd)
			if err != nil {
				return err
			}
			opts = append(opts, extra...)

			rt = runtime.New(opts...)
			cmd.SetContext(runtime.WithRuntime(cmd.Context(), rt))
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("log-level", "l", log.InfoLevel.String(), "Set the logging level (debug|info|warn|error)")
	flags.Bool("no-color", false, "If specified, output won't contain any color.")
	flags.BoolP("quiet", "q", false, "Quiet or silent mode. Do not show logs or error messages.")
	flags.StringP("namespace", "n", os.Getenv(runtime.NamespaceEnvVar), "Kubernetes namespace (env "+runtime.NamespaceEnvVar+")")
	flags.String("kubeconfig", os.Getenv(runtime.KubeConfigEnvVar), "Path to the kubeconfig file (env "+runtime.KubeConfigEnvVar+")")
	flags.StringP("release", "r", runtime.DefaultReleaseName, "Release name")
	flags.StringSliceP("values", "f", nil, "Values files, later files take precedence")
	flags.StringArray("set", nil, "Set values on the command line (key1=val1,key2=val2)")
	flags.StringArray("set-string", nil, "Set STRING values on the command line (key1=val1,key2=val2)")
	flags.String("image", "", "Full image reference overriding image.registry, image.repository and image.version")
	flags.String("env-file", "", "Dotenv file providing ${VAR} substitutions for values files")
	flags.Bool("strict", false, "Fail on unknown top-level values keys instead of dropping them")
	flags.Duration("timeout", runtime.DefaultTimeout, "Timeout for Helm operations")
	flags.String("storage-driver", runtime.DefaultStorageDriver, "Helm storage driver ("+strings.Join(runtime.GetValidStorageDrivers(), "|")+")")
	flags.Bool("debug", cast.ToBool(os.Getenv(runtime.DebugEnvVar)), "Keep temporary chart directories (env "+runtime.DebugEnvVar+")")

	rootCmd.AddCommand(
		names.New(),
		names.NewLabels(),
		template.New(),
		validate.New(),
		install.New(),
		uninstall.New(),
		list.New(),
		status.New(),
		history.New(),
		rollback.New(),
		logs.New(),
	)

	return rootCmd, cleanup
}

// Execute runs pmcpctl with args and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	rootCmd, cleanup := NewRootCommand()
	rootCmd.SetArgs(args)

	err := fang.Execute(ctx, rootCmd, fang.WithVersion(cli.Version))
	if cerr := cleanup(); cerr != nil {
		log.Warn("Failed to clean up", "err", cerr)
	}

	switch {
	case err == nil:
		return cli.ExitSuccess
	case errors.Is(err, context.DeadlineExceeded):
		return cli.ExitTimedOut
	default:
		return cli.ExitError
	}
}

// runtimeOptions maps the persistent flags onto runtime options.
func runtimeOptions(cmd *cobra.Command) ([]runtime.Option, error) {
	flags := cmd.Flags()

	namespace, _ := flags.GetString("namespace")
	kubeconfig, _ := flags.GetString("kubeconfig")
	release, _ := flags.GetString("release")
	files, _ := flags.GetStringSlice("values")
	set, _ := flags.GetStringArray("set")
	setString, _ := flags.GetStringArray("set-string")
	image, _ := flags.GetString("image")
	envFile, _ := flags.GetString("env-file")
	strict, _ := flags.GetBool("strict")
	timeout, _ := flags.GetDuration("timeout")
	driver, _ := flags.GetString("storage-driver")
	debug, _ := flags.GetBool("debug")

	if strings.TrimSpace(release) == "" {
		return nil, fmt.Errorf("release name cannot be empty")
	}
	if image != "" {
		img, err := naming.ParseImage(image)
		if err != nil {
			return nil, err
		}
		setString = append(setString,
			"image.registry="+img.Registry,
			"image.repository="+img.Repository,
			"image.version="+img.Version,
		)
	}
	if !runtime.ValidateTimeout(timeout) {
		return nil, fmt.Errorf("invalid timeout %s: must be between %s and %s",
			timeout, runtime.HelmTimeoutMin, runtime.HelmTimeoutMax)
	}
	if !runtime.ValidateStorageDriver(driver) {
		return nil, fmt.Errorf("invalid storage driver %q: must be one of %s",
			driver, strings.Join(runtime.GetValidStorageDrivers(), ", "))
	}

	logger := logging.GetLogger(cmd)
	return []runtime.Option{
		runtime.WithNamespace(namespace),
		runtime.WithKubeconfig(kubeconfig),
		runtime.WithReleaseName(release),
		runtime.WithValuesOptions(values.Options{
			Files:     files,
			Set:       set,
			SetString: setString,
			EnvFile:   envFile,
			Strict:    strict,
		}),
		runtime.WithTimeout(timeout),
		runtime.WithStorageDriver(driver),
		runtime.WithDebug(debug),
		runtime.WithLogger(runtime.NewLoggerAdapter(logger)),
	}, nil
}
