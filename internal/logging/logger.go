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

package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// New builds a styled Charm logger writing to w.
func New(w io.Writer, logLevel string, noColor bool) (*log.Logger, error) {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	options := log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      LogTimeFormat,
		Prefix:          LogPrefix,
		ReportCaller:    level == log.DebugLevel,
	}
	if noColor {
		options.Formatter = log.TextFormatter
	}

	logger := log.NewWithOptions(w, options)

	styles := log.DefaultStyles()
	styles.Levels[log.InfoLevel] = styles.Levels[log.InfoLevel].Foreground(lipgloss.Color("#00ff00"))
	styles.Levels[log.WarnLevel] = styles.Levels[log.WarnLevel].Foreground(lipgloss.Color("#ffff00"))
	styles.Levels[log.ErrorLevel] = styles.Levels[log.ErrorLevel].Foreground(lipgloss.Color("#ff0000"))
	styles.Levels[log.FatalLevel] = styles.Levels[log.FatalLevel].Foreground(lipgloss.Color("#ff0000")).Bold(true)

	// Highlight common keys for better log scanning
	for key, color := range map[string]string{
		"release":   "#00ffff",
		"namespace": "#00ffff",
		"file":      "#ff00ff",
		"key":       "#ff00ff",
		"err":       "#ff0000",
	} {
		styles.Keys[key] = styles.Keys[key].Foreground(lipgloss.Color(color))
	}
	logger.SetStyles(styles)

	return logger, nil
}

// SetupCharmLogger configures the command logger from the command-line flags
// and stores an observable wrapper with a metrics collector in the command
// context. The collector is returned so callers can report on it.
func SetupCharmLogger(cmd *cobra.Command, logLevel string, noColor, quiet bool) (*MetricsCollector, error) {
	var (
		logger *log.Logger
		err    error
	)
	if quiet {
		logger = log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
	} else {
		logger, err = New(os.Stderr, logLevel, noColor)
		if err != nil {
			return nil, err
		}
	}

	observable := NewObservableLogger(logger)
	collector := NewMetricsCollector()
	observable.AddHook(collector)

	cmd.SetContext(WithObservableLogger(cmd.Context(), observable))
	return collector, nil
}

// GetLogger retrieves the logger from the command context
func GetLogger(cmd *cobra.Command) *log.Logger {
	return FromContext(cmd.Context())
}

// GetObservableLogger retrieves the observable logger from the command context
func GetObservableLogger(cmd *cobra.Command) *ObservableLogger {
	return ObservableFromContext(cmd.Context())
}
