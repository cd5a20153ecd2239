package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"gopkg.in/yaml.v3"

	"github.com/prometheus-mcp-server/pmcpctl/internal/chart"
	"github.com/prometheus-mcp-server/pmcpctl/internal/naming"
	"github.com/prometheus-mcp-server/pmcpctl/internal/ui"
)

// isTerminal is replaceable in tests.
var isTerminal = ui.IsTerminal

// Metadata identifies the tool and chart that produced a structured output.
type Metadata struct {
	Tool    string `json:"tool" yaml:"tool"`
	Version string `json:"version" yaml:"version"`
	Chart   string `json:"chart,omitempty" yaml:"chart,omitempty"`
}

// Document is the envelope of every json/yaml output.
type Document struct {
	Metadata Metadata `json:"_metadata" yaml:"_metadata"`
	Data     any      `json:"data" yaml:"data"`
}

// NewMetadata describes this build and its embedded chart.
func NewMetadata() Metadata {
	md := Metadata{Tool: ToolName, Version: Version}
	if meta, err := chart.LoadMetadata(); err == nil {
		md.Chart = naming.ChartLabel(meta.Naming())
	}
	return md
}

// ValidateOutputFormat rejects formats other than table, json and yaml.
func ValidateOutputFormat(format string) error {
	if !slices.Contains(OutputFormats, format) {
		return fmt.Errorf("invalid output format: '%s', must be one of: %s", format, strings.Join(OutputFormats, ", "))
	}
	return nil
}

// WriteStructured writes data wrapped in a Document as json or yaml. JSON
// written to a terminal stdout is syntax highlighted.
func WriteStructured(w io.Writer, format string, data any) error {
	doc := Document{Metadata: NewMetadata(), Data: data}

	switch format {
	case OutputFormatJSON:
		out, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to serialize JSON: %w", err)
		}
		out = append(out, '\n')

		if f, ok := w.(*os.File); ok && f == os.Stdout {
			if colorized, err := ColorizeJSONWithChroma(out); err == nil {
				_, err = io.WriteString(w, colorized)
				return err
			}
		}
		_, err = w.Write(out)
		return err
	case OutputFormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to serialize YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to serialize YAML: %w", err)
		}
		_, err := w.Write(buf.Bytes())
		return err
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// ColorizeJSONWithChroma applies syntax highlighting to JSON using chroma
func ColorizeJSONWithChroma(data []byte) (string, error) {
	if !isTerminal() {
		return string(data), nil
	}

	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}

	style := styles.Get("github")
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.Get("terminal")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, string(data))
	if err != nil {
		return "", fmt.Errorf("failed to tokenize JSON: %w", err)
	}

	var result strings.Builder
	if err := formatter.Format(&result, style, iterator); err != nil {
		return "", fmt.Errorf("failed to format JSON: %w", err)
	}

	return result.String(), nil
}
