// Package ui renders tables and prompts for the CLI.
package ui

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
	v1 "helm.sh/helm/v4/pkg/release/v1"
)

// Column represents a table column definition
type Column struct {
	Title     string
	Key       string
	Width     int
	MinWidth  int
	MaxWidth  int
	StyleFunc func(value string) lipgloss.Style
	// Hidden columns are skipped when rendering.
	Hidden bool
}

// Row maps column keys to cell values.
type Row map[string]string

// Table renders rows as aligned, styled columns.
type Table struct {
	columns        []Column
	rows           []Row
	headerStyle    lipgloss.Style
	separatorStyle lipgloss.Style
	maxWidth       int
}

// NewTable creates a new table sized to the terminal.
func NewTable() *Table {
	return &Table{
		headerStyle:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorBrightCyan)).Padding(0, 1),
		separatorStyle: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBrightGray)),
		maxWidth:       min(terminalWidth(), TableMaxWidth),
	}
}

// SetColumns sets the table columns
func (t *Table) SetColumns(columns []Column) *Table {
	t.columns = columns
	return t
}

// SetRows sets the table data
func (t *Table) SetRows(rows []Row) *Table {
	t.rows = rows
	return t
}

// SetMaxWidth sets the maximum table width
func (t *Table) SetMaxWidth(width int) *Table {
	t.maxWidth = width
	return t
}

func (t *Table) visibleColumns() []Column {
	var visible []Column
	for _, col := range t.columns {
		if !col.Hidden {
			visible = append(visible, col)
		}
	}
	return visible
}

// columnWidths sizes columns to their content, then shares the remaining
// width among the columns without a fixed width.
func (t *Table) columnWidths(columns []Column) []int {
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = max(runewidth.StringWidth(col.Title), col.MinWidth)
		if col.Width > 0 {
			widths[i] = col.Width
		}
	}

	for _, row := range t.rows {
		for i, col := range columns {
			if col.Width == 0 {
				widths[i] = max(widths[i], runewidth.StringWidth(row[col.Key]))
			}
		}
	}

	totalFixed := 0
	flexible := 0
	for i, col := range columns {
		if col.MaxWidth > 0 && widths[i] > col.MaxWidth {
			widths[i] = col.MaxWidth
		}
		if col.Width > 0 {
			totalFixed += widths[i]
		} else {
			flexible++
		}
	}

	if flexible > 0 && t.maxWidth > 0 {
		available := t.maxWidth - totalFixed - len(columns)*2
		if available > 0 {
			perCol := available / flexible
			for i, col := range columns {
				if col.Width == 0 {
					widths[i] = min(widths[i], perCol)
				}
			}
		}
	}

	return widths
}

// Render renders the table as a string
func (t *Table) Render() string {
	columns := t.visibleColumns()
	if len(columns) == 0 {
		return ""
	}

	var sb strings.Builder
	widths := t.columnWidths(columns)

	headers := make([]string, len(columns))
	for i, col := range columns {
		header := lipgloss.NewStyle().
			Width(widths[i]).
			MaxWidth(widths[i]).
			Inline(true).
			Render(truncateText(col.Title, widths[i]))
		headers[i] = t.headerStyle.Render(header)
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Left, headers...))
	sb.WriteString("\n")

	totalWidth := 0
	for _, width := range widths {
		totalWidth += width + 2
	}
	sb.WriteString(t.separatorStyle.Render(strings.Repeat("─", totalWidth)))
	sb.WriteString("\n")

	for _, row := range t.rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			value := row[col.Key]
			if value == "" {
				value = "-"
			}

			style := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBrightWhite))
			if col.StyleFunc != nil {
				style = col.StyleFunc(value)
			}

			cell := style.
				Width(widths[i]).
				MaxWidth(widths[i]).
				Inline(true).
				Render(truncateText(value, widths[i]))
			cells[i] = lipgloss.NewStyle().Padding(0, 1).Render(cell)
		}
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Left, cells...))
		sb.WriteString("\n")
	}

	return sb.String()
}

// Fprint writes the rendered table to w.
func (t *Table) Fprint(w io.Writer) error {
	_, err := fmt.Fprint(w, t.Render())
	return err
}

// truncateText truncates text with an ellipsis
func truncateText(text string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(text) <= maxWidth {
		return text
	}
	if maxWidth <= 3 {
		return strings.Repeat(".", maxWidth)
	}
	return runewidth.Truncate(text, maxWidth, "…")
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return fallbackWidth
	}
	return width
}

// IsTerminal reports whether stdout is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// GetStatusStyle colors a Helm release status. A leading indicator dot is ignored.
func GetStatusStyle(status string) lipgloss.Style {
	s := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(status, "●")))
	switch {
	case slices.Contains([]string{v1.StatusDeployed.String(), v1.StatusSuperseded.String()}, s):
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGreen)).Bold(true)
	case slices.Contains([]string{v1.StatusPendingInstall.String(), v1.StatusPendingUpgrade.String(), v1.StatusPendingRollback.String(), v1.StatusUninstalling.String(), v1.StatusUnknown.String()}, s):
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)).Bold(true)
	case s == v1.StatusFailed.String():
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBrightGray)).Bold(true)
	}
}

// GetReadyStyle colors a ready/total pod count.
func GetReadyStyle(ready string) lipgloss.Style {
	got, total, ok := strings.Cut(ready, "/")
	switch {
	case !ok || total == "0":
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBrightGray))
	case got == total:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGreen))
	case got == "0":
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow))
	}
}
