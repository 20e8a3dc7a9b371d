package main

import (
	"fmt"
	"io"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/shibukawa/mysqltools/admin"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	cellStyle   = lipgloss.NewStyle()
)

// renderTable lays out rows in padded columns under a bold header.
func renderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}

	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, renderRow(headerStyle, widths, headers))

	for _, row := range rows {
		lines = append(lines, renderRow(cellStyle, widths, row))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderRow(style lipgloss.Style, widths []int, cells []string) string {
	rendered := make([]string, len(widths))

	for i, width := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}

		if i < len(widths)-1 {
			width += 2
		}

		rendered[i] = style.Width(width).Render(cell)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// highlightSQL writes source with terminal syntax highlighting, or as is when
// color output is disabled.
func highlightSQL(w io.Writer, source string) error {
	if color.NoColor {
		_, err := fmt.Fprintln(w, source)
		return err
	}

	lexer := lexers.Get("mysql")
	if lexer == nil {
		lexer = lexers.Fallback
	}

	lexer = chroma.Coalesce(lexer)

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return fmt.Errorf("failed to tokenise SQL: %w", err)
	}

	if err := formatter.Format(w, style, iterator); err != nil {
		return err
	}

	_, err = fmt.Fprintln(w)

	return err
}

// printOutcomes lists each outcome and a closing summary line.
func printOutcomes(w io.Writer, outcomes []admin.Outcome, quiet bool) {
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)

	for _, o := range outcomes {
		switch o.Status {
		case admin.Applied:
			if !quiet {
				green.Fprintln(w, o.String())
			}
		case admin.Skipped:
			if !quiet {
				yellow.Fprintln(w, o.String())
			}
		case admin.Failed:
			red.Fprintln(w, o.String())
		}
	}

	s := admin.Summarize(outcomes)
	color.New(color.FgCyan).Fprintf(w, "%d applied, %d skipped, %d failed\n", s.Applied, s.Skipped, s.Failed)
}
