// Copyright (C) 2025 Hostreport Authors
// SPDX-License-Identifier: BSD-3-Clause

package report

import (
	"fmt"
	"strings"
)

// columnWidths computes the display width of every schema column: the
// maximum of the header label length and every row's plain cell length.
// Colorized variants never influence widths.
func columnWidths(report *Report) []int {
	widths := make([]int, len(report.Columns))
	for i, col := range report.Columns {
		widths[i] = len(col.Header)
	}
	for _, row := range report.rows {
		for i, cell := range row.Cells {
			if len(cell.Plain) > widths[i] {
				widths[i] = len(cell.Plain)
			}
		}
	}
	return widths
}

// renderTable produces the aligned table form: summary lines, header, a
// dash rule, the data rows, a closing rule when rows exist, then totals.
func renderTable(report *Report, options Options) []byte {
	var sb strings.Builder

	for _, field := range report.Summary {
		sb.WriteString(fmt.Sprintf("%s: %s\n", field.Label, field.Value))
	}
	if len(report.Summary) > 0 {
		sb.WriteString("\n")
	}

	gap := "   "
	if options.Separator != "" {
		gap = " " + options.Separator + " "
	}
	widths := columnWidths(report)

	ruleWidth := 0
	for _, w := range widths {
		ruleWidth += w
	}
	if len(widths) > 1 {
		ruleWidth += len(gap) * (len(widths) - 1)
	}
	rule := strings.Repeat("-", ruleWidth)

	headers := make([]string, len(report.Columns))
	for i, col := range report.Columns {
		headers[i] = pad(col.Header, col.Header, widths[i])
	}
	sb.WriteString(strings.TrimRight(strings.Join(headers, gap), " "))
	sb.WriteString("\n")
	sb.WriteString(rule)
	sb.WriteString("\n")

	for _, row := range report.rows {
		cells := make([]string, len(row.Cells))
		for i, cell := range row.Cells {
			display := cell.Plain
			if options.Color {
				if cell.Display != "" {
					display = cell.Display
				} else if report.Columns[i].Color != nil {
					display = report.Columns[i].Color(cell.Plain)
				}
			}
			cells[i] = pad(display, cell.Plain, widths[i])
		}
		sb.WriteString(strings.TrimRight(strings.Join(cells, gap), " "))
		sb.WriteString("\n")
	}
	if len(report.rows) > 0 {
		sb.WriteString(rule)
		sb.WriteString("\n")
	}

	if len(report.Totals) > 0 {
		sb.WriteString("\n")
		for _, total := range report.Totals {
			if total.Unit != "" {
				sb.WriteString(fmt.Sprintf("%s: %d %s\n", total.Label, total.Number, total.Unit))
			} else {
				sb.WriteString(fmt.Sprintf("%s: %d\n", total.Label, total.Number))
			}
		}
	}
	return []byte(sb.String())
}

// pad left-justifies display to the given width, measuring on plain so
// that ANSI escapes in display do not skew the padding.
func pad(display string, plain string, width int) string {
	if len(plain) >= width {
		return display
	}
	return display + strings.Repeat(" ", width-len(plain))
}
