// Copyright (C) 2025 Hostreport Authors
// SPDX-License-Identifier: BSD-3-Clause

package report

import (
	"fmt"
	"strings"
)

// renderJson produces the JSON form. Reports with an EntityKey render as a
// top-level object with host_summary, <EntityKey>, and totals sections;
// reports without one render as a bare array of row objects. Key order
// within a row matches the schema's column order filtered by JSONFields.
// Output uses two-space indentation; strings are escaped for backslash and
// double-quote only, numerics are emitted unquoted.
func renderJson(report *Report) []byte {
	var sb strings.Builder
	cols, idxs := report.fieldColumns(report.JSONFields)

	if report.EntityKey == "" {
		writeRowArray(&sb, report, cols, idxs, "")
		sb.WriteString("\n")
		return []byte(sb.String())
	}

	sb.WriteString("{\n")
	sections := 0
	if len(report.Summary) > 0 {
		sb.WriteString("  \"host_summary\": {\n")
		for i, field := range report.Summary {
			sb.WriteString(fmt.Sprintf("    \"%s\": %s", field.Name, jsonValue(field.Value, field.Number, field.Numeric)))
			if i < len(report.Summary)-1 {
				sb.WriteString(",")
			}
			sb.WriteString("\n")
		}
		sb.WriteString("  }")
		sections++
	}
	if sections > 0 {
		sb.WriteString(",\n")
	}
	sb.WriteString(fmt.Sprintf("  \"%s\": ", report.EntityKey))
	writeRowArray(&sb, report, cols, idxs, "  ")
	if len(report.Totals) > 0 {
		sb.WriteString(",\n")
		sb.WriteString("  \"totals\": {\n")
		for i, total := range report.Totals {
			sb.WriteString(fmt.Sprintf("    \"%s\": %d", total.Name, total.Number))
			if i < len(report.Totals)-1 {
				sb.WriteString(",")
			}
			sb.WriteString("\n")
		}
		sb.WriteString("  }")
	}
	sb.WriteString("\n}\n")
	return []byte(sb.String())
}

// writeRowArray writes the entity array at the given indent level.
func writeRowArray(sb *strings.Builder, report *Report, cols []Column, idxs []int, indent string) {
	if len(report.rows) == 0 {
		sb.WriteString("[]")
		return
	}
	sb.WriteString("[\n")
	for r, row := range report.rows {
		sb.WriteString(indent + "  {\n")
		for i, idx := range idxs {
			cell := row.Cells[idx]
			sb.WriteString(fmt.Sprintf("%s    \"%s\": %s", indent, cols[i].Name, jsonValue(cell.Plain, cell.Number, cols[i].Numeric)))
			if i < len(cols)-1 {
				sb.WriteString(",")
			}
			sb.WriteString("\n")
		}
		sb.WriteString(indent + "  }")
		if r < len(report.rows)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(indent + "]")
}

func jsonValue(plain string, number int64, numeric bool) string {
	if numeric {
		return fmt.Sprintf("%d", number)
	}
	return "\"" + escapeJson(plain) + "\""
}

func escapeJson(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	return strings.ReplaceAll(s, "\"", "\\\"")
}
