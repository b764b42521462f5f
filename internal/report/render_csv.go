// Copyright (C) 2025 Hostreport Authors
// SPDX-License-Identifier: BSD-3-Clause

package report

import (
	"strings"
)

// renderCsv produces the CSV form: one header row then one row per entity,
// every field double-quoted, in the same row order as the table. The field
// set comes from CSVFields and may be a subset of the table's columns.
// Summary and totals are not part of CSV output.
func renderCsv(report *Report, options Options) []byte {
	delimiter := ","
	if options.Separator != "" {
		delimiter = options.Separator
	}
	cols, idxs := report.fieldColumns(report.CSVFields)

	var sb strings.Builder
	headers := make([]string, len(cols))
	for i, col := range cols {
		headers[i] = quoteCsv(col.Header)
	}
	sb.WriteString(strings.Join(headers, delimiter))
	sb.WriteString("\n")

	for _, row := range report.rows {
		fields := make([]string, len(cols))
		for i, idx := range idxs {
			fields[i] = quoteCsv(row.Cells[idx].Plain)
		}
		sb.WriteString(strings.Join(fields, delimiter))
		sb.WriteString("\n")
	}
	return []byte(sb.String())
}

func quoteCsv(field string) string {
	return "\"" + strings.ReplaceAll(field, "\"", "\"\"") + "\""
}
