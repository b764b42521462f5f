// Copyright (C) 2025 Hostreport Authors
// SPDX-License-Identifier: BSD-3-Clause

/*
Package report provides the tabular report model and the table, CSV, JSON,
and XLSX renderers shared by all hostreport commands.

A Report is built once per invocation: the command's collector extracts
fields from external tool output, adds one Row per entity, and attaches
summary and total fields. The renderers all consume the same Report; field
sets for CSV and JSON are configured per report and need not mirror the
table's columns.
*/
package report

import (
	"fmt"
	"sort"
)

// report formats
const (
	FormatTable = "table"
	FormatCsv   = "csv"
	FormatJson  = "json"
)

// FormatOptions is the list of valid report formats.
var FormatOptions = []string{FormatTable, FormatCsv, FormatJson}

// Column defines one slot in a report's schema.
type Column struct {
	Name    string                   // field name used as the JSON key
	Header  string                   // label printed in table and CSV headers
	Numeric bool                     // numeric columns are summed and emitted unquoted in JSON
	Color   func(plain string) string // optional colorized variant, table rendering only
}

// Cell holds one rendered value. Display, when non-empty, is the colorized
// variant used in table output; column widths are always computed on Plain.
type Cell struct {
	Plain   string
	Display string
	Number  int64 // set for cells in Numeric columns
}

// Row holds one entity's cells, one per schema column.
type Row struct {
	ID    string
	Cells []Cell
}

// SummaryField is one host-level scalar printed above the table and under
// the host_summary JSON section.
type SummaryField struct {
	Name    string // JSON key
	Label   string
	Value   string
	Number  int64
	Numeric bool
}

// TotalField is one aggregate printed below the table and under the totals
// JSON section. CSV output does not include totals.
type TotalField struct {
	Name   string // JSON key
	Label  string
	Number int64
	Unit   string
}

// Report is the top-level output unit. Construct with NewReport, add rows
// in discovery order, then render with Create.
type Report struct {
	Name       string
	EntityKey  string // JSON key for the entity array, e.g. "vms"; empty renders a bare array
	Columns    []Column
	Summary    []SummaryField
	Totals     []TotalField
	CSVFields  []string // column names included in CSV output; nil means all columns
	JSONFields []string // column names included in JSON output; nil means all columns
	rows       []Row
	colTotals  map[string]int64
}

// NewReport creates an empty report with the given schema.
func NewReport(name string, columns []Column) *Report {
	return &Report{
		Name:      name,
		Columns:   columns,
		colTotals: make(map[string]int64),
	}
}

// AddRow appends one entity's cells and accumulates the numeric column
// totals. The number of cells must match the schema.
func (r *Report) AddRow(id string, cells []Cell) {
	if len(cells) != len(r.Columns) {
		panic(fmt.Sprintf("report %s: row %s has %d cells, schema has %d columns", r.Name, id, len(cells), len(r.Columns)))
	}
	for i, col := range r.Columns {
		if col.Numeric {
			r.colTotals[col.Name] += cells[i].Number
		}
	}
	r.rows = append(r.rows, Row{ID: id, Cells: cells})
}

// Rows returns the rows in insertion order.
func (r *Report) Rows() []Row {
	return r.rows
}

// ColumnTotal returns the running sum of a numeric column across all rows
// added so far.
func (r *Report) ColumnTotal(name string) int64 {
	return r.colTotals[name]
}

// AddSummary appends a host-level scalar field.
func (r *Report) AddSummary(field SummaryField) {
	r.Summary = append(r.Summary, field)
}

// AddTotal appends an aggregate field.
func (r *Report) AddTotal(field TotalField) {
	r.Totals = append(r.Totals, field)
}

// SortRows reorders the rows with the given less function. Used by reports
// whose output order differs from discovery order, e.g. bond grouping.
func (r *Report) SortRows(less func(a, b Row) bool) {
	sort.SliceStable(r.rows, func(i, j int) bool { return less(r.rows[i], r.rows[j]) })
}

// ColumnIndex returns the schema index of the named column, or -1.
func (r *Report) ColumnIndex(name string) int {
	for i, col := range r.Columns {
		if col.Name == name {
			return i
		}
	}
	return -1
}

// fieldColumns resolves a configured field-name subset to schema columns
// with their indices, preserving schema order. A nil subset selects every
// column.
func (r *Report) fieldColumns(fields []string) ([]Column, []int) {
	if fields == nil {
		cols := make([]Column, len(r.Columns))
		idxs := make([]int, len(r.Columns))
		for i, col := range r.Columns {
			cols[i] = col
			idxs[i] = i
		}
		return cols, idxs
	}
	var cols []Column
	var idxs []int
	for i, col := range r.Columns {
		for _, name := range fields {
			if col.Name == name {
				cols = append(cols, col)
				idxs = append(idxs, i)
				break
			}
		}
	}
	return cols, idxs
}

// Options adjusts rendering behavior.
type Options struct {
	Separator string // table/CSV column separator glyph; empty selects the default
	Color     bool   // use colorized cell variants in table output
}

// Create renders the report in the given format.
func Create(format string, report *Report, options Options) ([]byte, error) {
	switch format {
	case FormatTable:
		return renderTable(report, options), nil
	case FormatCsv:
		return renderCsv(report, options), nil
	case FormatJson:
		return renderJson(report), nil
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}
