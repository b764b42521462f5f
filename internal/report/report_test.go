// Copyright (C) 2025 Hostreport Authors
// SPDX-License-Identifier: BSD-3-Clause

package report

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vmColumns() []Column {
	return []Column{
		{Name: "id", Header: "ID"},
		{Name: "name", Header: "Name"},
		{Name: "ram_gb", Header: "RAM (GB)", Numeric: true},
		{Name: "balloon_gb", Header: "Balloon (GB)", Numeric: true},
	}
}

func vmReport() *Report {
	r := NewReport("VM Memory", vmColumns())
	r.EntityKey = "vms"
	// VM1 2048 MiB, VM2 1024 MiB; balloon 512 MiB and 0 MiB
	r.AddRow("1", []Cell{
		{Plain: "1"},
		{Plain: "VM1"},
		{Plain: "2", Number: 2048 / 1024},
		{Plain: "0", Number: 512 / 1024},
	})
	r.AddRow("2", []Cell{
		{Plain: "2"},
		{Plain: "VM2"},
		{Plain: "1", Number: 1024 / 1024},
		{Plain: "0", Number: 0},
	})
	r.AddTotal(TotalField{Name: "vm_mem_gb", Label: "Total VM Memory Usage", Number: r.ColumnTotal("ram_gb"), Unit: "GB"})
	r.AddTotal(TotalField{Name: "balloon_gb", Label: "Total Ballooned Memory", Number: r.ColumnTotal("balloon_gb"), Unit: "GB"})
	return r
}

func TestColumnWidths(t *testing.T) {
	r := NewReport("widths", []Column{
		{Name: "iface", Header: "Interface"},
		{Name: "state", Header: "Link", Color: ColorGreen},
	})
	r.AddRow("eth0", []Cell{
		{Plain: "eth0"},
		{Plain: "up", Display: ColorGreen("up")},
	})
	r.AddRow("enp175s0f1", []Cell{
		{Plain: "enp175s0f1"},
		{Plain: "down", Display: ColorRed("down")},
	})
	widths := columnWidths(r)
	assert.Equal(t, len("enp175s0f1"), widths[0]) // longest cell
	assert.Equal(t, len("Link"), widths[1])       // header wins, color ignored
}

func TestRenderTable(t *testing.T) {
	r := vmReport()
	out, err := Create(FormatTable, r, Options{})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	// header, rule, two rows, rule, blank, two totals
	require.Len(t, lines, 8)
	assert.Equal(t, "ID   Name   RAM (GB)   Balloon (GB)", lines[0])
	assert.Equal(t, strings.Repeat("-", len(lines[0])), lines[1])
	assert.Equal(t, "1    VM1    2          0", lines[2])
	assert.Equal(t, "2    VM2    1          0", lines[3])
	assert.Equal(t, lines[1], lines[4])
	assert.Equal(t, "Total VM Memory Usage: 3 GB", lines[6])
	assert.Equal(t, "Total Ballooned Memory: 0 GB", lines[7])
}

func TestRenderTableSeparator(t *testing.T) {
	r := NewReport("sep", []Column{
		{Name: "a", Header: "A"},
		{Name: "b", Header: "B"},
	})
	r.AddRow("x", []Cell{{Plain: "x"}, {Plain: "y"}})
	out, err := Create(FormatTable, r, Options{Separator: "|"})
	require.NoError(t, err)
	lines := strings.Split(string(out), "\n")
	assert.Equal(t, "A | B", lines[0])
	assert.Equal(t, "x | y", lines[2])
}

func TestRenderTableColor(t *testing.T) {
	r := NewReport("color", []Column{
		{Name: "iface", Header: "Interface"},
		{Name: "state", Header: "Link"},
	})
	r.AddRow("eth0", []Cell{
		{Plain: "eth0"},
		{Plain: "up", Display: ColorGreen("up")},
	})
	plain, err := Create(FormatTable, r, Options{Color: false})
	require.NoError(t, err)
	assert.NotContains(t, string(plain), "\x1b[")
	colored, err := Create(FormatTable, r, Options{Color: true})
	require.NoError(t, err)
	assert.Contains(t, string(colored), "\x1b[")
	// width computed on plain text in both cases
	assert.True(t, strings.HasPrefix(string(plain), "Interface   Link"))
}

func TestRenderTableEmpty(t *testing.T) {
	r := NewReport("empty", vmColumns())
	out, err := Create(FormatTable, r, Options{})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	// header + rule only, no trailing rule
	require.Len(t, lines, 2)
	assert.Equal(t, "ID   Name   RAM (GB)   Balloon (GB)", lines[0])
}

func TestRenderCsv(t *testing.T) {
	r := vmReport()
	out, err := Create(FormatCsv, r, Options{})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	require.Len(t, lines, 3) // header + two data lines
	assert.Equal(t, `"ID","Name","RAM (GB)","Balloon (GB)"`, lines[0])
	assert.Equal(t, `"1","VM1","2","0"`, lines[1])
	assert.Equal(t, `"2","VM2","1","0"`, lines[2])
}

func TestRenderCsvFieldSubset(t *testing.T) {
	r := vmReport()
	r.CSVFields = []string{"name", "ram_gb"}
	out, err := Create(FormatCsv, r, Options{})
	require.NoError(t, err)
	lines := strings.Split(string(out), "\n")
	assert.Equal(t, `"Name","RAM (GB)"`, lines[0])
	assert.Equal(t, `"VM1","2"`, lines[1])
}

func TestRenderCsvQuoting(t *testing.T) {
	r := NewReport("q", []Column{{Name: "v", Header: "V"}})
	r.AddRow("x", []Cell{{Plain: `say "hi"`}})
	out, err := Create(FormatCsv, r, Options{})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"say ""hi"""`)
}

func TestRenderCsvSeparator(t *testing.T) {
	r := vmReport()
	out, err := Create(FormatCsv, r, Options{Separator: ";"})
	require.NoError(t, err)
	lines := strings.Split(string(out), "\n")
	assert.Equal(t, `"ID";"Name";"RAM (GB)";"Balloon (GB)"`, lines[0])
}

func TestRenderCsvEmpty(t *testing.T) {
	r := NewReport("empty", vmColumns())
	out, err := Create(FormatCsv, r, Options{})
	require.NoError(t, err)
	assert.Equal(t, "\"ID\",\"Name\",\"RAM (GB)\",\"Balloon (GB)\"\n", string(out))
}

func TestRenderJson(t *testing.T) {
	r := vmReport()
	r.AddSummary(SummaryField{Name: "total_gb", Label: "Total Host Memory", Value: "64", Number: 64, Numeric: true})
	r.AddSummary(SummaryField{Name: "used_gb", Label: "Used Host Memory", Value: "10", Number: 10, Numeric: true})
	out, err := Create(FormatJson, r, Options{})
	require.NoError(t, err)

	var parsed struct {
		HostSummary map[string]int64 `json:"host_summary"`
		Vms         []map[string]any `json:"vms"`
		Totals      map[string]int64 `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(out, &parsed))
	assert.Equal(t, int64(64), parsed.HostSummary["total_gb"])
	require.Len(t, parsed.Vms, 2)
	assert.Equal(t, "VM1", parsed.Vms[0]["name"])
	assert.Equal(t, float64(2), parsed.Vms[0]["ram_gb"])
	assert.Equal(t, int64(3), parsed.Totals["vm_mem_gb"])
	assert.Equal(t, int64(0), parsed.Totals["balloon_gb"])

	// two-space indentation, numerics unquoted, key order follows the schema
	assert.Contains(t, string(out), "    \"ram_gb\": 2")
	nameIdx := strings.Index(string(out), "\"name\"")
	ramIdx := strings.Index(string(out), "\"ram_gb\"")
	assert.Less(t, nameIdx, ramIdx)
}

func TestRenderJsonBareArray(t *testing.T) {
	r := NewReport("nics", []Column{
		{Name: "iface", Header: "Interface"},
		{Name: "speed", Header: "Speed"},
	})
	r.AddRow("eth0", []Cell{{Plain: "eth0"}, {Plain: "10000Mb/s"}})
	out, err := Create(FormatJson, r, Options{})
	require.NoError(t, err)
	var parsed []map[string]string
	require.NoError(t, json.Unmarshal(out, &parsed))
	require.Len(t, parsed, 1)
	assert.Equal(t, "eth0", parsed[0]["iface"])
}

func TestRenderJsonEmpty(t *testing.T) {
	bare := NewReport("nics", vmColumns())
	out, err := Create(FormatJson, bare, Options{})
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(out))

	sectioned := vmReport()
	sectioned.rows = nil
	out, err = Create(FormatJson, sectioned, Options{})
	require.NoError(t, err)
	var parsed map[string]any
	require.NoError(t, json.Unmarshal(out, &parsed))
	assert.Empty(t, parsed["vms"])
}

func TestRenderJsonEscaping(t *testing.T) {
	r := NewReport("esc", []Column{{Name: "v", Header: "V"}})
	r.AddRow("x", []Cell{{Plain: `path\to "dir"`}})
	out, err := Create(FormatJson, r, Options{})
	require.NoError(t, err)
	var parsed []map[string]string
	require.NoError(t, json.Unmarshal(out, &parsed))
	assert.Equal(t, `path\to "dir"`, parsed[0]["v"])
}

func TestRenderJsonFieldSubset(t *testing.T) {
	r := vmReport()
	r.JSONFields = []string{"id", "name", "ram_gb"}
	out, err := Create(FormatJson, r, Options{})
	require.NoError(t, err)
	// balloon_gb appears only in the totals section, not in the rows
	assert.Equal(t, 1, strings.Count(string(out), "\"balloon_gb\""))
	assert.Equal(t, 2, strings.Count(string(out), "\"ram_gb\""))
}

func TestNegativeTotal(t *testing.T) {
	// host used may be less than the VM sum; the subtraction is reported as-is
	r := vmReport()
	hostUsedGB := int64(2)
	r.AddTotal(TotalField{Name: "host_other_gb", Label: "Host Memory Used Excluding VMs", Number: hostUsedGB - r.ColumnTotal("ram_gb"), Unit: "GB"})
	out, err := Create(FormatTable, r, Options{})
	require.NoError(t, err)
	assert.Contains(t, string(out), "Host Memory Used Excluding VMs: -1 GB")
}

func TestColumnTotalRowOrder(t *testing.T) {
	r := NewReport("t", []Column{{Name: "n", Header: "N", Numeric: true}})
	for i := 0; i < 5; i++ {
		r.AddRow(fmt.Sprintf("%d", i), []Cell{{Plain: fmt.Sprintf("%d", i), Number: int64(i)}})
	}
	assert.Equal(t, int64(10), r.ColumnTotal("n"))
}

func TestAddRowCellCountMismatch(t *testing.T) {
	r := NewReport("t", vmColumns())
	assert.Panics(t, func() {
		r.AddRow("1", []Cell{{Plain: "1"}})
	})
}

func TestCreateInvalidFormat(t *testing.T) {
	_, err := Create("xml", vmReport(), Options{})
	assert.Error(t, err)
}

func TestSortRows(t *testing.T) {
	r := NewReport("s", []Column{{Name: "iface", Header: "Interface"}})
	r.AddRow("eth2", []Cell{{Plain: "eth2"}})
	r.AddRow("eth0", []Cell{{Plain: "eth0"}})
	r.AddRow("eth1", []Cell{{Plain: "eth1"}})
	r.SortRows(func(a, b Row) bool { return a.ID < b.ID })
	assert.Equal(t, "eth0", r.Rows()[0].ID)
	assert.Equal(t, "eth2", r.Rows()[2].ID)
}

func TestWriteXlsx(t *testing.T) {
	r := vmReport()
	path := filepath.Join(t.TempDir(), "report.xlsx")
	err := WriteXlsx(r, path)
	assert.NoError(t, err)
}
