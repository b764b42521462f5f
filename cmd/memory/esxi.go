// Copyright (C) 2025 Hostreport Authors
// SPDX-License-Identifier: BSD-3-Clause

package memory

import (
	"fmt"

	"hostreport/internal/extract"
	"hostreport/internal/progress"
	"hostreport/internal/report"
	"hostreport/internal/script"
	"hostreport/internal/target"
)

func esxiColumns() []report.Column {
	return []report.Column{
		{Name: "id", Header: "ID"},
		{Name: "name", Header: "Name"},
		{Name: "ram_gb", Header: "RAM (GB)", Numeric: true},
		{Name: "guest_gb", Header: "Guest Used (GB)", Numeric: true},
		{Name: "host_gb", Header: "Host Used (GB)", Numeric: true},
		{Name: "balloon_gb", Header: "Ballooned (GB)", Numeric: true},
	}
}

// esxiReport collects host and per-VM memory usage from an ESXi host via
// vsish, vim-cmd, and esxcli.
func esxiReport(myTarget target.Target, statusUpdate progress.MultiSpinnerUpdateFunc) (*report.Report, error) {
	scripts := []script.ScriptDefinition{
		script.GetScriptByName(script.VsishMemoryScriptName),
		script.GetScriptByName(script.VimCmdGetAllVmsName),
		script.GetScriptByName(script.EsxcliHardwareMemName),
		script.GetScriptByName(script.EsxcliSystemVersionName),
	}
	if err := script.VerifyPrerequisites(myTarget, scripts); err != nil {
		return nil, err
	}
	outputs := script.RunScripts(myTarget, scripts, statusUpdate)

	rpt := report.NewReport("ESXi Memory Usage", esxiColumns())
	rpt.EntityKey = "vms"

	totalGB, usedGB := esxiHostMemory(
		outputs[script.VsishMemoryScriptName].Stdout,
		outputs[script.EsxcliHardwareMemName].Stdout,
	)
	for _, field := range esxiSummary(totalGB, usedGB, outputs[script.EsxcliSystemVersionName].Stdout) {
		rpt.AddSummary(field)
	}

	for _, vm := range parseVmList(outputs[script.VimCmdGetAllVmsName].Stdout) {
		if statusUpdate != nil {
			_ = statusUpdate(myTarget.GetName(), fmt.Sprintf("collecting VM %s", vm.name))
		}
		summary := script.RunScript(myTarget, script.VmSummaryScript(vm.id))
		rpt.AddRow(vm.id, esxiVmCells(vm.id, vm.name, summary.Stdout))
	}

	rpt.AddTotal(report.TotalField{Name: "vm_mem_gb", Label: "Total VM Memory Usage", Number: rpt.ColumnTotal("ram_gb"), Unit: "GB"})
	rpt.AddTotal(report.TotalField{Name: "balloon_gb", Label: "Total Ballooned Memory", Number: rpt.ColumnTotal("balloon_gb"), Unit: "GB"})
	// can go negative when VM accounting disagrees with host accounting
	rpt.AddTotal(report.TotalField{Name: "host_other_gb", Label: "Host Memory Used Excluding VMs", Number: usedGB - rpt.ColumnTotal("host_gb"), Unit: "GB"})
	return rpt, nil
}

type vmIdent struct {
	id   string
	name string
}

// parseVmList extracts the VM id and name columns from vim-cmd
// vmsvc/getallvms output. Data lines begin with a numeric vmid.
func parseVmList(output string) []vmIdent {
	var vms []vmIdent
	for _, match := range extract.ValsArrayFromRegexSubmatch(output, `^(\d+)\s+(\S+)\s+`) {
		vms = append(vms, vmIdent{id: match[0], name: match[1]})
	}
	return vms
}

// esxiVmCells builds one VM row from vim-cmd vmsvc/get.summary output. All
// source quantities are MiB; absent metrics fall back to zero.
func esxiVmCells(id string, name string, summary string) []report.Cell {
	ramGB := extract.MiBToGiB(extract.IntAfterEquals(summary, "memorySizeMB", 0))
	guestGB := extract.MiBToGiB(extract.IntAfterEquals(summary, "guestMemoryUsage", 0))
	hostGB := extract.MiBToGiB(extract.IntAfterEquals(summary, "hostMemoryUsage", 0))
	balloonGB := extract.MiBToGiB(extract.IntAfterEquals(summary, "balloonedMemory", 0))
	return []report.Cell{
		{Plain: id},
		{Plain: name},
		{Plain: fmt.Sprintf("%d", ramGB), Number: ramGB},
		{Plain: fmt.Sprintf("%d", guestGB), Number: guestGB},
		{Plain: fmt.Sprintf("%d", hostGB), Number: hostGB},
		{Plain: fmt.Sprintf("%d", balloonGB), Number: balloonGB},
	}
}

// esxiHostMemory derives total and used host memory in GB from vsish
// /memory/comprehensive output, falling back to esxcli hardware memory for
// the total when vsish is unavailable.
func esxiHostMemory(vsish string, esxcli string) (totalGB int64, usedGB int64) {
	totalKiB := extract.IntAfterColon(vsish, "Physical memory estimate", 0)
	freeKiB := extract.IntAfterColon(vsish, "Free", 0)
	if totalKiB == 0 {
		totalKiB = extract.IntAfterColon(esxcli, "Physical Memory", 0) / 1024
	}
	totalGB = extract.KiBToGiB(totalKiB)
	usedGB = extract.KiBToGiB(totalKiB - freeKiB)
	return
}

func esxiSummary(totalGB int64, usedGB int64, versionOutput string) []report.SummaryField {
	var usagePercent int64
	if totalGB > 0 {
		usagePercent = usedGB * 100 / totalGB
	}
	version := extract.ValAfterColon(versionOutput, "Version", "N/A")
	return []report.SummaryField{
		{Name: "total_gb", Label: "Total Host Memory (GB)", Value: fmt.Sprintf("%d", totalGB), Number: totalGB, Numeric: true},
		{Name: "used_gb", Label: "Used Host Memory (GB)", Value: fmt.Sprintf("%d", usedGB), Number: usedGB, Numeric: true},
		{Name: "usage_percent", Label: "Host Memory Usage (%)", Value: fmt.Sprintf("%d", usagePercent), Number: usagePercent, Numeric: true},
		{Name: "version", Label: "ESXi Version", Value: version},
	}
}
