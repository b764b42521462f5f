// Copyright (C) 2025 Hostreport Authors
// SPDX-License-Identifier: BSD-3-Clause

package memory

import (
	"fmt"
	"strings"

	"hostreport/internal/extract"
	"hostreport/internal/progress"
	"hostreport/internal/report"
	"hostreport/internal/script"
	"hostreport/internal/target"
)

func kvmColumns() []report.Column {
	return []report.Column{
		{Name: "id", Header: "ID"},
		{Name: "name", Header: "Name"},
		{Name: "state", Header: "State", Color: kvmStateColor},
		{Name: "max_gb", Header: "Max (GB)", Numeric: true},
		{Name: "used_gb", Header: "Used (GB)", Numeric: true},
		{Name: "rss_gb", Header: "RSS (GB)", Numeric: true},
	}
}

func kvmStateColor(state string) string {
	if state == "running" {
		return report.ColorGreen(state)
	}
	return report.ColorYellow(state)
}

// kvmReport collects host and per-domain memory usage from a KVM host via
// virsh, free, and the KSM sysfs counters.
func kvmReport(myTarget target.Target, statusUpdate progress.MultiSpinnerUpdateFunc) (*report.Report, error) {
	scripts := []script.ScriptDefinition{
		script.GetScriptByName(script.VirshListScriptName),
		script.GetScriptByName(script.FreeScriptName),
		script.GetScriptByName(script.KsmPagesSharingName),
	}
	if err := script.VerifyPrerequisites(myTarget, scripts); err != nil {
		return nil, err
	}
	outputs := script.RunScripts(myTarget, scripts, statusUpdate)

	rpt := report.NewReport("KVM Memory Usage", kvmColumns())
	rpt.EntityKey = "vms"

	totalGB, usedGB := hostMemoryFromFree(outputs[script.FreeScriptName].Stdout)
	for _, field := range kvmSummary(totalGB, usedGB, outputs[script.KsmPagesSharingName].Stdout) {
		rpt.AddSummary(field)
	}

	for _, domain := range parseDomainList(outputs[script.VirshListScriptName].Stdout) {
		if statusUpdate != nil {
			_ = statusUpdate(myTarget.GetName(), fmt.Sprintf("collecting domain %s", domain.name))
		}
		domInfo := script.RunScript(myTarget, script.DomInfoScript(domain.name))
		memStat := script.RunScript(myTarget, script.DomMemStatScript(domain.name))
		rpt.AddRow(domain.id, kvmVmCells(domain, domInfo.Stdout, memStat.Stdout))
	}

	rpt.AddTotal(report.TotalField{Name: "vm_mem_gb", Label: "Total VM Memory Usage", Number: rpt.ColumnTotal("used_gb"), Unit: "GB"})
	rpt.AddTotal(report.TotalField{Name: "rss_gb", Label: "Total VM Resident Memory", Number: rpt.ColumnTotal("rss_gb"), Unit: "GB"})
	// can go negative when VM accounting disagrees with host accounting
	rpt.AddTotal(report.TotalField{Name: "host_other_gb", Label: "Host Memory Used Excluding VMs", Number: usedGB - rpt.ColumnTotal("used_gb"), Unit: "GB"})
	return rpt, nil
}

type domainIdent struct {
	id    string
	name  string
	state string
}

// parseDomainList extracts the id, name, and state columns from virsh list
// output. Data lines begin with a numeric domain id.
func parseDomainList(output string) []domainIdent {
	var domains []domainIdent
	for _, match := range extract.ValsArrayFromRegexSubmatch(output, `^\s*(\d+)\s+(\S+)\s+(.+?)\s*$`) {
		domains = append(domains, domainIdent{id: match[0], name: match[1], state: match[2]})
	}
	return domains
}

// kvmVmCells builds one domain row from virsh dominfo and dommemstat output.
// Source quantities are KiB; absent metrics fall back to zero.
func kvmVmCells(domain domainIdent, domInfo string, memStat string) []report.Cell {
	maxGB := extract.KiBToGiB(extract.IntAfterColon(domInfo, "Max memory", 0))
	usedGB := extract.KiBToGiB(extract.IntFromLastToken(memStat, "actual", 0))
	rssGB := extract.KiBToGiB(extract.IntFromLastToken(memStat, "rss", 0))
	return []report.Cell{
		{Plain: domain.id},
		{Plain: domain.name},
		{Plain: domain.state},
		{Plain: fmt.Sprintf("%d", maxGB), Number: maxGB},
		{Plain: fmt.Sprintf("%d", usedGB), Number: usedGB},
		{Plain: fmt.Sprintf("%d", rssGB), Number: rssGB},
	}
}

// hostMemoryFromFree parses the Mem: line of free -m output. Quantities are
// MiB in the source and GB in the result.
func hostMemoryFromFree(output string) (totalGB int64, usedGB int64) {
	for _, line := range strings.Split(output, "\n") {
		if !strings.HasPrefix(line, "Mem:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return
		}
		totalGB = extract.MiBToGiB(extract.ParseInt(fields[1], 0))
		usedGB = extract.MiBToGiB(extract.ParseInt(fields[2], 0))
		return
	}
	return
}

// ksmSavedMiB converts the KSM pages_sharing counter (4 KiB pages) to MiB.
func ksmSavedMiB(pagesSharing string) int64 {
	return extract.ParseInt(strings.TrimSpace(pagesSharing), 0) * 4 / 1024
}

func kvmSummary(totalGB int64, usedGB int64, pagesSharing string) []report.SummaryField {
	var usagePercent int64
	if totalGB > 0 {
		usagePercent = usedGB * 100 / totalGB
	}
	ksmMiB := ksmSavedMiB(pagesSharing)
	return []report.SummaryField{
		{Name: "total_gb", Label: "Total Host Memory (GB)", Value: fmt.Sprintf("%d", totalGB), Number: totalGB, Numeric: true},
		{Name: "used_gb", Label: "Used Host Memory (GB)", Value: fmt.Sprintf("%d", usedGB), Number: usedGB, Numeric: true},
		{Name: "usage_percent", Label: "Host Memory Usage (%)", Value: fmt.Sprintf("%d", usagePercent), Number: usagePercent, Numeric: true},
		{Name: "ksm_saved_mb", Label: "KSM Shared Memory (MB)", Value: fmt.Sprintf("%d", ksmMiB), Number: ksmMiB, Numeric: true},
	}
}
