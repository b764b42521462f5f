// Copyright (C) 2025 Hostreport Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package openstack implements the openstack command. It summarizes server,
// vCPU, and memory allocation per project from the OpenStack CLI.
package openstack

import (
	"fmt"
	"os"
	"strings"

	"hostreport/internal/common"
	"hostreport/internal/progress"
	"hostreport/internal/report"
	"hostreport/internal/script"
	"hostreport/internal/target"

	"github.com/spf13/cobra"
)

const cmdName = "openstack"

var examples = []string{
	fmt.Sprintf("  Resource usage per project:           $ %s %s", common.AppName, cmdName),
	fmt.Sprintf("  Resource usage per project as JSON:   $ %s %s --output json", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Report OpenStack resource allocation per project",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	GroupID:       "primary",
	SilenceErrors: true,
}

var flagReport common.ReportingFlags

func init() {
	common.AddReportingFlags(Cmd.Flags(), &flagReport)
}

func projectColumns() []report.Column {
	return []report.Column{
		{Name: "name", Header: "Project"},
		{Name: "id", Header: "ID"},
		{Name: "servers", Header: "Servers", Numeric: true},
		{Name: "active", Header: "Active", Numeric: true},
		{Name: "vcpus", Header: "vCPUs", Numeric: true},
		{Name: "ram_gb", Header: "RAM (GB)", Numeric: true},
	}
}

func runCmd(cmd *cobra.Command, args []string) error {
	if err := flagReport.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	myTarget := target.NewLocalTarget()
	multiSpinner := progress.NewMultiSpinner()
	_ = multiSpinner.AddSpinner(myTarget.GetName())
	multiSpinner.Start()
	rpt, err := openstackReport(myTarget, multiSpinner.Status)
	multiSpinner.Finish()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	if err := common.RenderAndWrite(rpt, &flagReport); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// openstackReport collects the project, server, and flavor listings and
// assembles the per-project usage report.
func openstackReport(myTarget target.Target, statusUpdate progress.MultiSpinnerUpdateFunc) (*report.Report, error) {
	scripts := []script.ScriptDefinition{
		script.GetScriptByName(script.OpenStackProjectsName),
		script.GetScriptByName(script.OpenStackServersName),
		script.GetScriptByName(script.OpenStackFlavorsName),
	}
	if err := script.VerifyPrerequisites(myTarget, scripts); err != nil {
		return nil, err
	}
	outputs := script.RunScripts(myTarget, scripts, statusUpdate)

	projects := parseProjects(outputs[script.OpenStackProjectsName].Stdout)
	servers := parseServers(outputs[script.OpenStackServersName].Stdout)
	flavors := parseFlavors(outputs[script.OpenStackFlavorsName].Stdout)
	return buildProjectReport(projects, servers, flavors), nil
}

// buildProjectReport aggregates servers into their projects. Projects with
// no servers still get a row, servers referencing an unknown project are
// ignored.
func buildProjectReport(projects []project, servers []server, flavors map[string]flavor) *report.Report {
	rpt := report.NewReport("OpenStack Resource Usage", projectColumns())
	rpt.EntityKey = "projects"

	usageByProject := make(map[string]*projectUsage)
	for _, p := range projects {
		usageByProject[p.id] = &projectUsage{}
	}
	for _, s := range servers {
		usage, ok := usageByProject[s.projectID]
		if !ok {
			continue
		}
		usage.servers++
		if s.status == "ACTIVE" {
			usage.active++
		}
		if f, ok := flavors[s.flavor]; ok {
			usage.vcpus += f.vcpus
			usage.ramMiB += f.ramMiB
		}
	}

	for _, p := range projects {
		usage := usageByProject[p.id]
		ramGB := usage.ramMiB / 1024
		rpt.AddRow(p.id, []report.Cell{
			{Plain: p.name},
			{Plain: p.id},
			{Plain: fmt.Sprintf("%d", usage.servers), Number: usage.servers},
			{Plain: fmt.Sprintf("%d", usage.active), Number: usage.active},
			{Plain: fmt.Sprintf("%d", usage.vcpus), Number: usage.vcpus},
			{Plain: fmt.Sprintf("%d", ramGB), Number: ramGB},
		})
	}

	rpt.AddSummary(report.SummaryField{Name: "projects", Label: "Projects", Value: fmt.Sprintf("%d", len(projects)), Number: int64(len(projects)), Numeric: true})
	rpt.AddTotal(report.TotalField{Name: "servers", Label: "Total Servers", Number: rpt.ColumnTotal("servers")})
	rpt.AddTotal(report.TotalField{Name: "vcpus", Label: "Total Allocated vCPUs", Number: rpt.ColumnTotal("vcpus")})
	rpt.AddTotal(report.TotalField{Name: "ram_gb", Label: "Total Allocated Memory", Number: rpt.ColumnTotal("ram_gb"), Unit: "GB"})
	return rpt
}

type projectUsage struct {
	servers int64
	active  int64
	vcpus   int64
	ramMiB  int64
}
