// Copyright (C) 2025 Hostreport Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package nic implements the nic command. It reports an inventory of the
// host's network interfaces with link, driver, bonding, and LLDP peer
// details.
package nic

import (
	"fmt"
	"os"
	"strings"

	"hostreport/internal/common"
	"hostreport/internal/extract"
	"hostreport/internal/progress"
	"hostreport/internal/report"
	"hostreport/internal/script"
	"hostreport/internal/target"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/spf13/cobra"
)

const cmdName = "nic"

var examples = []string{
	fmt.Sprintf("  NIC inventory:                        $ %s %s", common.AppName, cmdName),
	fmt.Sprintf("  Include VLAN and LACP columns:        $ %s %s --vlan --lacp", common.AppName, cmdName),
	fmt.Sprintf("  Group bonded interfaces:              $ %s %s --group-bond", common.AppName, cmdName),
	fmt.Sprintf("  CSV with a custom separator:          $ %s %s --output csv -s ';'", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Report network interface inventory and link status",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	GroupID:       "primary",
	SilenceErrors: true,
}

var (
	flagVlan      bool
	flagLacp      bool
	flagBmac      bool
	flagGroupBond bool
	flagReport    common.ReportingFlags
)

const (
	flagVlanName      = "vlan"
	flagLacpName      = "lacp"
	flagBmacName      = "bmac"
	flagGroupBondName = "group-bond"
)

func init() {
	Cmd.Flags().BoolVar(&flagVlan, flagVlanName, false, "include the VLAN column")
	Cmd.Flags().BoolVar(&flagLacp, flagLacpName, false, "include the LACP rate column")
	Cmd.Flags().BoolVar(&flagBmac, flagBmacName, false, "include the permanent bond MAC column")
	Cmd.Flags().BoolVar(&flagGroupBond, flagGroupBondName, false, "group rows by bond, sorted by bond then interface name")
	common.AddReportingFlags(Cmd.Flags(), &flagReport)
}

// optionalColumns reflects the enabled optional column flags. The schema is
// built once from it before any row is rendered.
type optionalColumns struct {
	vlan bool
	lacp bool
	bmac bool
}

// nicColumns builds the report schema. Optional columns are appended after
// the fixed set, in flag order.
func nicColumns(opts optionalColumns) []report.Column {
	columns := []report.Column{
		{Name: "iface", Header: "Interface"},
		{Name: "state", Header: "Link", Color: linkColor},
		{Name: "speed", Header: "Speed", Color: speedColor},
		{Name: "duplex", Header: "Duplex"},
		{Name: "mtu", Header: "MTU"},
		{Name: "mac", Header: "MAC"},
		{Name: "driver", Header: "Driver"},
		{Name: "bus", Header: "Bus"},
		{Name: "bond", Header: "Bond"},
	}
	if opts.vlan {
		columns = append(columns, report.Column{Name: "vlan", Header: "VLAN"})
	}
	if opts.lacp {
		columns = append(columns, report.Column{Name: "lacp", Header: "LACP", Color: lacpColor})
	}
	if opts.bmac {
		columns = append(columns, report.Column{Name: "bmac", Header: "Perm MAC"})
	}
	columns = append(columns,
		report.Column{Name: "peer_name", Header: "LLDP Peer"},
		report.Column{Name: "peer_port", Header: "LLDP Port"},
	)
	return columns
}

// nicFields lists the CSV/JSON field names: every column except the LLDP
// peer descriptions, which are table-only.
func nicFields(columns []report.Column) []string {
	var fields []string
	for _, col := range columns {
		if col.Name == "peer_name" || col.Name == "peer_port" {
			continue
		}
		fields = append(fields, col.Name)
	}
	return fields
}

func runCmd(cmd *cobra.Command, args []string) error {
	appContext := cmd.Parent().Context().Value(common.AppContext{}).(common.AppContext)
	if err := flagReport.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	myTarget := target.NewLocalTarget()
	multiSpinner := progress.NewMultiSpinner()
	_ = multiSpinner.AddSpinner(myTarget.GetName())
	multiSpinner.Start()
	rpt, err := nicReport(myTarget, optionalColumns{vlan: flagVlan, lacp: flagLacp, bmac: flagBmac}, flagGroupBond, multiSpinner.Status)
	multiSpinner.Finish()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if appContext.LogFilePath != "" {
			fmt.Fprintf(os.Stderr, "See %s for details.\n", appContext.LogFilePath)
		}
		return err
	}
	if err := common.RenderAndWrite(rpt, &flagReport); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// nicReport collects the interface inventory and assembles the report.
func nicReport(myTarget target.Target, opts optionalColumns, groupBond bool, statusUpdate progress.MultiSpinnerUpdateFunc) (*report.Report, error) {
	scripts := []script.ScriptDefinition{
		script.GetScriptByName(script.IpLinkScriptName),
	}
	prereqs := append(scripts, script.GetScriptByName(script.EthtoolCheckName))
	if err := script.VerifyPrerequisites(myTarget, prereqs); err != nil {
		return nil, err
	}
	outputs := script.RunScripts(myTarget, scripts, statusUpdate)
	nics := parseIpLink(outputs[script.IpLinkScriptName].Stdout)

	// LLDP peers are best effort, lldpctl is often not installed
	peers := map[string]lldpPeer{}
	if myTarget.ToolInPath("lldpctl") {
		lldpOut := script.RunScript(myTarget, script.GetScriptByName(script.LldpctlScriptName))
		peers = parseLldp(lldpOut.Stdout)
	}

	// one bonding dump per distinct bond master
	bonds := mapset.NewSet[string]()
	for _, bond := range extract.ValsFromRegexSubmatch(outputs[script.IpLinkScriptName].Stdout, `\bmaster\s+(\S+)`) {
		bonds.Add(bond)
	}
	bondInfo := map[string]bondState{}
	for _, bond := range bonds.ToSlice() {
		out := script.RunScript(myTarget, script.BondingScript(bond))
		bondInfo[bond] = parseBonding(out.Stdout)
	}

	columns := nicColumns(opts)
	rpt := report.NewReport("NIC Inventory", columns)
	rpt.CSVFields = nicFields(columns)
	rpt.JSONFields = rpt.CSVFields

	for _, nic := range nics {
		if statusUpdate != nil {
			_ = statusUpdate(myTarget.GetName(), fmt.Sprintf("collecting %s", nic.name))
		}
		link := parseEthtoolLink(script.RunScript(myTarget, script.EthtoolScript(nic.name)).Stdout)
		driver := parseEthtoolDriver(script.RunScript(myTarget, script.EthtoolDriverScript(nic.name)).Stdout)
		rpt.AddRow(nic.name, nicCells(nic, link, driver, bondInfo[nic.bond], peers[nic.name], opts))
	}

	if groupBond {
		groupRowsByBond(rpt, rpt.ColumnIndex("bond"))
	}
	return rpt, nil
}

// nicCells assembles one interface row. Optional cells are appended in the
// same order as the optional columns.
func nicCells(nic nicRecord, link linkSettings, driver driverInfo, bond bondState, peer lldpPeer, opts optionalColumns) []report.Cell {
	cells := []report.Cell{
		{Plain: nic.name},
		{Plain: nic.state},
		{Plain: link.speed},
		{Plain: link.duplex},
		{Plain: nic.mtu},
		{Plain: nic.mac},
		{Plain: driver.name},
		{Plain: driver.bus},
		{Plain: orNA(nic.bond)},
	}
	if opts.vlan {
		cells = append(cells, report.Cell{Plain: orNA(nic.vlan)})
	}
	if opts.lacp {
		cells = append(cells, report.Cell{Plain: orNA(bond.lacpRate)})
	}
	if opts.bmac {
		cells = append(cells, report.Cell{Plain: orNA(bond.permanentMacs[nic.name])})
	}
	cells = append(cells,
		report.Cell{Plain: orNA(peer.chassis)},
		report.Cell{Plain: orNA(peer.port)},
	)
	return cells
}

// groupRowsByBond reorders the rows: bonded interfaces first, sorted by bond
// name then interface name, followed by unbonded interfaces sorted by name.
func groupRowsByBond(rpt *report.Report, bondIdx int) {
	rpt.SortRows(func(a, b report.Row) bool {
		aBond := a.Cells[bondIdx].Plain
		bBond := b.Cells[bondIdx].Plain
		aBonded := aBond != naSentinel
		bBonded := bBond != naSentinel
		if aBonded != bBonded {
			return aBonded
		}
		if aBonded && aBond != bBond {
			return aBond < bBond
		}
		return a.ID < b.ID
	})
}

const naSentinel = "N/A"

func orNA(s string) string {
	if s == "" {
		return naSentinel
	}
	return s
}

func linkColor(state string) string {
	switch state {
	case "UP":
		return report.ColorGreen(state)
	case "DOWN":
		return report.ColorRed(state)
	}
	return state
}

// speedColor highlights the link speed tier.
func speedColor(speed string) string {
	switch {
	case strings.HasPrefix(speed, "100000") || strings.HasPrefix(speed, "40000") || strings.HasPrefix(speed, "25000") || strings.HasPrefix(speed, "10000"):
		return report.ColorGreen(speed)
	case strings.HasPrefix(speed, "1000"):
		return report.ColorCyan(speed)
	case speed == naSentinel:
		return speed
	}
	return report.ColorYellow(speed)
}

func lacpColor(rate string) string {
	if rate == naSentinel {
		return rate
	}
	return report.ColorCyan(rate)
}
