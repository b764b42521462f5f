// Copyright (C) 2025 Hostreport Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package memory implements the memory command. It reports host and per-VM
// memory usage on ESXi and KVM hypervisors.
package memory

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"hostreport/internal/common"
	"hostreport/internal/progress"
	"hostreport/internal/report"
	"hostreport/internal/target"

	"github.com/spf13/cobra"
)

const cmdName = "memory"

var examples = []string{
	fmt.Sprintf("  Memory report with auto-detected hypervisor:  $ %s %s", common.AppName, cmdName),
	fmt.Sprintf("  KVM memory report as CSV:                     $ %s %s --source kvm --output csv", common.AppName, cmdName),
	fmt.Sprintf("  Compare against a saved baseline:             $ %s %s --baseline /var/tmp/mem.baseline", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Report host and per-VM memory usage",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	GroupID:       "primary",
	SilenceErrors: true,
}

// memory sources
const (
	SourceAuto = "auto"
	SourceEsxi = "esxi"
	SourceKvm  = "kvm"
)

var (
	flagSource   string
	flagBaseline string
	flagReport   common.ReportingFlags
)

const (
	flagSourceName   = "source"
	flagBaselineName = "baseline"
)

func init() {
	Cmd.Flags().StringVar(&flagSource, flagSourceName, SourceAuto, "hypervisor source, one of: auto, esxi, kvm")
	Cmd.Flags().StringVar(&flagBaseline, flagBaselineName, "", "path to a baseline file for before/after comparison")
	common.AddReportingFlags(Cmd.Flags(), &flagReport)
}

func runCmd(cmd *cobra.Command, args []string) error {
	appContext := cmd.Parent().Context().Value(common.AppContext{}).(common.AppContext)
	if err := flagReport.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	myTarget := target.NewLocalTarget()
	source, err := resolveSource(myTarget, flagSource)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	slog.Info("collecting memory report", slog.String("source", source))

	multiSpinner := progress.NewMultiSpinner()
	_ = multiSpinner.AddSpinner(myTarget.GetName())
	multiSpinner.Start()
	var rpt *report.Report
	if source == SourceEsxi {
		rpt, err = esxiReport(myTarget, multiSpinner.Status)
	} else {
		rpt, err = kvmReport(myTarget, multiSpinner.Status)
	}
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
	if flagBaseline != "" && flagReport.Format == report.FormatTable {
		if !baselineSupported(source) {
			slog.Warn("baseline comparison skipped", slog.String("reason", "only supported with --source kvm"))
			fmt.Fprintf(os.Stderr, "Warning: baseline comparison is only supported with --%s kvm\n", flagSourceName)
			return nil
		}
		comparison, err := compareBaseline(flagBaseline, currentFreeOutput(myTarget))
		if err != nil {
			slog.Warn("baseline comparison skipped", slog.String("error", err.Error()))
			return nil
		}
		fmt.Printf("\n%s", comparison)
	}
	return nil
}

// baselineSupported reports whether the baseline comparison can run for the
// resolved source. The comparison reads free, which ESXi does not ship.
func baselineSupported(source string) bool {
	return source == SourceKvm
}

// resolveSource maps the --source flag to a concrete hypervisor, probing the
// PATH for the hypervisor CLI when set to auto.
func resolveSource(myTarget target.Target, source string) (string, error) {
	switch source {
	case SourceEsxi, SourceKvm:
		return source, nil
	case SourceAuto:
		if myTarget.ToolInPath("vsish") {
			return SourceEsxi, nil
		}
		if myTarget.ToolInPath("virsh") {
			return SourceKvm, nil
		}
		return "", fmt.Errorf("no supported hypervisor CLI found in PATH, use --%s to choose one", flagSourceName)
	default:
		return "", common.FlagValidationError{Flag: flagSourceName, Msg: "source must be one of: auto, esxi, kvm"}
	}
}
