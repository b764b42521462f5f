// Copyright (C) 2025 Hostreport Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package benchmark implements the benchmark command. It drives the
// Phoronix Test Suite in batch mode and reports the results.
package benchmark

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"hostreport/internal/common"
	"hostreport/internal/progress"
	"hostreport/internal/report"
	"hostreport/internal/script"
	"hostreport/internal/target"

	"github.com/spf13/cobra"
)

const cmdName = "benchmark"

var examples = []string{
	fmt.Sprintf("  Run the disk suite:              $ %s %s --suite disk", common.AppName, cmdName),
	fmt.Sprintf("  Run the cpu suite, CSV results:  $ %s %s --suite cpu --output csv", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Run disk or CPU benchmarks and report the results",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	GroupID:       "primary",
	SilenceErrors: true,
}

// benchmark suites and their Phoronix Test Suite test profiles
var suites = map[string][]string{
	"disk": {"pts/fio", "pts/iozone"},
	"cpu":  {"pts/sysbench", "pts/compress-7zip"},
}

var (
	flagSuite  string
	flagReport common.ReportingFlags
)

const flagSuiteName = "suite"

func init() {
	Cmd.Flags().StringVar(&flagSuite, flagSuiteName, "", "benchmark suite, one of: disk, cpu (required)")
	_ = Cmd.MarkFlagRequired(flagSuiteName)
	common.AddReportingFlags(Cmd.Flags(), &flagReport)
}

func resultColumns() []report.Column {
	return []report.Column{
		{Name: "test", Header: "Test"},
		{Name: "scenario", Header: "Scenario"},
		{Name: "value", Header: "Result"},
		{Name: "unit", Header: "Unit"},
	}
}

func runCmd(cmd *cobra.Command, args []string) error {
	if err := flagReport.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	tests, ok := suites[flagSuite]
	if !ok {
		err := common.FlagValidationError{Flag: flagSuiteName, Msg: "suite must be one of: disk, cpu"}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	myTarget := target.NewLocalTarget()
	runScript := batchRunScript(tests)
	if err := script.VerifyPrerequisites(myTarget, []script.ScriptDefinition{runScript}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	multiSpinner := progress.NewMultiSpinner()
	_ = multiSpinner.AddSpinner(myTarget.GetName())
	multiSpinner.Start()
	_ = multiSpinner.Status(myTarget.GetName(), fmt.Sprintf("running %s suite", flagSuite))
	out := script.RunScript(myTarget, runScript)
	multiSpinner.Finish()

	rpt := resultReport(flagSuite, parseResults(out.Stdout))
	if err := common.RenderAndWrite(rpt, &flagReport); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// batchRunScript builds the batch-mode invocation. Batch mode keeps the
// suite from prompting between tests.
func batchRunScript(tests []string) script.ScriptDefinition {
	return script.ScriptDefinition{
		Name:    "phoronix batch-run",
		Command: "phoronix-test-suite",
		Args:    append([]string{"batch-run"}, tests...),
		Timeout: 14400,
	}
}

type result struct {
	test     string
	scenario string
	value    string
	unit     string
}

var (
	testRegex   = regexp.MustCompile(`^\s*(pts/[\w.-]+)\s+\[(.+)\]\s*$`)
	resultRegex = regexp.MustCompile(`^\s*Average:\s+([\d.]+)\s+(\S.*?)\s*$`)
)

// parseResults extracts the result lines from batch-run output. Each test
// announces itself with a "pts/name [scenario]" line; its Average line
// carries the measured value and unit.
func parseResults(output string) []result {
	var results []result
	var test, scenario string
	for _, line := range strings.Split(output, "\n") {
		if match := testRegex.FindStringSubmatch(line); match != nil {
			test = match[1]
			scenario = match[2]
			continue
		}
		if match := resultRegex.FindStringSubmatch(line); match != nil && test != "" {
			results = append(results, result{test: test, scenario: scenario, value: match[1], unit: match[2]})
		}
	}
	return results
}

func resultReport(suite string, results []result) *report.Report {
	rpt := report.NewReport(fmt.Sprintf("Benchmark Results (%s)", suite), resultColumns())
	for i, res := range results {
		rpt.AddRow(fmt.Sprintf("%d", i+1), []report.Cell{
			{Plain: res.test},
			{Plain: res.scenario},
			{Plain: res.value},
			{Plain: res.unit},
		})
	}
	return rpt
}
