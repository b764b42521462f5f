// Copyright (C) 2025 Hostreport Authors
// SPDX-License-Identifier: BSD-3-Clause

package memory

import (
	"fmt"
	"os"
	"strings"

	"hostreport/internal/script"
	"hostreport/internal/target"
	"hostreport/internal/util"
)

// A baseline file is a timestamp or comment line followed by free-style
// output, written by an operator before a maintenance window. It is only
// ever read here.

// compareBaseline reads the baseline file and returns a comparison block
// against the current free output.
func compareBaseline(path string, currentFree string) (string, error) {
	expanded := util.ExpandUser(path)
	exists, err := util.FileExists(expanded)
	if err != nil {
		return "", fmt.Errorf("failed to read baseline file: %w", err)
	}
	if !exists {
		return "", fmt.Errorf("baseline file not found: %s", expanded)
	}
	content, err := os.ReadFile(expanded) // #nosec G304
	if err != nil {
		return "", fmt.Errorf("failed to read baseline file: %w", err)
	}
	timestamp, baselineFree, err := splitBaseline(string(content))
	if err != nil {
		return "", fmt.Errorf("malformed baseline file %s: %w", expanded, err)
	}
	baseTotal, baseUsed := hostMemoryFromFree(baselineFree)
	curTotal, curUsed := hostMemoryFromFree(currentFree)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Baseline (%s):\n", timestamp))
	sb.WriteString(fmt.Sprintf("  total %d GB, used %d GB\n", baseTotal, baseUsed))
	sb.WriteString("Current:\n")
	sb.WriteString(fmt.Sprintf("  total %d GB, used %d GB\n", curTotal, curUsed))
	sb.WriteString(fmt.Sprintf("Change in used memory: %+d GB\n", curUsed-baseUsed))
	return sb.String(), nil
}

// splitBaseline separates the leading timestamp line from the free-style
// remainder. The file must have at least one data line after the timestamp.
func splitBaseline(content string) (timestamp string, freeOutput string, err error) {
	lines := strings.SplitN(strings.TrimRight(content, "\n"), "\n", 2)
	if len(lines) < 2 || strings.TrimSpace(lines[1]) == "" {
		return "", "", fmt.Errorf("expected a timestamp line followed by memory data")
	}
	timestamp = strings.TrimSpace(strings.TrimLeft(lines[0], "# "))
	freeOutput = lines[1]
	return
}

// currentFreeOutput captures fresh free output for baseline comparison.
func currentFreeOutput(myTarget target.Target) string {
	return script.RunScript(myTarget, script.GetScriptByName(script.FreeScriptName)).Stdout
}
