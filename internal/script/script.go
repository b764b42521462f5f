// Copyright (C) 2025 Hostreport Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package script provides definitions of the external tool invocations used to
// collect data from a host, and functions to run them and capture the output.
package script

import (
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"hostreport/internal/progress"
	"hostreport/internal/target"
	"hostreport/internal/util"
)

// ScriptDefinition describes one external tool invocation.
type ScriptDefinition struct {
	Name      string   // just a name
	Command   string   // the program to run
	Args      []string // program arguments
	Superuser bool     // requires effective root
	Depends   []string // binaries that must be available in PATH
	Timeout   int      // seconds, 0 means no timeout
}

// ScriptOutput holds the captured output of one invocation.
type ScriptOutput struct {
	ScriptDefinition
	Stdout   string
	Stderr   string
	Exitcode int
}

// VerifyPrerequisites confirms that all dependencies of the given scripts are
// available and that privilege requirements are met. It is called before any
// data collection so that fatal conditions are reported up front.
func VerifyPrerequisites(myTarget target.Target, scripts []ScriptDefinition) error {
	needsRoot := false
	var tools []string
	for _, script := range scripts {
		if script.Superuser {
			needsRoot = true
		}
		deps := script.Depends
		if len(deps) == 0 {
			deps = []string{script.Command}
		}
		for _, dep := range deps {
			tools = util.UniqueAppend(tools, dep)
		}
	}
	if needsRoot && !myTarget.IsSuperUser() {
		return fmt.Errorf("must be run as root")
	}
	for _, tool := range tools {
		if !myTarget.ToolInPath(tool) {
			return fmt.Errorf("required tool not found in PATH: %s", tool)
		}
	}
	return nil
}

// RunScript runs a single script on the target and returns its output.
func RunScript(myTarget target.Target, script ScriptDefinition) ScriptOutput {
	cmd := exec.Command(script.Command, script.Args...) // #nosec G204
	stdout, stderr, exitcode, err := myTarget.RunCommand(cmd, script.Timeout)
	if err != nil {
		// a failed invocation means the associated metrics are unavailable,
		// not that the overall run should stop
		slog.Warn("script failed", slog.String("script", script.Name), slog.Int("exitcode", exitcode), slog.String("error", err.Error()), slog.String("stderr", strings.TrimSpace(stderr)))
	}
	return ScriptOutput{
		ScriptDefinition: script,
		Stdout:           stdout,
		Stderr:           stderr,
		Exitcode:         exitcode,
	}
}

// RunScripts runs the given scripts sequentially on the target and returns the
// output of each script as a map keyed by script name. One command is invoked
// and fully consumed before the next begins.
func RunScripts(myTarget target.Target, scripts []ScriptDefinition, statusUpdate progress.MultiSpinnerUpdateFunc) map[string]ScriptOutput {
	scriptOutputs := make(map[string]ScriptOutput)
	for _, script := range scripts {
		if statusUpdate != nil {
			_ = statusUpdate(myTarget.GetName(), fmt.Sprintf("collecting %s", script.Name))
		}
		scriptOutputs[script.Name] = RunScript(myTarget, script)
	}
	if statusUpdate != nil {
		_ = statusUpdate(myTarget.GetName(), "collection complete")
	}
	return scriptOutputs
}
