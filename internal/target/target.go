// Copyright (C) 2025 Hostreport Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package target provides the abstraction used to run external commands on
// the host under inspection.
package target

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Target represents a host on which external management tools are invoked.
type Target interface {
	// GetName returns the name of the target, e.g., the hostname.
	GetName() string
	// RunCommand executes the given command and returns the standard output,
	// standard error, exit code, and any error that occurred. A timeout of 0
	// means no timeout is applied.
	RunCommand(cmd *exec.Cmd, timeout int) (stdout string, stderr string, exitCode int, err error)
	// IsSuperUser reports whether commands run with effective root privileges.
	IsSuperUser() bool
	// ToolInPath reports whether the named tool can be found in PATH.
	ToolInPath(tool string) bool
}

// LocalTarget runs commands on the local host.
type LocalTarget struct {
	host string
}

// NewLocalTarget creates a Target for the local host.
func NewLocalTarget() *LocalTarget {
	host, err := os.Hostname()
	if err != nil {
		slog.Warn("failed to get hostname", slog.String("error", err.Error()))
		host = "localhost"
	}
	return &LocalTarget{host: host}
}

// GetName returns the name of the Target.
func (t *LocalTarget) GetName() string {
	return t.host
}

// RunCommand executes the given command with a timeout and returns the standard
// output, standard error, exit code, and any error that occurred.
func (t *LocalTarget) RunCommand(cmd *exec.Cmd, timeout int) (stdout string, stderr string, exitCode int, err error) {
	return runLocalCommandWithTimeout(cmd, timeout)
}

// IsSuperUser checks if the current user is a superuser.
func (t *LocalTarget) IsSuperUser() bool {
	return os.Geteuid() == 0
}

// ToolInPath reports whether the named tool can be found in PATH.
func (t *LocalTarget) ToolInPath(tool string) bool {
	_, err := exec.LookPath(tool)
	return err == nil
}

// runLocalCommandWithTimeout executes a local command with an optional timeout
// and captures the command's standard output, standard error, and exit code.
// A timeout of 0 means no timeout is applied.
func runLocalCommandWithTimeout(cmd *exec.Cmd, timeout int) (stdout string, stderr string, exitCode int, err error) {
	slog.Debug("running local command", slog.String("cmd", cmd.String()), slog.Int("timeout", timeout))
	if timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
		defer cancel()
		commandWithContext := exec.CommandContext(ctx, cmd.Path, cmd.Args[1:]...) // #nosec G204
		commandWithContext.Env = cmd.Env
		cmd = commandWithContext
	}
	var outbuf, errbuf strings.Builder
	cmd.Stdout = &outbuf
	cmd.Stderr = &errbuf
	err = cmd.Run()
	stdout = outbuf.String()
	stderr = errbuf.String()
	if err != nil {
		exitError := &exec.ExitError{}
		if errors.As(err, &exitError) {
			exitCode = exitError.ExitCode()
		}
	}
	return
}
