// Copyright (C) 2025 Hostreport Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package csr implements the csr command. It generates TLS certificate
// signing requests for a list of hosts described in a YAML configuration
// file, invoking openssl for the key and request generation.
package csr

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"hostreport/internal/common"
	"hostreport/internal/progress"
	"hostreport/internal/report"
	"hostreport/internal/script"
	"hostreport/internal/target"
	"hostreport/internal/util"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

const cmdName = "csr"

var examples = []string{
	fmt.Sprintf("  Generate CSRs for the configured hosts:  $ %s %s --config hosts.yaml", common.AppName, cmdName),
	fmt.Sprintf("  Result summary as JSON:                  $ %s %s --config hosts.yaml --output json", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Generate TLS certificate signing requests",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	GroupID:       "primary",
	SilenceErrors: true,
}

var (
	flagConfig string
	flagReport common.ReportingFlags
)

const flagConfigName = "config"

func init() {
	Cmd.Flags().StringVar(&flagConfig, flagConfigName, "", "path to the YAML request configuration (required)")
	_ = Cmd.MarkFlagRequired(flagConfigName)
	common.AddReportingFlags(Cmd.Flags(), &flagReport)
}

// Config describes the requests to generate. Subject defaults apply to
// every host unless the host overrides them.
type Config struct {
	OutDir             string       `yaml:"out_dir"`
	KeyBits            int          `yaml:"key_bits"`
	Country            string       `yaml:"country"`
	State              string       `yaml:"state"`
	Locality           string       `yaml:"locality"`
	Organization       string       `yaml:"organization"`
	OrganizationalUnit string       `yaml:"organizational_unit"`
	Hosts              []HostConfig `yaml:"hosts"`
}

// HostConfig describes one certificate request.
type HostConfig struct {
	CommonName string   `yaml:"common_name"`
	Sans       []string `yaml:"sans"`
}

const defaultKeyBits = 4096

// LoadConfig reads and validates the YAML request configuration.
func LoadConfig(path string) (*Config, error) {
	content, err := os.ReadFile(util.ExpandUser(path)) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg Config
	if err := yaml.UnmarshalStrict(content, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.KeyBits == 0 {
		cfg.KeyBits = defaultKeyBits
	}
	if cfg.OutDir == "" {
		cfg.OutDir = "."
	}
	if !util.IsValidDirectoryName(cfg.OutDir) {
		return nil, fmt.Errorf("invalid out_dir: %s", cfg.OutDir)
	}
	if len(cfg.Hosts) == 0 {
		return nil, fmt.Errorf("config defines no hosts")
	}
	for _, host := range cfg.Hosts {
		if host.CommonName == "" {
			return nil, fmt.Errorf("host entry without common_name")
		}
	}
	return &cfg, nil
}

func csrColumns() []report.Column {
	return []report.Column{
		{Name: "common_name", Header: "Common Name"},
		{Name: "key", Header: "Key File"},
		{Name: "csr", Header: "CSR File"},
		{Name: "sans", Header: "SANs"},
		{Name: "status", Header: "Status", Color: statusColor},
	}
}

func statusColor(status string) string {
	if status == "OK" {
		return report.ColorGreen(status)
	}
	return report.ColorRed(status)
}

func runCmd(cmd *cobra.Command, args []string) error {
	if err := flagReport.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	cfg, err := LoadConfig(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	myTarget := target.NewLocalTarget()
	if !myTarget.ToolInPath("openssl") {
		err := fmt.Errorf("required tool not found in PATH: openssl")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	if err := os.MkdirAll(cfg.OutDir, 0750); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create output directory: %v\n", err)
		return err
	}

	multiSpinner := progress.NewMultiSpinner()
	_ = multiSpinner.AddSpinner(myTarget.GetName())
	multiSpinner.Start()
	rpt := generateRequests(myTarget, cfg, multiSpinner.Status)
	multiSpinner.Finish()

	if err := common.RenderAndWrite(rpt, &flagReport); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// generateRequests runs openssl once per host and reports the outcome. A
// failed generation marks the row FAILED and the run continues.
func generateRequests(myTarget target.Target, cfg *Config, statusUpdate progress.MultiSpinnerUpdateFunc) *report.Report {
	rpt := report.NewReport("Certificate Signing Requests", csrColumns())
	for _, host := range cfg.Hosts {
		if statusUpdate != nil {
			_ = statusUpdate(myTarget.GetName(), fmt.Sprintf("generating %s", host.CommonName))
		}
		keyPath := filepath.Join(cfg.OutDir, host.CommonName+".key")
		csrPath := filepath.Join(cfg.OutDir, host.CommonName+".csr")
		out := script.RunScript(myTarget, opensslScript(cfg, host, keyPath, csrPath))
		status := "OK"
		if out.Exitcode != 0 {
			status = "FAILED"
		}
		rpt.AddRow(host.CommonName, []report.Cell{
			{Plain: host.CommonName},
			{Plain: keyPath},
			{Plain: csrPath},
			{Plain: fmt.Sprintf("%d", len(host.Sans))},
			{Plain: status},
		})
	}
	return rpt
}

// opensslScript builds the openssl req invocation for one host.
func opensslScript(cfg *Config, host HostConfig, keyPath string, csrPath string) script.ScriptDefinition {
	args := []string{
		"req", "-new",
		"-newkey", fmt.Sprintf("rsa:%d", cfg.KeyBits),
		"-nodes",
		"-keyout", keyPath,
		"-out", csrPath,
		"-subj", subject(cfg, host.CommonName),
	}
	if len(host.Sans) > 0 {
		args = append(args, "-addext", "subjectAltName="+subjectAltName(host.Sans))
	}
	return script.ScriptDefinition{
		Name:    fmt.Sprintf("openssl req %s", host.CommonName),
		Command: "openssl",
		Args:    args,
	}
}

// subject renders the distinguished name, skipping unset components.
func subject(cfg *Config, commonName string) string {
	var sb strings.Builder
	for _, part := range []struct{ key, value string }{
		{"C", cfg.Country},
		{"ST", cfg.State},
		{"L", cfg.Locality},
		{"O", cfg.Organization},
		{"OU", cfg.OrganizationalUnit},
		{"CN", commonName},
	} {
		if part.value != "" {
			sb.WriteString(fmt.Sprintf("/%s=%s", part.key, part.value))
		}
	}
	return sb.String()
}

// subjectAltName classifies each SAN as an IP or DNS entry.
func subjectAltName(sans []string) string {
	entries := make([]string, 0, len(sans))
	for _, san := range sans {
		if net.ParseIP(san) != nil {
			entries = append(entries, "IP:"+san)
		} else {
			entries = append(entries, "DNS:"+san)
		}
	}
	return strings.Join(entries, ",")
}
