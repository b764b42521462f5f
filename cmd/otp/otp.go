// Copyright (C) 2025 Hostreport Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package otp implements the otp command. It resets a user's one-time
// password enrollment in the accounts database via the mysql client.
package otp

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"hostreport/internal/common"
	"hostreport/internal/extract"
	"hostreport/internal/report"
	"hostreport/internal/script"
	"hostreport/internal/target"
	"hostreport/internal/util"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

const cmdName = "otp"

var examples = []string{
	fmt.Sprintf("  Reset a user's OTP enrollment:  $ %s %s --config db.yaml jdoe", common.AppName, cmdName),
	fmt.Sprintf("  Skip the confirmation prompt:   $ %s %s --config db.yaml --yes jdoe", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName + " USERNAME",
	Short:         "Reset a user's OTP enrollment in the accounts database",
	Example:       strings.Join(examples, "\n"),
	Args:          cobra.ExactArgs(1),
	RunE:          runCmd,
	GroupID:       "primary",
	SilenceErrors: true,
}

var (
	flagConfig string
	flagYes    bool
	flagReport common.ReportingFlags
)

const (
	flagConfigName = "config"
	flagYesName    = "yes"
)

func init() {
	Cmd.Flags().StringVar(&flagConfig, flagConfigName, "", "path to the YAML database profile (required)")
	_ = Cmd.MarkFlagRequired(flagConfigName)
	Cmd.Flags().BoolVar(&flagYes, flagYesName, false, "do not ask for confirmation")
	common.AddReportingFlags(Cmd.Flags(), &flagReport)
}

// Profile describes the database connection and schema.
type Profile struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Table    string `yaml:"table"`
}

// LoadProfile reads and validates the YAML database profile.
func LoadProfile(path string) (*Profile, error) {
	content, err := os.ReadFile(util.ExpandUser(path)) // #nosec G304
	if err != nil {
		return nil, errors.Wrap(err, "failed to read profile")
	}
	var profile Profile
	if err := yaml.UnmarshalStrict(content, &profile); err != nil {
		return nil, errors.Wrap(err, "failed to parse profile")
	}
	if profile.Database == "" {
		return nil, errors.New("profile does not name a database")
	}
	if profile.Host == "" {
		profile.Host = "localhost"
	}
	if profile.Port == 0 {
		profile.Port = 3306
	}
	if profile.Table == "" {
		profile.Table = "users"
	}
	if !identifierRegex.MatchString(profile.Table) {
		return nil, errors.Errorf("invalid table name: %s", profile.Table)
	}
	return &profile, nil
}

var (
	identifierRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	usernameRegex   = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
)

// ValidateUsername rejects names that cannot be embedded in a statement
// passed to the mysql client.
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return errors.Errorf("invalid username: %s", username)
	}
	return nil
}

func runCmd(cmd *cobra.Command, args []string) error {
	username := args[0]
	if err := flagReport.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	if err := ValidateUsername(username); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	profile, err := LoadProfile(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	myTarget := target.NewLocalTarget()
	prereqs := []script.ScriptDefinition{{Name: "mysql", Command: "mysql", Superuser: true}}
	if err := script.VerifyPrerequisites(myTarget, prereqs); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	found, enabled, err := queryOtpEnabled(myTarget, profile, username)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	if !found {
		// nothing to reset, report it and leave the database alone
		rpt := resultReport(username, "N/A", "not found")
		if err := common.RenderAndWrite(rpt, &flagReport); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return err
		}
		return nil
	}
	if !flagYes && !confirm(os.Stdin, os.Stdout, username) {
		fmt.Println("Aborted.")
		return nil
	}
	if err := resetOtp(myTarget, profile, username); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	wasEnrolled := "no"
	if enabled {
		wasEnrolled = "yes"
	}
	rpt := resultReport(username, wasEnrolled, "reset")
	if err := common.RenderAndWrite(rpt, &flagReport); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// queryOtpEnabled reports whether the user exists and, when they do, their
// current OTP enrollment state. An unknown user is not an error.
func queryOtpEnabled(myTarget target.Target, profile *Profile, username string) (found bool, enabled bool, err error) {
	out := script.RunScript(myTarget, mysqlScript(profile, fmt.Sprintf(
		"SELECT otp_enabled FROM %s WHERE username = '%s'", profile.Table, username)))
	if out.Exitcode != 0 {
		return false, false, errors.Errorf("failed to query user: %s", strings.TrimSpace(out.Stderr))
	}
	value := strings.TrimSpace(out.Stdout)
	if value == "" {
		return false, false, nil
	}
	return true, extract.ParseInt(value, 0) != 0, nil
}

// resetOtp clears the user's OTP secret and enrollment flag.
func resetOtp(myTarget target.Target, profile *Profile, username string) error {
	out := script.RunScript(myTarget, mysqlScript(profile, fmt.Sprintf(
		"UPDATE %s SET otp_secret = NULL, otp_enabled = 0 WHERE username = '%s'", profile.Table, username)))
	if out.Exitcode != 0 {
		return errors.Errorf("failed to reset OTP: %s", strings.TrimSpace(out.Stderr))
	}
	return nil
}

// mysqlScript builds a batch-mode mysql client invocation for one statement.
func mysqlScript(profile *Profile, statement string) script.ScriptDefinition {
	return script.ScriptDefinition{
		Name:    "mysql",
		Command: "mysql",
		Args: []string{
			"-h", profile.Host,
			"-P", fmt.Sprintf("%d", profile.Port),
			"-N", "-B",
			"-D", profile.Database,
			"-e", statement,
		},
		Superuser: true,
	}
}

func confirm(in io.Reader, out io.Writer, username string) bool {
	fmt.Fprintf(out, "Reset OTP enrollment for %s? [y/N] ", username)
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}

func resultColumns() []report.Column {
	return []report.Column{
		{Name: "username", Header: "Username"},
		{Name: "was_enabled", Header: "Was Enrolled"},
		{Name: "status", Header: "Status", Color: statusColor},
	}
}

func statusColor(status string) string {
	if status == "reset" {
		return report.ColorGreen(status)
	}
	return report.ColorYellow(status)
}

func resultReport(username string, wasEnrolled string, status string) *report.Report {
	rpt := report.NewReport("OTP Reset", resultColumns())
	rpt.AddRow(username, []report.Cell{
		{Plain: username},
		{Plain: wasEnrolled},
		{Plain: status},
	})
	return rpt
}
