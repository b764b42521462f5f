// Copyright (C) 2025 Hostreport Authors
// SPDX-License-Identifier: BSD-3-Clause

package otp

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"hostreport/internal/target"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTarget returns canned mysql client output instead of running anything.
type fakeTarget struct {
	stdout   string
	stderr   string
	exitcode int
}

func (t *fakeTarget) GetName() string { return "testhost" }
func (t *fakeTarget) RunCommand(cmd *exec.Cmd, timeout int) (string, string, int, error) {
	return t.stdout, t.stderr, t.exitcode, nil
}
func (t *fakeTarget) IsSuperUser() bool           { return true }
func (t *fakeTarget) ToolInPath(tool string) bool { return true }

var _ target.Target = (*fakeTarget)(nil)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadProfile(t *testing.T) {
	profile, err := LoadProfile(writeProfile(t, "host: db01\nport: 3307\ndatabase: accounts\ntable: portal_users\n"))
	require.NoError(t, err)
	assert.Equal(t, &Profile{Host: "db01", Port: 3307, Database: "accounts", Table: "portal_users"}, profile)
}

func TestLoadProfileDefaults(t *testing.T) {
	profile, err := LoadProfile(writeProfile(t, "database: accounts\n"))
	require.NoError(t, err)
	assert.Equal(t, "localhost", profile.Host)
	assert.Equal(t, 3306, profile.Port)
	assert.Equal(t, "users", profile.Table)
}

func TestLoadProfileInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no database", "host: db01\n"},
		{"bad table name", "database: accounts\ntable: \"users; DROP TABLE users\"\n"},
		{"unknown key", "database: accounts\nserver: db01\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadProfile(writeProfile(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("jdoe"))
	assert.NoError(t, ValidateUsername("j.doe-2_x"))
	assert.Error(t, ValidateUsername(""))
	assert.Error(t, ValidateUsername("jdoe' OR '1'='1"))
	assert.Error(t, ValidateUsername("jdoe; --"))
	assert.Error(t, ValidateUsername("j doe"))
}

func TestMysqlScript(t *testing.T) {
	profile := &Profile{Host: "db01", Port: 3306, Database: "accounts", Table: "users"}
	def := mysqlScript(profile, "SELECT otp_enabled FROM users WHERE username = 'jdoe'")
	assert.Equal(t, "mysql", def.Command)
	assert.True(t, def.Superuser)
	assert.Contains(t, def.Args, "-N")
	assert.Contains(t, def.Args, "accounts")
	assert.Contains(t, def.Args, "SELECT otp_enabled FROM users WHERE username = 'jdoe'")
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"y\n", true},
		{"yes\n", true},
		{"Y\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		answer := confirm(strings.NewReader(tt.input), &out, "jdoe")
		assert.Equal(t, tt.expected, answer, "input %q", tt.input)
		assert.Contains(t, out.String(), "jdoe")
	}
}

func TestQueryOtpEnabled(t *testing.T) {
	profile := &Profile{Host: "localhost", Port: 3306, Database: "accounts", Table: "users"}

	found, enabled, err := queryOtpEnabled(&fakeTarget{stdout: "1\n"}, profile, "jdoe")
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, enabled)

	found, enabled, err = queryOtpEnabled(&fakeTarget{stdout: "0\n"}, profile, "jdoe")
	require.NoError(t, err)
	assert.True(t, found)
	assert.False(t, enabled)

	// an unknown user yields an empty result set, not an error
	found, _, err = queryOtpEnabled(&fakeTarget{stdout: ""}, profile, "ghost")
	require.NoError(t, err)
	assert.False(t, found)

	_, _, err = queryOtpEnabled(&fakeTarget{stderr: "ERROR 1045 (28000): Access denied", exitcode: 1}, profile, "jdoe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Access denied")
}

func TestResultReport(t *testing.T) {
	rpt := resultReport("jdoe", "yes", "reset")
	rows := rpt.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "jdoe", rows[0].Cells[0].Plain)
	assert.Equal(t, "yes", rows[0].Cells[1].Plain)
	assert.Equal(t, "reset", rows[0].Cells[2].Plain)

	rpt = resultReport("ghost", "N/A", "not found")
	rows = rpt.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "N/A", rows[0].Cells[1].Plain)
	assert.Equal(t, "not found", rows[0].Cells[2].Plain)
}
