// Copyright (C) 2025 Hostreport Authors
// SPDX-License-Identifier: BSD-3-Clause

package csr

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const configYaml = `out_dir: /tmp/csr
key_bits: 2048
country: DE
organization: Example Corp
hosts:
  - common_name: web01.example.com
    sans:
      - web01.example.com
      - www.example.com
      - 10.0.0.5
  - common_name: db01.example.com
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hosts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, configYaml))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/csr", cfg.OutDir)
	assert.Equal(t, 2048, cfg.KeyBits)
	require.Len(t, cfg.Hosts, 2)
	assert.Equal(t, "web01.example.com", cfg.Hosts[0].CommonName)
	assert.Len(t, cfg.Hosts[0].Sans, 3)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "hosts:\n  - common_name: a.example.com\n"))
	require.NoError(t, err)
	assert.Equal(t, defaultKeyBits, cfg.KeyBits)
	assert.Equal(t, ".", cfg.OutDir)
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no hosts", "out_dir: /tmp\n"},
		{"missing common_name", "hosts:\n  - sans: [a.example.com]\n"},
		{"unknown key", "hostnames:\n  - a.example.com\n"},
		{"bad out_dir", "out_dir: \"csr out\"\nhosts:\n  - common_name: a.example.com\n"},
		{"not yaml", "{{{{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSubject(t *testing.T) {
	cfg := &Config{Country: "DE", Organization: "Example Corp"}
	assert.Equal(t, "/C=DE/O=Example Corp/CN=web01.example.com", subject(cfg, "web01.example.com"))
	// unset components are skipped
	assert.Equal(t, "/CN=a", subject(&Config{}, "a"))
}

func TestSubjectAltName(t *testing.T) {
	sans := []string{"web01.example.com", "10.0.0.5", "fd00::1", "www.example.com"}
	assert.Equal(t, "DNS:web01.example.com,IP:10.0.0.5,IP:fd00::1,DNS:www.example.com", subjectAltName(sans))
}

func TestOpensslScript(t *testing.T) {
	cfg := &Config{KeyBits: 2048, Country: "DE"}
	host := HostConfig{CommonName: "web01.example.com", Sans: []string{"web01.example.com"}}
	def := opensslScript(cfg, host, "/tmp/csr/web01.example.com.key", "/tmp/csr/web01.example.com.csr")
	assert.Equal(t, "openssl", def.Command)
	assert.Contains(t, def.Args, "rsa:2048")
	assert.Contains(t, def.Args, "-addext")
	assert.Contains(t, def.Args, "subjectAltName=DNS:web01.example.com")
	assert.Contains(t, def.Args, "/C=DE/CN=web01.example.com")
}

func TestOpensslScriptNoSans(t *testing.T) {
	def := opensslScript(&Config{KeyBits: 4096}, HostConfig{CommonName: "a"}, "a.key", "a.csr")
	assert.NotContains(t, def.Args, "-addext")
}
