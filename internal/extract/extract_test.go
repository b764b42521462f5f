package extract

// Copyright (C) 2025 Hostreport Authors
// SPDX-License-Identifier: BSD-3-Clause

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseInt(t *testing.T) {
	tests := []struct {
		input    string
		fallback int64
		want     int64
	}{
		{"1024", 0, 1024},
		{"1,048,576", 0, 1048576},
		{" 42 ", 0, 42},
		{"-300", 0, -300},
		{"", 7, 7},
		{"N/A", 0, 0},
		{"12x", -1, -1},
	}
	for _, tt := range tests {
		got := ParseInt(tt.input, tt.fallback)
		if got != tt.want {
			t.Errorf("ParseInt(%q, %d) = %d, want %d", tt.input, tt.fallback, got, tt.want)
		}
	}
}

func TestIntFromLastToken(t *testing.T) {
	output := `Memory Size: 65536 MiB
Reserved: not reported
Swap Used   1,024`
	assert.Equal(t, int64(1024), IntFromLastToken(output, "Swap Used", 0))
	// "MiB" is the last token, not a number, so the fallback applies
	assert.Equal(t, int64(0), IntFromLastToken(output, "Memory Size", 0))
	assert.Equal(t, int64(-1), IntFromLastToken(output, "No Such Label", -1))
}

func TestIntAfterColon(t *testing.T) {
	output := `   Physical memory estimate:67108864 KB
   Discarded by Pshare:12,288 KB
   Free:1024 KB`
	assert.Equal(t, int64(67108864), IntAfterColon(output, "Physical memory estimate", 0))
	assert.Equal(t, int64(12288), IntAfterColon(output, "Discarded by Pshare", 0))
	assert.Equal(t, int64(0), IntAfterColon(output, "Missing Metric", 0))
}

func TestIntAfterEquals(t *testing.T) {
	output := `   memorySizeMB = 2048,
   balloonedMemory = 512,
   name = "vm01",`
	assert.Equal(t, int64(2048), IntAfterEquals(output, "memorySizeMB", 0))
	assert.Equal(t, int64(512), IntAfterEquals(output, "balloonedMemory", 0))
	// absent key yields the fallback, never an error
	assert.Equal(t, int64(0), IntAfterEquals(output, "swappedMemory", 0))
}

func TestStrAfterEquals(t *testing.T) {
	output := `   name = "vm01",
   guestFullName = "Ubuntu Linux (64-bit)",`
	assert.Equal(t, "vm01", StrAfterEquals(output, "name", ""))
	assert.Equal(t, "Ubuntu Linux (64-bit)", StrAfterEquals(output, "guestFullName", ""))
	assert.Equal(t, "unknown", StrAfterEquals(output, "hostName", "unknown"))
}

func TestValFromRegexSubmatch(t *testing.T) {
	output := ` Id   Name   State
 1    web1   running`
	assert.Equal(t, "web1", ValFromRegexSubmatch(output, `^1\s+(\S+)\s+running$`))
	assert.Equal(t, "", ValFromRegexSubmatch(output, `^9\s+(\S+)`))
}

func TestValsFromRegexSubmatch(t *testing.T) {
	output := `2: eth0: <BROADCAST,MULTICAST,UP> mtu 1500 master bond0 state UP
3: eth1: <BROADCAST,MULTICAST,UP> mtu 1500 master bond0 state UP
4: eth2: <BROADCAST,MULTICAST> mtu 1500 state DOWN`
	assert.Equal(t, []string{"bond0", "bond0"}, ValsFromRegexSubmatch(output, `\bmaster\s+(\S+)`))
	assert.Nil(t, ValsFromRegexSubmatch(output, `\bnomaster\s+(\S+)`))
}

func TestUnitConversionsTruncate(t *testing.T) {
	tests := []struct {
		mib  int64
		want int64
	}{
		{1535, 1}, // truncates, never rounds
		{1024, 1},
		{1023, 0},
		{512, 0},
		{3072, 3},
		{0, 0},
		{-1535, -1}, // negative values truncate toward zero
	}
	for _, tt := range tests {
		if got := MiBToGiB(tt.mib); got != tt.want {
			t.Errorf("MiBToGiB(%d) = %d, want %d", tt.mib, got, tt.want)
		}
	}
	assert.Equal(t, int64(1), KiBToMiB(1536))
	assert.Equal(t, int64(2), KiBToGiB(2*1024*1024+1023))
}
