// Copyright (C) 2025 Hostreport Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package extract provides helper functions for extracting typed values from
// the text output of external host-management tools.
package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// ValFromRegexSubmatch searches for a regex pattern in the given output string and returns the first captured group.
// If no match is found, an empty string is returned.
func ValFromRegexSubmatch(output string, regex string) string {
	re := regexp.MustCompile(regex)
	for _, line := range strings.Split(output, "\n") {
		match := re.FindStringSubmatch(strings.TrimSpace(line))
		if len(match) > 1 {
			return match[1]
		}
	}
	return ""
}

// ValsFromRegexSubmatch extracts the captured groups from each line in the output
// that matches the given regular expression.
// It returns a slice of strings containing the captured values.
func ValsFromRegexSubmatch(output string, regex string) []string {
	var vals []string
	re := regexp.MustCompile(regex)
	for _, line := range strings.Split(output, "\n") {
		match := re.FindStringSubmatch(strings.TrimSpace(line))
		if len(match) > 1 {
			vals = append(vals, match[1])
		}
	}
	return vals
}

// ValsArrayFromRegexSubmatch returns all matches for all capture groups in regex
func ValsArrayFromRegexSubmatch(output string, regex string) (vals [][]string) {
	re := regexp.MustCompile(regex)
	for _, line := range strings.Split(output, "\n") {
		match := re.FindStringSubmatch(line)
		if len(match) > 1 {
			vals = append(vals, match[1:])
		}
	}
	return
}

// StripCommas removes thousands-separator commas from a numeric token.
func StripCommas(s string) string {
	return strings.ReplaceAll(s, ",", "")
}

// ParseInt parses s as a base-10 integer after stripping thousands separators
// and surrounding whitespace. Returns fallback if s is not a valid integer.
// Absence of a metric is an expected condition, not an error.
func ParseInt(s string, fallback int64) int64 {
	v, err := strconv.ParseInt(StripCommas(strings.TrimSpace(s)), 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

// LastToken returns the last whitespace-delimited token of the first line that
// contains label. Returns fallback when no line matches or the matching line
// has no token after trimming.
func LastToken(output string, label string, fallback string) string {
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, label) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			return fallback
		}
		return fields[len(fields)-1]
	}
	return fallback
}

// IntFromLastToken extracts the last whitespace-delimited token of the first
// line containing label and parses it as an integer. Returns fallback when the
// label is absent or the token is not a valid integer.
func IntFromLastToken(output string, label string, fallback int64) int64 {
	token := LastToken(output, label, "")
	if token == "" {
		return fallback
	}
	return ParseInt(token, fallback)
}

// ValAfterColon returns the value following the first "label:" occurrence on
// any line, trimmed of whitespace. Returns fallback if the label is absent.
func ValAfterColon(output string, label string, fallback string) string {
	for _, line := range strings.Split(output, "\n") {
		idx := strings.Index(line, label+":")
		if idx < 0 {
			continue
		}
		return strings.TrimSpace(line[idx+len(label)+1:])
	}
	return fallback
}

// IntAfterColon extracts the numeric token that follows "label:" on the first
// matching line. Trailing unit suffixes (e.g. "KB") are ignored. Returns
// fallback when the label is absent or the token is not a valid integer.
func IntAfterColon(output string, label string, fallback int64) int64 {
	val := ValAfterColon(output, label, "")
	if val == "" {
		return fallback
	}
	fields := strings.Fields(val)
	if len(fields) == 0 {
		return fallback
	}
	return ParseInt(fields[0], fallback)
}

// IntAfterEquals extracts the value of a "key = value," assignment as emitted
// by vim-cmd's object dumps. Returns fallback when the key is absent or the
// value is not a valid integer.
func IntAfterEquals(output string, key string, fallback int64) int64 {
	re := regexp.MustCompile(`^` + regexp.QuoteMeta(key) + `\s*=\s*([0-9,-]+)`)
	for _, line := range strings.Split(output, "\n") {
		match := re.FindStringSubmatch(strings.TrimSpace(line))
		if len(match) > 1 {
			return ParseInt(match[1], fallback)
		}
	}
	return fallback
}

// StrAfterEquals extracts the quoted string value of a `key = "value",`
// assignment as emitted by vim-cmd's object dumps. Returns fallback when the
// key is absent.
func StrAfterEquals(output string, key string, fallback string) string {
	re := regexp.MustCompile(`^` + regexp.QuoteMeta(key) + `\s*=\s*"(.*)"`)
	for _, line := range strings.Split(output, "\n") {
		match := re.FindStringSubmatch(strings.TrimSpace(line))
		if len(match) > 1 {
			return match[1]
		}
	}
	return fallback
}

// Unit conversions between memory units. All conversions truncate toward
// zero, e.g. 1535 MiB is 1 GB. Callers must not round.

// MiBToGiB converts mebibytes to gibibytes, truncating toward zero.
func MiBToGiB(mib int64) int64 {
	return mib / 1024
}

// KiBToMiB converts kibibytes to mebibytes, truncating toward zero.
func KiBToMiB(kib int64) int64 {
	return kib / 1024
}

// KiBToGiB converts kibibytes to gibibytes, truncating toward zero.
func KiBToGiB(kib int64) int64 {
	return kib / (1024 * 1024)
}
