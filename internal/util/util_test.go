package util

// Copyright (C) 2025 Hostreport Authors
// SPDX-License-Identifier: BSD-3-Clause

import (
	"os"
	"path/filepath"
	"testing"
)

func TestUniqueAppend(t *testing.T) {
	s := []string{"a", "b"}
	s = UniqueAppend(s, "b")
	if len(s) != 2 {
		t.Errorf("expected 2 items, got %d", len(s))
	}
	s = UniqueAppend(s, "c")
	if len(s) != 3 || s[2] != "c" {
		t.Errorf("expected c appended, got %v", s)
	}
}

func TestIsValidDirectoryName(t *testing.T) {
	valid := []string{"/tmp/output", "reports_2025", "a-b.c"}
	for _, name := range valid {
		if !IsValidDirectoryName(name) {
			t.Errorf("expected %s to be valid", name)
		}
	}
	invalid := []string{"", "out put", "a;b", "a|b"}
	for _, name := range invalid {
		if IsValidDirectoryName(name) {
			t.Errorf("expected %s to be invalid", name)
		}
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	exists, err := FileExists(path)
	if err != nil || exists {
		t.Errorf("expected no file, got exists=%v err=%v", exists, err)
	}
	if err := os.WriteFile(path, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	exists, err = FileExists(path)
	if err != nil || !exists {
		t.Errorf("expected file, got exists=%v err=%v", exists, err)
	}
	// a directory is not a file
	_, err = FileExists(dir)
	if err == nil {
		t.Error("expected error for directory")
	}
}
