// Copyright (C) 2025 Hostreport Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package common provides flags, helpers, and data structures shared by
// the hostreport commands.
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"hostreport/internal/report"
	"hostreport/internal/util"

	"github.com/spf13/pflag"
	"golang.org/x/term"
)

// AppName is the name of the application.
const AppName = "hostreport"

// AppContext holds application-level state passed to the subcommands via
// the root command's context.
type AppContext struct {
	Version     string
	LogFilePath string
	Debug       bool
}

// shared flag names
const (
	FlagFormatName    = "output"
	FlagXlsxName      = "xlsx"
	FlagSeparatorName = "separator"
	FlagNoColorName   = "no-color"
)

// ReportingFlags holds the values of the output flags common to every
// report-producing command.
type ReportingFlags struct {
	Format    string
	XlsxPath  string
	Separator string
	NoColor   bool
}

// AddReportingFlags registers the shared output flags on the command's
// flag set.
func AddReportingFlags(flagSet *pflag.FlagSet, flags *ReportingFlags) {
	flagSet.StringVar(&flags.Format, FlagFormatName, report.FormatTable, fmt.Sprintf("report format, one of: %s", strings.Join(report.FormatOptions, ", ")))
	flagSet.StringVar(&flags.XlsxPath, FlagXlsxName, "", "additionally write the report to an XLSX file at the given path")
	flagSet.StringVarP(&flags.Separator, FlagSeparatorName, "s", "", "column separator glyph for table and CSV output, \"|\" when no glyph is given")
	// bare -s selects the default glyph, -s=GLYPH overrides it
	flagSet.Lookup(FlagSeparatorName).NoOptDefVal = "|"
	flagSet.BoolVar(&flags.NoColor, FlagNoColorName, false, "disable colorized table output")
}

// Validate confirms the flag values before any data collection begins. The
// XLSX path is resolved here so that a bad destination is reported up front
// rather than after collection.
func (flags *ReportingFlags) Validate() error {
	if !slices.Contains(report.FormatOptions, flags.Format) {
		return FlagValidationError{Flag: FlagFormatName, Msg: fmt.Sprintf("format must be one of: %s", strings.Join(report.FormatOptions, ", "))}
	}
	if flags.XlsxPath != "" {
		absPath, err := util.AbsPath(flags.XlsxPath)
		if err != nil {
			return FlagValidationError{Flag: FlagXlsxName, Msg: err.Error()}
		}
		exists, err := util.DirectoryExists(filepath.Dir(absPath))
		if err != nil {
			return FlagValidationError{Flag: FlagXlsxName, Msg: err.Error()}
		}
		if !exists {
			return FlagValidationError{Flag: FlagXlsxName, Msg: fmt.Sprintf("directory does not exist: %s", filepath.Dir(absPath))}
		}
		flags.XlsxPath = absPath
	}
	return nil
}

// Options translates the flags into renderer options. Color is enabled for
// table output on a terminal unless --no-color is given.
func (flags *ReportingFlags) Options() report.Options {
	return report.Options{
		Separator: flags.Separator,
		Color:     !flags.NoColor && term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// FlagValidationError reports an invalid flag value.
type FlagValidationError struct {
	Flag string
	Msg  string
}

func (e FlagValidationError) Error() string {
	return fmt.Sprintf("invalid value for --%s: %s", e.Flag, e.Msg)
}

// RenderAndWrite renders the report per the flags, writes it to standard
// output, and writes the XLSX workbook when requested.
func RenderAndWrite(rpt *report.Report, flags *ReportingFlags) error {
	out, err := report.Create(flags.Format, rpt, flags.Options())
	if err != nil {
		return err
	}
	if _, err := os.Stdout.Write(out); err != nil {
		return err
	}
	if flags.XlsxPath != "" {
		if err := report.WriteXlsx(rpt, flags.XlsxPath); err != nil {
			return fmt.Errorf("failed to write XLSX report: %w", err)
		}
	}
	return nil
}
