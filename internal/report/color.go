// Copyright (C) 2025 Hostreport Authors
// SPDX-License-Identifier: BSD-3-Clause

package report

import (
	"github.com/muesli/termenv"
)

var colorProfile = termenv.ANSI

// ColorGreen returns s wrapped in green ANSI escapes.
func ColorGreen(s string) string {
	return termenv.String(s).Foreground(colorProfile.Color("2")).String()
}

// ColorRed returns s wrapped in red ANSI escapes.
func ColorRed(s string) string {
	return termenv.String(s).Foreground(colorProfile.Color("1")).String()
}

// ColorYellow returns s wrapped in yellow ANSI escapes.
func ColorYellow(s string) string {
	return termenv.String(s).Foreground(colorProfile.Color("3")).String()
}

// ColorCyan returns s wrapped in cyan ANSI escapes.
func ColorCyan(s string) string {
	return termenv.String(s).Foreground(colorProfile.Color("6")).String()
}
