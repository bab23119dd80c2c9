// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ux renders CLI output: styled tables and status lines on a
// terminal, tab-separated plain text everywhere else.
package ux

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Mode controls how rich CLI output is.
type Mode string

const (
	// ModeRich enables colors, icons, and bordered tables.
	ModeRich Mode = "rich"

	// ModePlain outputs tab-separated text suitable for scripting.
	ModePlain Mode = "plain"
)

// EnvOutputMode overrides mode detection.
const EnvOutputMode = "CODE_ANALYZER_OUTPUT"

// ParseMode converts a string to a Mode. Unknown values are rich.
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "plain", "machine", "quiet", "q":
		return ModePlain
	default:
		return ModeRich
	}
}

// DetectMode picks the mode for f from the environment, then from
// whether f is a terminal.
func DetectMode(f *os.File) Mode {
	if env := os.Getenv(EnvOutputMode); env != "" {
		return ParseMode(env)
	}
	if f != nil && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return ModeRich
	}
	return ModePlain
}
