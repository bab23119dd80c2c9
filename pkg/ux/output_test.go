// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"plain", ModePlain},
		{"MACHINE", ModePlain},
		{" q ", ModePlain},
		{"rich", ModeRich},
		{"", ModeRich},
		{"fancy", ModeRich},
	}
	for _, tt := range tests {
		if got := ParseMode(tt.in); got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDetectMode_EnvOverride(t *testing.T) {
	t.Setenv(EnvOutputMode, "plain")
	if got := DetectMode(nil); got != ModePlain {
		t.Errorf("DetectMode() = %v, want plain", got)
	}

	t.Setenv(EnvOutputMode, "rich")
	if got := DetectMode(nil); got != ModeRich {
		t.Errorf("DetectMode() = %v, want rich", got)
	}
}

func TestDetectMode_NoTerminal(t *testing.T) {
	t.Setenv(EnvOutputMode, "")
	if got := DetectMode(nil); got != ModePlain {
		t.Errorf("DetectMode(nil) = %v, want plain", got)
	}
}

func TestPrinter_PlainTable(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, ModePlain)

	p.Title("ignored")
	p.Muted("ignored too")
	p.Table([]string{"A", "B"}, [][]string{{"1", "2"}, {"3", "4"}})

	if got, want := buf.String(), "1\t2\n3\t4\n"; got != want {
		t.Errorf("plain table = %q, want %q", got, want)
	}
}

func TestPrinter_RichTable(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, ModeRich)
	p.Table([]string{"ENGINE", "STATUS"}, [][]string{{"eslint", "available"}})

	out := buf.String()
	for _, want := range []string{"ENGINE", "STATUS", "eslint", "available"} {
		if !strings.Contains(out, want) {
			t.Errorf("rich table missing %q:\n%s", want, out)
		}
	}
}

func TestPrinter_Status(t *testing.T) {
	tests := []struct {
		icon Icon
		want string
	}{
		{IconSuccess, "OK: done\n"},
		{IconWarning, "WARN: done\n"},
		{IconError, "ERROR: done\n"},
		{IconPending, "INFO: done\n"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		NewPrinter(&buf, ModePlain).Status(tt.icon, "done")
		if buf.String() != tt.want {
			t.Errorf("Status(%v) = %q, want %q", tt.icon, buf.String(), tt.want)
		}
	}

	var buf bytes.Buffer
	NewPrinter(&buf, ModeRich).Status(IconSuccess, "done")
	if !strings.Contains(buf.String(), "done") || !strings.Contains(buf.String(), string(IconSuccess)) {
		t.Errorf("rich status = %q", buf.String())
	}
}
