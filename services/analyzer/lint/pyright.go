// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package lint

import (
	"bufio"
	"bytes"
	"context"
	"regexp"
	"strconv"
)

// pyrightLine matches one diagnostic in Pyright's plain text output:
//
//	/path/to/file.py:12:5 - error: "foo" is not defined
//
// Summary lines, blank lines, and "information" diagnostics do not match.
var pyrightLine = regexp.MustCompile(`^\s*(.+?):(\d+):(\d+) - (error|warning): (.+)$`)

// PyrightAdapter analyzes Python with Pyright.
//
// Pyright has no JSON mode that is stable across its CLI wrappers, so the
// text report is scraped line by line. Its exit status only says whether
// errors were found and is ignored. Pyright reports no rule identifiers
// and cannot fix, so ruleId is always null and fixable always false.
//
// Thread Safety: Safe for concurrent use.
type PyrightAdapter struct {
	registry *Registry
	runner   *Runner
}

// NewPyrightAdapter creates the Python adapter.
func NewPyrightAdapter(registry *Registry, runner *Runner) *PyrightAdapter {
	return &PyrightAdapter{registry: registry, runner: runner}
}

// Engine implements Adapter.
func (a *PyrightAdapter) Engine() string { return EnginePyright }

// Languages implements Adapter.
func (a *PyrightAdapter) Languages() []Language {
	return []Language{LanguagePython}
}

// Analyze runs Pyright on one file. The fix flag is ignored.
func (a *PyrightAdapter) Analyze(ctx context.Context, target Target) Outcome {
	const display = "Pyright"
	lang := target.Language

	if _, err := statFile(target.Path); err != nil {
		return Failed(lang, NewEngineFault(display, lang, err))
	}

	cfg, fault := lookupEngine(a.registry, EnginePyright, display, lang)
	if fault != nil {
		return Failed(lang, fault)
	}

	result, err := a.runner.Run(ctx, cfg, []string{target.Path})
	if err != nil {
		return Failed(lang, NewEngineFault(display, lang, err).WithOutput(stderrText(result)))
	}
	return Succeeded(lang, parsePyrightOutput(result.Stdout, lang, target.Path))
}

// parsePyrightOutput scrapes diagnostics from Pyright's text report.
// Lines that are not diagnostics are skipped.
func parsePyrightOutput(data []byte, lang Language, filePath string) []Issue {
	issues := make([]Issue, 0)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		m := pyrightLine.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		line, _ := strconv.Atoi(m[2])
		col, _ := strconv.Atoi(m[3])
		issues = append(issues, Issue{
			ID:       issueID(lang, filePath, len(issues)),
			Line:     position(line),
			Column:   position(col),
			Severity: SeverityFromString(m[4]),
			Message:  m[5],
			RuleID:   nil,
			Fixable:  false,
		})
	}
	return issues
}
