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
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// =============================================================================
// STYLELINT WIRE FORMAT
// =============================================================================

// stylelintOutput is the report printed by stylelint --formatter json,
// one entry per analyzed source.
type stylelintOutput []stylelintResult

type stylelintResult struct {
	Source                string                   `json:"source"`
	Errored               bool                     `json:"errored"`
	Warnings              []stylelintWarning       `json:"warnings"`
	InvalidOptionWarnings []stylelintOptionWarning `json:"invalidOptionWarnings"`
}

type stylelintWarning struct {
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Text     string `json:"text"`
}

type stylelintOptionWarning struct {
	Text string `json:"text"`
}

// =============================================================================
// STYLELINT ADAPTER
// =============================================================================

// StylelintAdapter analyzes CSS with Stylelint.
//
// No rules are configured here; Stylelint resolves its own configuration.
// Issues are always reported as not fixable, also in fix mode.
//
// Thread Safety: Safe for concurrent use on different files.
type StylelintAdapter struct {
	registry *Registry
	runner   *Runner
}

// NewStylelintAdapter creates the CSS adapter.
func NewStylelintAdapter(registry *Registry, runner *Runner) *StylelintAdapter {
	return &StylelintAdapter{registry: registry, runner: runner}
}

// Engine implements Adapter.
func (a *StylelintAdapter) Engine() string { return EngineStylelint }

// Languages implements Adapter.
func (a *StylelintAdapter) Languages() []Language {
	return []Language{LanguageCSS}
}

// Analyze runs Stylelint on one file, with --fix when requested.
func (a *StylelintAdapter) Analyze(ctx context.Context, target Target) Outcome {
	const display = "Stylelint"
	lang := target.Language

	if _, err := statFile(target.Path); err != nil {
		return Failed(lang, NewEngineFault(display, lang, err))
	}

	cfg, fault := lookupEngine(a.registry, EngineStylelint, display, lang)
	if fault != nil {
		return Failed(lang, fault)
	}

	args := []string{"--formatter", "json"}
	if target.Fix {
		args = append(args, "--fix")
	}
	args = append(args, target.Path)

	result, err := a.runner.Run(ctx, cfg, args)
	if err != nil {
		return Failed(lang, NewEngineFault(display, lang, err).WithOutput(stderrText(result)))
	}

	report, err := parseStylelintReport(result)
	if err != nil {
		return Failed(lang, NewEngineFault(display, lang, err).WithOutput(stderrText(result)))
	}
	for _, source := range report {
		for _, w := range source.InvalidOptionWarnings {
			slog.Warn("Stylelint invalid option", slog.String("text", w.Text))
		}
	}
	return Succeeded(lang, stylelintIssues(report, lang, target.Path))
}

// parseStylelintReport decodes the serialized report.
//
// Description:
//
//	Depending on version, Stylelint prints the json formatter output on
//	stdout or stderr. Stdout is tried first. Configuration errors print
//	plain text instead, which surfaces as ErrParseOutput.
func parseStylelintReport(result *ExecResult) (stylelintOutput, error) {
	var lastErr error
	for _, stream := range [][]byte{result.Stdout, result.Stderr} {
		if isBlank(stream) {
			continue
		}
		var output stylelintOutput
		if err := json.Unmarshal(stream, &output); err != nil {
			lastErr = err
			continue
		}
		return output, nil
	}
	if lastErr == nil {
		return nil, fmt.Errorf("%w: stylelint: no report (exit status %d)", ErrEngineFailed, result.ExitCode)
	}
	return nil, fmt.Errorf("%w: stylelint: %v", ErrParseOutput, lastErr)
}

// stylelintIssues maps Stylelint warnings to issues.
func stylelintIssues(report stylelintOutput, lang Language, filePath string) []Issue {
	issues := make([]Issue, 0)
	for _, source := range report {
		for _, w := range source.Warnings {
			issues = append(issues, Issue{
				ID:       issueID(lang, filePath, len(issues)),
				Line:     position(w.Line),
				Column:   position(w.Column),
				Severity: SeverityFromString(w.Severity),
				Message:  w.Text,
				RuleID:   ruleRef(w.Rule),
				Fixable:  false,
			})
		}
	}
	return issues
}
