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
	"os"
)

// =============================================================================
// ESLINT WIRE FORMAT
// =============================================================================

// eslintOutput is the JSON printed by eslint --format json.
type eslintOutput []eslintFile

type eslintFile struct {
	FilePath string          `json:"filePath"`
	Messages []eslintMessage `json:"messages"`

	// Output is the fixed source. Present only when fixing changed something.
	Output *string `json:"output,omitempty"`
}

type eslintMessage struct {
	RuleID   string     `json:"ruleId"`
	Severity int        `json:"severity"` // 1 = warning, 2 = error
	Message  string     `json:"message"`
	Line     int        `json:"line"`
	Column   int        `json:"column"`
	Fatal    bool       `json:"fatal"`
	Fix      *eslintFix `json:"fix"`
}

type eslintFix struct {
	Range [2]int `json:"range"`
	Text  string `json:"text"`
}

// eslintBaseConfig is the fixed rule set: recommended rules with browser
// and node globals and modern syntax enabled.
var eslintBaseConfig = map[string]any{
	"root":    true,
	"extends": "eslint:recommended",
	"env": map[string]bool{
		"browser": true,
		"node":    true,
		"es2021":  true,
	},
	"parserOptions": map[string]any{
		"ecmaVersion": "latest",
		"sourceType":  "module",
	},
}

// eslintConfigError is the exit status ESLint uses for configuration
// problems and crashes.
const eslintConfigError = 2

// =============================================================================
// ESLINT ADAPTER
// =============================================================================

// ESLintAdapter analyzes JavaScript and TypeScript with ESLint.
//
// Thread Safety: Safe for concurrent use on different files.
type ESLintAdapter struct {
	registry *Registry
	runner   *Runner
}

// NewESLintAdapter creates the JavaScript/TypeScript adapter.
func NewESLintAdapter(registry *Registry, runner *Runner) *ESLintAdapter {
	return &ESLintAdapter{registry: registry, runner: runner}
}

// Engine implements Adapter.
func (a *ESLintAdapter) Engine() string { return EngineESLint }

// Languages implements Adapter.
func (a *ESLintAdapter) Languages() []Language {
	return []Language{LanguageJavaScript, LanguageTypeScript}
}

// Analyze runs ESLint on one file.
//
// Description:
//
//	Writes the fixed rule set to a temp config and runs ESLint with project
//	config lookup disabled. In fix mode a single --fix-dry-run pass yields
//	both the messages and the fixed source; the fixed source is written
//	back to the file before the issues are returned.
//
// Inputs:
//
//	ctx - Context for cancellation
//	target - File, resolved language, fix flag
//
// Outputs:
//
//	Outcome - Issues, or a fault when ESLint could not lint the file
func (a *ESLintAdapter) Analyze(ctx context.Context, target Target) Outcome {
	const display = "ESLint"
	lang := target.Language

	info, err := statFile(target.Path)
	if err != nil {
		return Failed(lang, NewEngineFault(display, lang, err))
	}

	cfg, fault := lookupEngine(a.registry, EngineESLint, display, lang)
	if fault != nil {
		return Failed(lang, fault)
	}

	configPath, err := writeTempJSON("eslintrc-*.json", eslintBaseConfig)
	if err != nil {
		return Failed(lang, NewEngineFault(display, lang, err))
	}
	defer os.Remove(configPath)

	args := []string{"--no-eslintrc", "--config", configPath, "--format", "json"}
	if target.Fix {
		args = append(args, "--fix-dry-run")
	}
	args = append(args, target.Path)

	result, err := a.runner.Run(ctx, cfg, args)
	if err != nil {
		return Failed(lang, NewEngineFault(display, lang, err).WithOutput(stderrText(result)))
	}
	if result.ExitCode == eslintConfigError || isBlank(result.Stdout) {
		return Failed(lang, NewEngineFault(display, lang,
			fmt.Errorf("%w: exit status %d", ErrEngineFailed, result.ExitCode)).WithOutput(stderrText(result)))
	}

	files, err := parseESLintOutput(result.Stdout)
	if err != nil {
		return Failed(lang, NewEngineFault(display, lang, err))
	}

	if target.Fix {
		for _, file := range files {
			if file.Output == nil {
				continue
			}
			if err := os.WriteFile(target.Path, []byte(*file.Output), info.Mode().Perm()); err != nil {
				return Failed(lang, NewEngineFault(display, lang, fmt.Errorf("writing fixes: %w", err)))
			}
		}
	}

	return Succeeded(lang, eslintIssues(files, lang, target.Path))
}

// parseESLintOutput decodes eslint --format json output.
func parseESLintOutput(data []byte) (eslintOutput, error) {
	var output eslintOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("%w: eslint: %v", ErrParseOutput, err)
	}
	return output, nil
}

// eslintIssues maps ESLint messages to issues.
//
// A message is fixable exactly when ESLint attached a fix to it. Fatal
// parse errors carry no rule and are reported as errors.
func eslintIssues(files eslintOutput, lang Language, filePath string) []Issue {
	issues := make([]Issue, 0)
	for _, file := range files {
		for _, msg := range file.Messages {
			issues = append(issues, Issue{
				ID:       issueID(lang, filePath, len(issues)),
				Line:     position(msg.Line),
				Column:   position(msg.Column),
				Severity: mapESLintSeverity(msg.Severity, msg.Fatal),
				Message:  msg.Message,
				RuleID:   ruleRef(msg.RuleID),
				Fixable:  msg.Fix != nil,
			})
		}
	}
	return issues
}

// mapESLintSeverity maps ESLint's numeric severity.
func mapESLintSeverity(severity int, fatal bool) Severity {
	if fatal || severity == 2 {
		return SeverityError
	}
	return SeverityWarning
}
