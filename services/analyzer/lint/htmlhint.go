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
// HTMLHINT WIRE FORMAT
// =============================================================================

// htmlhintOutput is the JSON printed by htmlhint --format json.
// Files without messages are omitted by the formatter.
type htmlhintOutput []htmlhintFile

type htmlhintFile struct {
	File     string            `json:"file"`
	Messages []htmlhintMessage `json:"messages"`
}

type htmlhintMessage struct {
	Type    string       `json:"type"`
	Message string       `json:"message"`
	Line    int          `json:"line"`
	Col     int          `json:"col"`
	Rule    htmlhintRule `json:"rule"`
}

type htmlhintRule struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// htmlhintRules is the fixed rule configuration.
var htmlhintRules = map[string]bool{
	"tagname-lowercase":        true,
	"attr-lowercase":           true,
	"attr-value-double-quotes": true,
	"doctype-first":            true,
	"tag-pair":                 true,
	"spec-char-escape":         true,
	"id-unique":                true,
	"src-not-empty":            true,
	"attr-no-duplication":      true,
	"title-require":            true,
}

// =============================================================================
// HTMLHINT ADAPTER
// =============================================================================

// HTMLHintAdapter analyzes HTML with HTMLHint. HTMLHint cannot fix, so
// every issue is reported as not fixable and the fix flag is ignored.
//
// Thread Safety: Safe for concurrent use.
type HTMLHintAdapter struct {
	registry *Registry
	runner   *Runner
}

// NewHTMLHintAdapter creates the HTML adapter.
func NewHTMLHintAdapter(registry *Registry, runner *Runner) *HTMLHintAdapter {
	return &HTMLHintAdapter{registry: registry, runner: runner}
}

// Engine implements Adapter.
func (a *HTMLHintAdapter) Engine() string { return EngineHTMLHint }

// Languages implements Adapter.
func (a *HTMLHintAdapter) Languages() []Language {
	return []Language{LanguageHTML}
}

// Analyze runs HTMLHint on one file with the fixed rule set.
func (a *HTMLHintAdapter) Analyze(ctx context.Context, target Target) Outcome {
	const display = "HTMLHint"
	lang := target.Language

	if _, err := os.ReadFile(target.Path); err != nil {
		return Failed(lang, NewEngineFault(display, lang, fmt.Errorf("%w: %v", ErrFileNotFound, err)))
	}

	cfg, fault := lookupEngine(a.registry, EngineHTMLHint, display, lang)
	if fault != nil {
		return Failed(lang, fault)
	}

	configPath, err := writeTempJSON("htmlhintrc-*.json", htmlhintRules)
	if err != nil {
		return Failed(lang, NewEngineFault(display, lang, err))
	}
	defer os.Remove(configPath)

	result, err := a.runner.Run(ctx, cfg, []string{"--config", configPath, "--format", "json", target.Path})
	if err != nil {
		return Failed(lang, NewEngineFault(display, lang, err).WithOutput(stderrText(result)))
	}
	if isBlank(result.Stdout) {
		if result.ExitCode == 0 {
			return Succeeded(lang, nil)
		}
		return Failed(lang, NewEngineFault(display, lang,
			fmt.Errorf("%w: exit status %d", ErrEngineFailed, result.ExitCode)).WithOutput(stderrText(result)))
	}

	files, err := parseHTMLHintOutput(result.Stdout)
	if err != nil {
		return Failed(lang, NewEngineFault(display, lang, err))
	}
	return Succeeded(lang, htmlhintIssues(files, lang, target.Path))
}

// parseHTMLHintOutput decodes htmlhint --format json output.
func parseHTMLHintOutput(data []byte) (htmlhintOutput, error) {
	var output htmlhintOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("%w: htmlhint: %v", ErrParseOutput, err)
	}
	return output, nil
}

// htmlhintIssues maps HTMLHint messages to issues.
func htmlhintIssues(files htmlhintOutput, lang Language, filePath string) []Issue {
	issues := make([]Issue, 0)
	for _, file := range files {
		for _, msg := range file.Messages {
			issues = append(issues, Issue{
				ID:       issueID(lang, filePath, len(issues)),
				Line:     position(msg.Line),
				Column:   position(msg.Col),
				Severity: SeverityFromString(msg.Type),
				Message:  msg.Message,
				RuleID:   ruleRef(msg.Rule.ID),
				Fixable:  false,
			})
		}
	}
	return issues
}
