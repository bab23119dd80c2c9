// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/AleutianAI/code-analyzer-server/services/analyzer/lint"
)

// AnalyzeCodeName is the registered name of the analysis tool.
const AnalyzeCodeName = "analyze_code"

// Analyzer runs one analysis. *lint.Analyzer implements it.
type Analyzer interface {
	Analyze(ctx context.Context, req lint.Request) (*lint.Report, error)
}

type analyzeCodeArgs struct {
	Path     string `json:"path" validate:"required"`
	Language string `json:"language"`
	Fix      bool   `json:"fix"`
}

// AnalyzeCodeTool analyzes one file and returns its issues.
type AnalyzeCodeTool struct {
	analyzer Analyzer
}

// NewAnalyzeCodeTool creates the analyze_code tool.
func NewAnalyzeCodeTool(analyzer Analyzer) *AnalyzeCodeTool {
	return &AnalyzeCodeTool{analyzer: analyzer}
}

// Name implements Tool.
func (t *AnalyzeCodeTool) Name() string { return AnalyzeCodeName }

// Definition implements Tool.
func (t *AnalyzeCodeTool) Definition() Definition {
	languages := make([]string, 0, 6)
	for _, lang := range lint.SupportedLanguages() {
		languages = append(languages, lang.String())
	}
	languages = append(languages, lint.LanguageAuto.String())

	return Definition{
		Name:        AnalyzeCodeName,
		Description: "Analyze a source file for issues using ESLint, HTMLHint, Stylelint or Pyright",
		InputSchema: Schema{
			Type: ParamTypeObject,
			Properties: map[string]ParamDef{
				"path": {
					Type:        ParamTypeString,
					Description: "Path to the file to analyze",
				},
				"language": {
					Type:        ParamTypeString,
					Description: "Language of the file; auto detects it from the extension",
					Enum:        languages,
					Default:     lint.LanguageAuto.String(),
				},
				"fix": {
					Type:        ParamTypeBool,
					Description: "Apply automatic fixes where the engine supports them",
					Default:     false,
				},
			},
			Required: []string{"path"},
		},
	}
}

// Execute implements Tool.
//
// Description:
//
//	Engine faults are already folded into the report as a synthetic
//	issue. Bad arguments come back as an error-flagged result. An
//	unsupported language is returned as an error wrapping
//	lint.ErrUnsupportedLanguage, for the server to map to a protocol
//	error.
func (t *AnalyzeCodeTool) Execute(ctx context.Context, raw json.RawMessage) (*Result, error) {
	var args analyzeCodeArgs
	if err := decodeArgs(raw, &args); err != nil {
		return errorResult(fmt.Sprintf("Error analyzing code: %v", err)), nil
	}

	report, err := t.analyzer.Analyze(ctx, lint.Request{
		Path:     args.Path,
		Language: args.Language,
		Fix:      args.Fix,
	})
	if err != nil {
		if errors.Is(err, lint.ErrUnsupportedLanguage) {
			return nil, err
		}
		return errorResult(fmt.Sprintf("Error analyzing code: %v", err)), nil
	}
	return jsonResult(report)
}
