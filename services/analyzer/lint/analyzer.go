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
	"fmt"
	"log/slog"
	"time"
)

// =============================================================================
// ADAPTER
// =============================================================================

// Adapter runs one engine and maps its native diagnostics to Issues.
//
// Implementations must not return engine failures as panics or errors;
// they report them through Failed.
type Adapter interface {
	// Engine returns the registry key of the engine this adapter drives.
	Engine() string

	// Languages returns the language tags this adapter handles.
	Languages() []Language

	// Analyze checks one file.
	Analyze(ctx context.Context, target Target) Outcome
}

// =============================================================================
// ANALYZER
// =============================================================================

// Analyzer resolves a request's language and dispatches to its adapter.
//
// Thread Safety: Safe for concurrent use.
type Analyzer struct {
	adapters map[Language]Adapter
}

// AnalyzerOption configures the Analyzer.
type AnalyzerOption func(*Analyzer)

// WithAdapter registers an adapter for each of its languages, replacing
// any adapter already registered for them.
func WithAdapter(adapter Adapter) AnalyzerOption {
	return func(a *Analyzer) {
		for _, lang := range adapter.Languages() {
			a.adapters[lang] = adapter
		}
	}
}

// NewAnalyzer creates an analyzer wired to the four built-in adapters.
//
// Inputs:
//
//	registry - Engine launch settings shared by all adapters
//	opts - Optional overrides
//
// Outputs:
//
//	*Analyzer - The configured analyzer
func NewAnalyzer(registry *Registry, opts ...AnalyzerOption) *Analyzer {
	runner := NewRunner()
	a := &Analyzer{adapters: make(map[Language]Adapter)}

	defaults := []Adapter{
		NewESLintAdapter(registry, runner),
		NewHTMLHintAdapter(registry, runner),
		NewStylelintAdapter(registry, runner),
		NewPyrightAdapter(registry, runner),
	}
	for _, adapter := range defaults {
		WithAdapter(adapter)(a)
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Adapter returns the adapter for a language, or nil.
func (a *Analyzer) Adapter(language Language) Adapter {
	return a.adapters[language]
}

// Analyze checks one file.
//
// Description:
//
//	Resolves the language from the hint and path, runs the matching
//	adapter, and normalizes its outcome. An engine fault is folded into
//	the report as a single synthetic issue; only an unsupported language
//	or invalid input is returned as an error.
//
// Inputs:
//
//	ctx - Context for cancellation
//	req - The file, optional language hint, and fix flag
//
// Outputs:
//
//	*Report - The normalized issues
//	error - Non-nil for invalid input or an unsupported language
//
// Errors:
//
//	ErrInvalidInput - nil ctx or empty path
//	ErrUnsupportedLanguage - No adapter for the resolved language
//
// Thread Safety: Safe for concurrent use.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Report, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: ctx must not be nil", ErrInvalidInput)
	}
	if req.Path == "" {
		return nil, fmt.Errorf("%w: path must not be empty", ErrInvalidInput)
	}

	language := ResolveLanguage(req.Path, req.Language)
	adapter, ok := a.adapters[language]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, language)
	}

	ctx, span := startAnalyzeSpan(ctx, language, adapter.Engine(), req.Path)
	defer span.End()
	start := time.Now()

	outcome := adapter.Analyze(ctx, Target{
		Path:     req.Path,
		Language: language,
		Fix:      req.Fix,
	})
	issues := outcome.Issues()

	report := &Report{
		FilePath:    req.Path,
		Language:    language,
		IssuesCount: len(issues),
		Issues:      issues,
	}

	faulted := outcome.Fault() != nil
	setAnalyzeSpanResult(span, report, outcome.Fault())
	recordAnalysisMetrics(ctx, language, adapter.Engine(), time.Since(start), report, faulted)

	if faulted {
		slog.Warn("Engine fault",
			slog.String("file", req.Path),
			slog.String("engine", adapter.Engine()),
			slog.String("error", outcome.Fault().Error()),
		)
	} else {
		slog.Debug("Analysis completed",
			slog.String("file", req.Path),
			slog.String("language", language.String()),
			slog.Int("issues", report.IssuesCount),
			slog.Duration("duration", time.Since(start)),
		)
	}

	return report, nil
}
