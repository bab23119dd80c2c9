// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package lint runs external static-analysis engines and normalizes their
// diagnostics into a single Issue shape.
//
// # Supported Engines
//
//	| Language   | Engine    | Output parsed          | Auto-fix        |
//	|------------|-----------|------------------------|-----------------|
//	| javascript | eslint    | --format json          | --fix-dry-run   |
//	| typescript | eslint    | --format json          | --fix-dry-run   |
//	| html       | htmlhint  | --format json          | none            |
//	| css        | stylelint | --formatter json       | --fix           |
//	| python     | pyright   | text, one line a diag. | none            |
//
// # Language Detection
//
// An explicit language hint wins when it names a supported language.
// Otherwise the file extension decides:
//
//	.js -> javascript   .ts .tsx -> typescript   .html .htm -> html
//	.css -> css         .py -> python            other -> unknown
//
// # Engine Faults
//
// An adapter never returns an error for a failed engine run. Bad input
// files, missing binaries, timeouts and unparsable engine output become an
// Outcome carrying an *EngineFault, which Outcome.Issues turns into exactly
// one synthetic error issue with the id "{language}-error".
//
// # Usage
//
//	registry := lint.NewRegistry()
//	analyzer := lint.NewAnalyzer(registry)
//
//	report, err := analyzer.Analyze(ctx, lint.Request{Path: "app.js"})
//	if errors.Is(err, lint.ErrUnsupportedLanguage) {
//	    // no engine for this file
//	}
//	for _, issue := range report.Issues {
//	    fmt.Println(issue.ID, issue.Severity, issue.Message)
//	}
//
// # Thread Safety
//
// Registry and Analyzer are safe for concurrent use. Running two fix passes
// on the same file at once is not.
package lint
