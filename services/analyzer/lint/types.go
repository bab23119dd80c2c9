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
	"fmt"
	"strings"
)

// =============================================================================
// SEVERITY
// =============================================================================

// Severity is the normalized severity of an issue.
type Severity string

const (
	// SeverityError marks an issue the engine reports as an error.
	SeverityError Severity = "error"

	// SeverityWarning marks everything below error.
	SeverityWarning Severity = "warning"
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	return string(s)
}

// SeverityFromString normalizes an engine-native severity string.
//
// Description:
//
//	Engines use different spellings ("Error", "warning", "info").
//	The value is lower-cased; only "error" maps to SeverityError and
//	everything else becomes SeverityWarning.
//
// Inputs:
//
//	s - Engine severity string
//
// Outputs:
//
//	Severity - The normalized severity
func SeverityFromString(s string) Severity {
	if strings.ToLower(strings.TrimSpace(s)) == "error" {
		return SeverityError
	}
	return SeverityWarning
}

// =============================================================================
// ISSUE
// =============================================================================

// Issue is a single normalized diagnostic.
//
// Line, Column and RuleID are pointers so that a missing value serializes
// as JSON null rather than a zero.
//
// Thread Safety: Immutable after creation.
type Issue struct {
	// ID is "{language}-{filePath}-{ordinal}", or "{language}-error" for a fault.
	ID string `json:"id"`

	// Line is the 1-based line, nil when the engine gave none.
	Line *int `json:"line"`

	// Column is the 1-based column, nil when the engine gave none.
	Column *int `json:"column"`

	// Severity is "error" or "warning".
	Severity Severity `json:"severity"`

	// Message is the engine's text, verbatim.
	Message string `json:"message"`

	// RuleID is the engine rule identifier, nil when the engine gave none.
	RuleID *string `json:"ruleId"`

	// Fixable reports whether the engine attached a fix to the diagnostic.
	Fixable bool `json:"fixable"`
}

// Location returns "line:col", or "-" when the issue has no position.
func (i *Issue) Location() string {
	if i.Line == nil {
		return "-"
	}
	if i.Column == nil {
		return fmt.Sprintf("%d", *i.Line)
	}
	return fmt.Sprintf("%d:%d", *i.Line, *i.Column)
}

// Rule returns the rule identifier or an empty string.
func (i *Issue) Rule() string {
	if i.RuleID == nil {
		return ""
	}
	return *i.RuleID
}

// issueID builds the per-invocation issue identifier.
func issueID(language Language, filePath string, ordinal int) string {
	return fmt.Sprintf("%s-%s-%d", language, filePath, ordinal)
}

// position returns a pointer for a 1-based position, or nil for 0 or less.
func position(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}

// ruleRef returns a pointer to a rule id, or nil for an empty one.
func ruleRef(rule string) *string {
	if rule == "" {
		return nil
	}
	return &rule
}

// =============================================================================
// OUTCOME
// =============================================================================

// Outcome is what an adapter produces: a list of issues or one fault.
//
// Thread Safety: Immutable after creation.
type Outcome struct {
	language Language
	issues   []Issue
	fault    *EngineFault
}

// Succeeded builds an outcome holding the engine's issues.
func Succeeded(language Language, issues []Issue) Outcome {
	if issues == nil {
		issues = make([]Issue, 0)
	}
	return Outcome{language: language, issues: issues}
}

// Failed builds an outcome holding a single engine fault.
func Failed(language Language, fault *EngineFault) Outcome {
	return Outcome{language: language, fault: fault}
}

// Fault returns the engine fault, or nil when the engine ran.
func (o Outcome) Fault() *EngineFault {
	return o.fault
}

// Issues normalizes the outcome to a list.
//
// Description:
//
//	A successful outcome returns its issues. A fault becomes exactly one
//	synthetic issue: id "{language}-error", no position, severity error,
//	no rule, not fixable.
//
// Outputs:
//
//	[]Issue - Never nil
func (o Outcome) Issues() []Issue {
	if o.fault == nil {
		if o.issues == nil {
			return make([]Issue, 0)
		}
		return o.issues
	}
	return []Issue{{
		ID:       fmt.Sprintf("%s-error", o.language),
		Severity: SeverityError,
		Message:  o.fault.Message(),
		Fixable:  false,
	}}
}

// =============================================================================
// REQUEST / REPORT
// =============================================================================

// Request asks the Analyzer to check one file.
type Request struct {
	// Path is the file to analyze, as given by the caller.
	Path string

	// Language is an optional hint; "" and "auto" mean detect.
	Language string

	// Fix asks engines that support it to write fixes back to the file.
	Fix bool
}

// Target is what an adapter receives once the language is resolved.
type Target struct {
	// Path is the file to analyze, as given by the caller.
	Path string

	// Language is the resolved language tag.
	Language Language

	// Fix requests write-back of engine fixes.
	Fix bool
}

// Report is the result of one analysis call.
//
// Thread Safety: Immutable after creation by the Analyzer.
type Report struct {
	FilePath    string   `json:"filePath"`
	Language    Language `json:"language"`
	IssuesCount int      `json:"issuesCount"`
	Issues      []Issue  `json:"issues"`
}

// ErrorCount returns the number of error-severity issues.
func (r *Report) ErrorCount() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			n++
		}
	}
	return n
}

// FixableCount returns the number of fixable issues.
func (r *Report) FixableCount() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Fixable {
			n++
		}
	}
	return n
}
