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
	"fmt"
)

const (
	// FixIssuesName is the registered name of the fix stub.
	FixIssuesName = "fix_issues"

	// GetFixSuggestionsName is the registered name of the suggestion stub.
	GetFixSuggestionsName = "get_fix_suggestions"
)

// fixedStatus is the fixed status string of every fix_issues response.
const fixedStatus = "Fixed issues successfully"

type fixIssuesArgs struct {
	Path     string   `json:"path" validate:"required"`
	IssueIDs []string `json:"issueIds" validate:"required"`
}

type fixIssuesPayload struct {
	FilePath    string   `json:"filePath"`
	FixedIssues int      `json:"fixedIssues"`
	IssueIDs    []string `json:"issueIds"`
	Status      string   `json:"status"`
}

// FixIssuesTool is a placeholder. It reports every requested issue as
// fixed and never touches the file.
type FixIssuesTool struct{}

// NewFixIssuesTool creates the fix_issues tool.
func NewFixIssuesTool() *FixIssuesTool { return &FixIssuesTool{} }

// Name implements Tool.
func (t *FixIssuesTool) Name() string { return FixIssuesName }

// Definition implements Tool.
func (t *FixIssuesTool) Definition() Definition {
	return Definition{
		Name:        FixIssuesName,
		Description: "Fix specific issues in a source file",
		InputSchema: Schema{
			Type: ParamTypeObject,
			Properties: map[string]ParamDef{
				"path": {
					Type:        ParamTypeString,
					Description: "Path to the file to fix",
				},
				"issueIds": {
					Type:        ParamTypeArray,
					Description: "IDs of the issues to fix",
					Items:       &ParamDef{Type: ParamTypeString},
				},
			},
			Required: []string{"path", "issueIds"},
		},
	}
}

// Execute implements Tool.
func (t *FixIssuesTool) Execute(_ context.Context, raw json.RawMessage) (*Result, error) {
	var args fixIssuesArgs
	if err := decodeArgs(raw, &args); err != nil {
		return errorResult(fmt.Sprintf("Error fixing issues: %v", err)), nil
	}
	return jsonResult(fixIssuesPayload{
		FilePath:    args.Path,
		FixedIssues: len(args.IssueIDs),
		IssueIDs:    args.IssueIDs,
		Status:      fixedStatus,
	})
}

type getFixSuggestionsArgs struct {
	Path    string `json:"path" validate:"required"`
	IssueID string `json:"issueId" validate:"required"`
}

// Suggestion is one proposed fix.
type Suggestion struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Code        string `json:"code"`
}

type suggestionsPayload struct {
	FilePath    string       `json:"filePath"`
	IssueID     string       `json:"issueId"`
	Suggestions []Suggestion `json:"suggestions"`
}

// placeholderSuggestion is returned for every request.
var placeholderSuggestion = Suggestion{
	ID:          "fix-1",
	Description: "Example fix suggestion",
	Code:        "// Fixed code would go here",
}

// GetFixSuggestionsTool is a placeholder returning one canned suggestion
// whatever the file or issue.
type GetFixSuggestionsTool struct{}

// NewGetFixSuggestionsTool creates the get_fix_suggestions tool.
func NewGetFixSuggestionsTool() *GetFixSuggestionsTool { return &GetFixSuggestionsTool{} }

// Name implements Tool.
func (t *GetFixSuggestionsTool) Name() string { return GetFixSuggestionsName }

// Definition implements Tool.
func (t *GetFixSuggestionsTool) Definition() Definition {
	return Definition{
		Name:        GetFixSuggestionsName,
		Description: "Get suggestions for fixing a specific issue",
		InputSchema: Schema{
			Type: ParamTypeObject,
			Properties: map[string]ParamDef{
				"path": {
					Type:        ParamTypeString,
					Description: "Path to the file containing the issue",
				},
				"issueId": {
					Type:        ParamTypeString,
					Description: "ID of the issue to get suggestions for",
				},
			},
			Required: []string{"path", "issueId"},
		},
	}
}

// Execute implements Tool.
func (t *GetFixSuggestionsTool) Execute(_ context.Context, raw json.RawMessage) (*Result, error) {
	var args getFixSuggestionsArgs
	if err := decodeArgs(raw, &args); err != nil {
		return errorResult(fmt.Sprintf("Error getting fix suggestions: %v", err)), nil
	}
	return jsonResult(suggestionsPayload{
		FilePath:    args.Path,
		IssueID:     args.IssueID,
		Suggestions: []Suggestion{placeholderSuggestion},
	})
}
