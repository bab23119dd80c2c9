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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/code-analyzer-server/services/analyzer/lint"
)

type fakeAnalyzer struct {
	req    lint.Request
	report *lint.Report
	err    error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, req lint.Request) (*lint.Report, error) {
	f.req = req
	return f.report, f.err
}

func TestRegistry_Definitions(t *testing.T) {
	r := NewDefaultRegistry(&fakeAnalyzer{})
	defs := r.Definitions()
	require.Len(t, defs, 3)

	names := []string{defs[0].Name, defs[1].Name, defs[2].Name}
	assert.Equal(t, []string{AnalyzeCodeName, FixIssuesName, GetFixSuggestionsName}, names)

	analyze := defs[0].InputSchema
	assert.Equal(t, ParamTypeObject, analyze.Type)
	assert.Equal(t, []string{"path"}, analyze.Required)
	assert.Equal(t, []string{"javascript", "typescript", "html", "css", "python", "auto"}, analyze.Properties["language"].Enum)
	assert.Equal(t, "auto", analyze.Properties["language"].Default)
	assert.Equal(t, false, analyze.Properties["fix"].Default)

	assert.Equal(t, []string{"path", "issueIds"}, defs[1].InputSchema.Required)
	assert.Equal(t, ParamTypeString, defs[1].InputSchema.Properties["issueIds"].Items.Type)
	assert.Equal(t, []string{"path", "issueId"}, defs[2].InputSchema.Required)
}

func TestRegistry_DefinitionJSON(t *testing.T) {
	def := NewGetFixSuggestionsTool().Definition()
	data, err := json.Marshal(def)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "get_fix_suggestions",
		"description": "Get suggestions for fixing a specific issue",
		"inputSchema": {
			"type": "object",
			"properties": {
				"path": {"type": "string", "description": "Path to the file containing the issue"},
				"issueId": {"type": "string", "description": "ID of the issue to get suggestions for"}
			},
			"required": ["path", "issueId"]
		}
	}`, string(data))
}

func TestRegistry_UnknownTool(t *testing.T) {
	_, err := NewDefaultRegistry(&fakeAnalyzer{}).Call(context.Background(), "delete_everything", nil)
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestAnalyzeCode(t *testing.T) {
	t.Run("payload is indented report", func(t *testing.T) {
		line := 1
		rule := "no-unused-vars"
		fake := &fakeAnalyzer{report: &lint.Report{
			FilePath:    "app.js",
			Language:    lint.LanguageJavaScript,
			IssuesCount: 1,
			Issues: []lint.Issue{{
				ID: "javascript-app.js-0", Line: &line, Column: &line,
				Severity: lint.SeverityError, Message: "unused", RuleID: &rule,
			}},
		}}
		r := NewDefaultRegistry(fake)

		result, err := r.Call(context.Background(), AnalyzeCodeName, json.RawMessage(`{"path":"app.js","language":"auto","fix":true}`))
		require.NoError(t, err)
		assert.False(t, result.IsError)
		assert.Equal(t, lint.Request{Path: "app.js", Language: "auto", Fix: true}, fake.req)

		assert.Contains(t, result.Text, "\n  \"filePath\": \"app.js\"")
		var payload map[string]any
		require.NoError(t, json.Unmarshal([]byte(result.Text), &payload))
		assert.Equal(t, "javascript", payload["language"])
		assert.Equal(t, float64(1), payload["issuesCount"])
	})

	t.Run("missing path", func(t *testing.T) {
		result, err := NewDefaultRegistry(&fakeAnalyzer{}).Call(context.Background(), AnalyzeCodeName, json.RawMessage(`{}`))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, result.Text, `"path"`)
	})

	t.Run("no arguments at all", func(t *testing.T) {
		result, err := NewDefaultRegistry(&fakeAnalyzer{}).Call(context.Background(), AnalyzeCodeName, nil)
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})

	t.Run("wrong type", func(t *testing.T) {
		result, err := NewDefaultRegistry(&fakeAnalyzer{}).Call(context.Background(), AnalyzeCodeName, json.RawMessage(`{"path":"a.js","fix":"yes"}`))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, result.Text, "fix")
	})

	t.Run("unsupported language surfaces as error", func(t *testing.T) {
		fake := &fakeAnalyzer{err: fmt.Errorf("%w: unknown", lint.ErrUnsupportedLanguage)}
		_, err := NewDefaultRegistry(fake).Call(context.Background(), AnalyzeCodeName, json.RawMessage(`{"path":"main.go"}`))
		assert.ErrorIs(t, err, lint.ErrUnsupportedLanguage)
	})

	t.Run("other analyzer errors are flagged text", func(t *testing.T) {
		fake := &fakeAnalyzer{err: errors.New("boom")}
		result, err := NewDefaultRegistry(fake).Call(context.Background(), AnalyzeCodeName, json.RawMessage(`{"path":"a.js"}`))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, result.Text, "boom")
	})

	t.Run("real analyzer with missing file", func(t *testing.T) {
		tool := NewAnalyzeCodeTool(lint.NewAnalyzer(lint.NewRegistry()))
		path := filepath.Join(t.TempDir(), "missing.py")
		args, _ := json.Marshal(map[string]any{"path": path})

		result, err := tool.Execute(context.Background(), args)
		require.NoError(t, err)
		assert.False(t, result.IsError)

		var report lint.Report
		require.NoError(t, json.Unmarshal([]byte(result.Text), &report))
		require.Len(t, report.Issues, 1)
		assert.Equal(t, "python-error", report.Issues[0].ID)
		assert.Equal(t, 1, report.IssuesCount)
		assert.Nil(t, report.Issues[0].Line)
	})

	t.Run("real analyzer with unknown extension", func(t *testing.T) {
		tool := NewAnalyzeCodeTool(lint.NewAnalyzer(lint.NewRegistry()))
		_, err := tool.Execute(context.Background(), json.RawMessage(`{"path":"notes.txt"}`))
		assert.ErrorIs(t, err, lint.ErrUnsupportedLanguage)
	})
}

func TestFixIssues(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
	}{
		{"one", []string{"javascript-a.js-0"}},
		{"several unknown ids", []string{"x", "y", "z"}},
		{"empty", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, _ := json.Marshal(map[string]any{"path": "a.js", "issueIds": tt.ids})
			result, err := NewFixIssuesTool().Execute(context.Background(), args)
			require.NoError(t, err)
			require.False(t, result.IsError)

			var payload fixIssuesPayload
			require.NoError(t, json.Unmarshal([]byte(result.Text), &payload))
			assert.Equal(t, "a.js", payload.FilePath)
			assert.Equal(t, len(tt.ids), payload.FixedIssues)
			assert.Equal(t, tt.ids, payload.IssueIDs)
			assert.Equal(t, "Fixed issues successfully", payload.Status)
		})
	}

	t.Run("missing issueIds", func(t *testing.T) {
		result, err := NewFixIssuesTool().Execute(context.Background(), json.RawMessage(`{"path":"a.js"}`))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, result.Text, "issueIds")
	})

	t.Run("issueIds must be an array", func(t *testing.T) {
		result, err := NewFixIssuesTool().Execute(context.Background(), json.RawMessage(`{"path":"a.js","issueIds":"x"}`))
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})
}

func TestGetFixSuggestions(t *testing.T) {
	for _, issueID := range []string{"css-site.css-0", "does-not-exist"} {
		t.Run(issueID, func(t *testing.T) {
			args, _ := json.Marshal(map[string]any{"path": "/nowhere/site.css", "issueId": issueID})
			result, err := NewGetFixSuggestionsTool().Execute(context.Background(), args)
			require.NoError(t, err)
			require.False(t, result.IsError)

			var payload suggestionsPayload
			require.NoError(t, json.Unmarshal([]byte(result.Text), &payload))
			assert.Equal(t, issueID, payload.IssueID)
			require.Len(t, payload.Suggestions, 1)
			assert.Equal(t, "fix-1", payload.Suggestions[0].ID)
		})
	}

	t.Run("missing issueId", func(t *testing.T) {
		result, err := NewGetFixSuggestionsTool().Execute(context.Background(), json.RawMessage(`{"path":"a.css"}`))
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})
}
