// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/code-analyzer-server/services/analyzer/lint"
	"github.com/AleutianAI/code-analyzer-server/services/analyzer/tools"
)

type fakeAnalyzer struct {
	err error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, req lint.Request) (*lint.Report, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &lint.Report{FilePath: req.Path, Language: lint.LanguageJavaScript, Issues: []lint.Issue{}}, nil
}

type rpcReply struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// serve runs a server over the given input lines and returns every reply.
func serve(t *testing.T, caller ToolCaller, lines ...string) []rpcReply {
	t.Helper()
	var out bytes.Buffer
	srv := NewServer(caller, WithServerInfo("code-analyzer-server", "1.2.3"), WithLogger(quietLogger()))

	input := strings.Join(lines, "\n") + "\n"
	require.NoError(t, srv.Serve(context.Background(), strings.NewReader(input), &out))

	replies := make([]rpcReply, 0)
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if line == "" {
			continue
		}
		var reply rpcReply
		require.NoError(t, json.Unmarshal([]byte(line), &reply), "line %q", line)
		replies = append(replies, reply)
	}
	return replies
}

func defaultTools() *tools.Registry {
	return tools.NewDefaultRegistry(&fakeAnalyzer{})
}

func TestServer_Initialize(t *testing.T) {
	replies := serve(t, defaultTools(),
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"0"}}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
	)
	require.Len(t, replies, 1)
	assert.Equal(t, "1", string(replies[0].ID))
	require.Nil(t, replies[0].Error)
	assert.JSONEq(t, `{
		"protocolVersion": "2024-11-05",
		"capabilities": {"tools": {}},
		"serverInfo": {"name": "code-analyzer-server", "version": "1.2.3"}
	}`, string(replies[0].Result))
}

func TestServer_NotificationInitialized(t *testing.T) {
	var out bytes.Buffer
	srv := NewServer(defaultTools(), WithLogger(quietLogger()))
	require.False(t, srv.Initialized())

	err := srv.Serve(context.Background(), strings.NewReader(`{"jsonrpc":"2.0","method":"notifications/initialized"}`+"\n"), &out)
	require.NoError(t, err)
	assert.True(t, srv.Initialized())
	assert.Empty(t, out.String())
}

func TestServer_PingAndList(t *testing.T) {
	replies := serve(t, defaultTools(),
		`{"jsonrpc":"2.0","id":"a","method":"ping"}`,
		`{"jsonrpc":"2.0","id":"b","method":"tools/list"}`,
	)
	require.Len(t, replies, 2)

	assert.Equal(t, `"a"`, string(replies[0].ID))
	assert.JSONEq(t, `{}`, string(replies[0].Result))

	var list ListToolsResult
	require.NoError(t, json.Unmarshal(replies[1].Result, &list))
	require.Len(t, list.Tools, 3)
	assert.Equal(t, "analyze_code", list.Tools[0].Name)
	assert.Equal(t, "fix_issues", list.Tools[1].Name)
	assert.Equal(t, "get_fix_suggestions", list.Tools[2].Name)
	assert.Equal(t, []string{"path"}, list.Tools[0].InputSchema.Required)
}

func TestServer_ToolsCall(t *testing.T) {
	t.Run("analyze_code returns text content", func(t *testing.T) {
		replies := serve(t, defaultTools(),
			`{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"analyze_code","arguments":{"path":"app.js"}}}`,
		)
		require.Len(t, replies, 1)
		require.Nil(t, replies[0].Error)

		var result CallToolResult
		require.NoError(t, json.Unmarshal(replies[0].Result, &result))
		require.Len(t, result.Content, 1)
		assert.Equal(t, "text", result.Content[0].Type)
		assert.False(t, result.IsError)

		var report lint.Report
		require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &report))
		assert.Equal(t, "app.js", report.FilePath)
		assert.NotContains(t, string(replies[0].Result), "isError")
	})

	t.Run("fix_issues stub", func(t *testing.T) {
		replies := serve(t, defaultTools(),
			`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"fix_issues","arguments":{"path":"a.js","issueIds":["x","y"]}}}`,
		)
		require.Len(t, replies, 1)
		var result CallToolResult
		require.NoError(t, json.Unmarshal(replies[0].Result, &result))

		var payload map[string]any
		require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &payload))
		assert.Equal(t, float64(2), payload["fixedIssues"])
		assert.Equal(t, "Fixed issues successfully", payload["status"])
	})

	t.Run("malformed arguments are flagged content", func(t *testing.T) {
		replies := serve(t, defaultTools(),
			`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"analyze_code","arguments":{}}}`,
		)
		require.Len(t, replies, 1)
		require.Nil(t, replies[0].Error)
		var result CallToolResult
		require.NoError(t, json.Unmarshal(replies[0].Result, &result))
		assert.True(t, result.IsError)
		assert.Contains(t, result.Content[0].Text, "path")
	})

	t.Run("unknown tool", func(t *testing.T) {
		replies := serve(t, defaultTools(),
			`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"rm_rf"}}`,
		)
		require.Len(t, replies, 1)
		require.NotNil(t, replies[0].Error)
		assert.Equal(t, CodeMethodNotFound, replies[0].Error.Code)
		assert.Equal(t, "Unknown tool: rm_rf", replies[0].Error.Message)
	})

	t.Run("unsupported language", func(t *testing.T) {
		caller := tools.NewDefaultRegistry(&fakeAnalyzer{err: fmt.Errorf("%w: unknown", lint.ErrUnsupportedLanguage)})
		replies := serve(t, caller,
			`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"analyze_code","arguments":{"path":"x.rb"}}}`,
		)
		require.Len(t, replies, 1)
		require.NotNil(t, replies[0].Error)
		assert.Equal(t, CodeInvalidParams, replies[0].Error.Code)
		assert.Contains(t, replies[0].Error.Message, "unsupported language")
	})

	t.Run("other tool errors are internal", func(t *testing.T) {
		caller := &stubCaller{err: errors.New("disk on fire")}
		replies := serve(t, caller,
			`{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"analyze_code"}}`,
		)
		require.Len(t, replies, 1)
		require.NotNil(t, replies[0].Error)
		assert.Equal(t, CodeInternalError, replies[0].Error.Code)
	})

	t.Run("missing params", func(t *testing.T) {
		replies := serve(t, defaultTools(),
			`{"jsonrpc":"2.0","id":6,"method":"tools/call"}`,
			`{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"arguments":{}}}`,
		)
		require.Len(t, replies, 2)
		assert.Equal(t, CodeInvalidParams, replies[0].Error.Code)
		assert.Equal(t, CodeInvalidParams, replies[1].Error.Code)
	})

	t.Run("real analyzer missing file", func(t *testing.T) {
		caller := tools.NewDefaultRegistry(lint.NewAnalyzer(lint.NewRegistry()))
		path := filepath.Join(t.TempDir(), "gone.css")
		req, _ := json.Marshal(map[string]any{
			"jsonrpc": "2.0", "id": 9, "method": "tools/call",
			"params": map[string]any{"name": "analyze_code", "arguments": map[string]any{"path": path}},
		})

		replies := serve(t, caller, string(req))
		require.Len(t, replies, 1)
		var result CallToolResult
		require.NoError(t, json.Unmarshal(replies[0].Result, &result))
		var report lint.Report
		require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &report))
		require.Len(t, report.Issues, 1)
		assert.Equal(t, "css-error", report.Issues[0].ID)
		assert.False(t, report.Issues[0].Fixable)
	})
}

type stubCaller struct {
	err error
}

func (s *stubCaller) Definitions() []tools.Definition { return nil }
func (s *stubCaller) Call(context.Context, string, json.RawMessage) (*tools.Result, error) {
	return nil, s.err
}

func TestServer_ProtocolErrors(t *testing.T) {
	replies := serve(t, defaultTools(),
		`{not json`,
		`[1,2,3]`,
		`{"jsonrpc":"1.0","id":1,"method":"ping"}`,
		`{"jsonrpc":"2.0","id":2}`,
		`{"jsonrpc":"2.0","id":{"x":1},"method":"ping"}`,
		`{"jsonrpc":"2.0","id":3,"method":"resources/list"}`,
		`{"jsonrpc":"2.0","method":"notifications/unknown"}`,
		``,
		`{"jsonrpc":"2.0","id":4,"method":"ping"}`,
	)
	require.Len(t, replies, 7)

	assert.Equal(t, CodeParseError, replies[0].Error.Code)
	assert.Equal(t, "null", string(replies[0].ID))

	assert.Equal(t, CodeInvalidRequest, replies[1].Error.Code)

	assert.Equal(t, CodeInvalidRequest, replies[2].Error.Code)
	assert.Equal(t, "1", string(replies[2].ID))

	assert.Equal(t, CodeInvalidRequest, replies[3].Error.Code)

	assert.Equal(t, CodeInvalidRequest, replies[4].Error.Code)
	assert.Equal(t, "null", string(replies[4].ID))

	assert.Equal(t, CodeMethodNotFound, replies[5].Error.Code)
	assert.Equal(t, "3", string(replies[5].ID))

	assert.Nil(t, replies[6].Error)
	assert.Equal(t, "4", string(replies[6].ID))
}

func TestServer_CancelledContext(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	srv := NewServer(defaultTools(), WithLogger(quietLogger()))

	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx, pr, io.Discard)
	}()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}
