// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package analyzer

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/code-analyzer-server/services/analyzer/config"
	"github.com/AleutianAI/code-analyzer-server/services/analyzer/lint"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func defaultConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	return cfg
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New(nil, "1.0.0", quietLogger())
	assert.ErrorIs(t, err, ErrNilConfig)
}

func TestNew_Wiring(t *testing.T) {
	svc, err := New(defaultConfig(t), "1.2.3", quietLogger())
	require.NoError(t, err)

	assert.Equal(t, "1.2.3", svc.Version())
	assert.Equal(t, []string{lint.EngineESLint, lint.EngineHTMLHint, lint.EnginePyright, lint.EngineStylelint}, svc.Engines().Names())
	assert.Len(t, svc.Tools().Definitions(), 3)
	for _, lang := range lint.SupportedLanguages() {
		assert.NotNil(t, svc.Analyzer().Adapter(lang), "adapter for %s", lang)
	}
}

func TestNew_ConfiguredVersionWins(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Server.Version = "9.9.9"

	svc, err := New(cfg, "1.2.3", quietLogger())
	require.NoError(t, err)
	assert.Equal(t, "9.9.9", svc.Version())
}

func TestService_Run_Initialize(t *testing.T) {
	svc, err := New(defaultConfig(t), "1.2.3", quietLogger())
	require.NoError(t, err)

	in := strings.NewReader(strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"0"}}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
	}, "\n") + "\n")
	var out bytes.Buffer

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, svc.Run(ctx, in, &out))

	var replies []map[string]any
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var msg map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &msg))
		replies = append(replies, msg)
	}
	require.Len(t, replies, 2)

	info := replies[0]["result"].(map[string]any)["serverInfo"].(map[string]any)
	assert.Equal(t, "code-analyzer-server", info["name"])
	assert.Equal(t, "1.2.3", info["version"])

	toolList := replies[1]["result"].(map[string]any)["tools"].([]any)
	assert.Len(t, toolList, 3)
	assert.True(t, svc.Server().Initialized())
}

func TestService_ApplyConfig(t *testing.T) {
	svc, err := New(defaultConfig(t), "1.2.3", quietLogger())
	require.NoError(t, err)

	next := defaultConfig(t)
	next.Engines.ESLint.Command = "npx"
	next.Engines.ESLint.Args = []string{"--yes", "eslint"}
	next.Engines.Pyright.Timeout = 5 * time.Second
	next.Source = "reloaded.yaml"

	svc.ApplyConfig(next)

	eslint := svc.Engines().Get(lint.EngineESLint)
	require.NotNil(t, eslint)
	assert.Equal(t, "npx", eslint.Command)
	assert.Equal(t, []string{"--yes", "eslint"}, eslint.Args)
	assert.Equal(t, 5*time.Second, svc.Engines().Get(lint.EnginePyright).Timeout)
	assert.Equal(t, "reloaded.yaml", svc.Config().Source)

	svc.ApplyConfig(nil)
	assert.Equal(t, "reloaded.yaml", svc.Config().Source)
}

func TestService_Health(t *testing.T) {
	svc, err := New(defaultConfig(t), "1.2.3", quietLogger())
	require.NoError(t, err)

	health := svc.Health()
	assert.Equal(t, "1.2.3", health["version"])
	engines, ok := health["engines"].(map[string]bool)
	require.True(t, ok)
	assert.Len(t, engines, 4)
	assert.Contains(t, engines, lint.EngineStylelint)
}
