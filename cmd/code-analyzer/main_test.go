// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"go/format"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/code-analyzer-server/pkg/ux"
	"github.com/AleutianAI/code-analyzer-server/services/analyzer"
	"github.com/AleutianAI/code-analyzer-server/services/analyzer/config"
	"github.com/AleutianAI/code-analyzer-server/services/analyzer/lint"
)

// execute runs the CLI with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvConfigPath, "")
	t.Setenv(ux.EnvOutputMode, "plain")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--log-level", "error", "--log-format", "json"}, args...))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "code-analyzer "+version))
}

func TestVersionCommand_IgnoresBrokenConfig(t *testing.T) {
	out, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "version")
	require.NoError(t, err)
	assert.Contains(t, out, version)
}

func TestToolsCommand(t *testing.T) {
	out, err := execute(t, "tools")
	require.NoError(t, err)

	var listed struct {
		Tools []struct {
			Name        string         `json:"name"`
			InputSchema map[string]any `json:"inputSchema"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed.Tools, 3)
	assert.Equal(t, "analyze_code", listed.Tools[0].Name)
	assert.Equal(t, "fix_issues", listed.Tools[1].Name)
	assert.Equal(t, "get_fix_suggestions", listed.Tools[2].Name)
}

func TestAnalyzeCommand_MissingFileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.js")

	out, err := execute(t, "analyze", "--json", path)
	require.NoError(t, err)

	var report lint.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, path, report.FilePath)
	assert.Equal(t, lint.LanguageJavaScript, report.Language)
	require.Equal(t, 1, report.IssuesCount)
	assert.Equal(t, "javascript-error", report.Issues[0].ID)
	assert.Equal(t, lint.SeverityError, report.Issues[0].Severity)
	assert.True(t, strings.HasPrefix(report.Issues[0].Message, "ESLint error:"))
}

func TestAnalyzeCommand_FailOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.py")

	_, err := execute(t, "analyze", "--json", "--fail-on-error", path)
	assert.ErrorIs(t, err, errIssuesFound)
	assert.Equal(t, 1, exitCode(err))
}

func TestAnalyzeCommand_LanguageOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "styles.txt")

	out, err := execute(t, "analyze", "--json", "--language", "css", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"language": "css"`)
	assert.Contains(t, out, `"id": "css-error"`)
}

func TestAnalyzeCommand_Unsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n"), 0o644))

	_, err := execute(t, "analyze", path)
	assert.ErrorIs(t, err, lint.ErrUnsupportedLanguage)
	assert.Equal(t, 2, exitCode(err))
}

func TestAnalyzeCommand_RequiresPath(t *testing.T) {
	_, err := execute(t, "analyze")
	assert.Error(t, err)
}

func TestRootCommand_BadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0o644))

	_, err := execute(t, "--config", path, "tools")
	assert.Error(t, err)
}

func TestRootCommand_BadLogLevelFlag(t *testing.T) {
	t.Setenv(config.EnvConfigPath, "")
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--log-level", "chatty", "tools"})

	err := cmd.Execute()
	assert.True(t, errors.Is(err, config.ErrInvalidConfig), "got %v", err)
}

func TestDoctorCommand(t *testing.T) {
	out, err := execute(t, "doctor")
	require.NoError(t, err)

	for _, engine := range []string{"eslint", "htmlhint", "pyright", "stylelint"} {
		assert.Contains(t, out, engine+"\t"+engine+"\t2m0s\t")
	}
}

func TestRenderReport_Plain(t *testing.T) {
	line, col := 3, 7
	rule := "no-unused-vars"
	report := &lint.Report{
		FilePath:    "app.js",
		Language:    lint.LanguageJavaScript,
		IssuesCount: 2,
		Issues: []lint.Issue{
			{ID: "javascript-app.js-0", Line: &line, Column: &col, Severity: lint.SeverityError, Message: "'x' is unused", RuleID: &rule},
			{ID: "javascript-app.js-1", Severity: lint.SeverityWarning, Message: "no position", Fixable: true},
		},
	}

	var buf bytes.Buffer
	renderReport(ux.NewPrinter(&buf, ux.ModePlain), report)

	want := "3:7\terror\tno-unused-vars\t'x' is unused\tfalse\n" +
		"-\twarning\t\tno position\ttrue\n" +
		"ERROR: 2 issues, 1 errors, 1 fixable\n"
	assert.Equal(t, want, buf.String())
}

func TestRenderReport_NoIssues(t *testing.T) {
	var buf bytes.Buffer
	renderReport(ux.NewPrinter(&buf, ux.ModePlain), &lint.Report{FilePath: "a.css", Language: lint.LanguageCSS})
	assert.Equal(t, "OK: No issues found\n", buf.String())
}

func TestTelemetryConfig_UsesConfiguredServerVersion(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Server.Version = "9.9.9"

	svc, err := analyzer.New(cfg, "1.2.3", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	tc := telemetryConfig(cfg, svc.Version())
	assert.Equal(t, "9.9.9", tc.ServiceVersion)
	assert.Equal(t, cfg.Server.Name, tc.ServiceName)
	assert.Equal(t, cfg.Telemetry.TraceExporter, tc.TraceExporter)
}

// TestSourceFilesAreFormatted keeps the module gofmt-clean.
func TestSourceFilesAreFormatted(t *testing.T) {
	root := filepath.Join("..", "..")
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if name := d.Name(); path != root && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		formatted, err := format.Source(src)
		if err != nil {
			return err
		}
		assert.Equal(t, string(formatted), string(src), "%s is not gofmt-formatted", path)
		return nil
	})
	require.NoError(t, err)
}
