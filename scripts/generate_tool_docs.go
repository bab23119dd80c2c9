//go:build ignore

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// generate_tool_docs prints a markdown reference for the MCP tools and
// the lint engines behind them.
//
// Usage:
//
//	go run scripts/generate_tool_docs.go > docs/tools.md
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/AleutianAI/code-analyzer-server/services/analyzer/lint"
	"github.com/AleutianAI/code-analyzer-server/services/analyzer/tools"
)

func main() {
	engines := lint.NewRegistry()
	analyzer := lint.NewAnalyzer(engines)
	registry := tools.NewDefaultRegistry(analyzer)

	var b strings.Builder
	b.WriteString("# Code Analyzer Tool Reference\n\n")
	b.WriteString("Tools returned by `tools/list`, in registration order.\n\n")

	for _, def := range registry.Definitions() {
		writeTool(&b, def)
	}

	b.WriteString("---\n\n## Languages and Engines\n\n")
	b.WriteString("| Language | Engine | Default Command | Timeout |\n")
	b.WriteString("|----------|--------|-----------------|---------|\n")
	for _, lang := range lint.SupportedLanguages() {
		adapter := analyzer.Adapter(lang)
		if adapter == nil {
			continue
		}
		cfg := engines.Get(adapter.Engine())
		fmt.Fprintf(&b, "| `%s` | %s | `%s` | %s |\n", lang, adapter.Engine(), commandLine(cfg), cfg.Timeout)
	}
	b.WriteString("\n---\n\n")
	b.WriteString("*Generated by `go run scripts/generate_tool_docs.go`.*\n")

	if _, err := os.Stdout.WriteString(b.String()); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing docs: %v\n", err)
		os.Exit(1)
	}
}

// writeTool prints the section for one tool.
func writeTool(b *strings.Builder, def tools.Definition) {
	fmt.Fprintf(b, "## `%s`\n\n%s\n\n", def.Name, def.Description)

	required := make(map[string]bool, len(def.InputSchema.Required))
	for _, name := range def.InputSchema.Required {
		required[name] = true
	}

	names := make([]string, 0, len(def.InputSchema.Properties))
	for name := range def.InputSchema.Properties {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if required[names[i]] != required[names[j]] {
			return required[names[i]]
		}
		return names[i] < names[j]
	})

	b.WriteString("| Parameter | Type | Required | Default | Description |\n")
	b.WriteString("|-----------|------|----------|---------|-------------|\n")
	for _, name := range names {
		param := def.InputSchema.Properties[name]
		fmt.Fprintf(b, "| `%s` | %s | %s | %s | %s |\n",
			name, paramType(param), yesNo(required[name]), defaultValue(param), describe(param))
	}
	b.WriteString("\n")
}

func paramType(p tools.ParamDef) string {
	if p.Type == tools.ParamTypeArray && p.Items != nil {
		return fmt.Sprintf("%s of %s", p.Type, p.Items.Type)
	}
	return string(p.Type)
}

func defaultValue(p tools.ParamDef) string {
	if p.Default == nil {
		return ""
	}
	return fmt.Sprintf("`%v`", p.Default)
}

func describe(p tools.ParamDef) string {
	if len(p.Enum) == 0 {
		return p.Description
	}
	return fmt.Sprintf("%s One of: `%s`.", p.Description, strings.Join(p.Enum, "`, `"))
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func commandLine(cfg *lint.EngineConfig) string {
	return strings.TrimSpace(cfg.Command + " " + strings.Join(cfg.Args, " "))
}
