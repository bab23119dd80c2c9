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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/code-analyzer-server/pkg/ux"
	"github.com/AleutianAI/code-analyzer-server/services/analyzer"
	"github.com/AleutianAI/code-analyzer-server/services/analyzer/lint"
)

type analyzeOptions struct {
	language    string
	fix         bool
	jsonOutput  bool
	failOnError bool
}

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	aopts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <path>",
		Short: "Analyze one file and print its issues",
		Long: `Analyze runs the same analysis as the analyze_code tool.

The language is detected from the file extension unless --language is
given. With --fix, ESLint and Stylelint write their fixes back to the file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := analyzer.New(opts.cfg, version, opts.logger.Slog())
			if err != nil {
				return err
			}
			report, err := svc.Analyzer().Analyze(cmd.Context(), lint.Request{
				Path:     args[0],
				Language: aopts.language,
				Fix:      aopts.fix,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if aopts.jsonOutput {
				if err := writeJSON(out, report); err != nil {
					return err
				}
			} else {
				renderReport(ux.NewPrinter(out, outputMode(out)), report)
			}

			if aopts.failOnError && report.ErrorCount() > 0 {
				return errIssuesFound
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&aopts.language, "language", "l", "auto", "language: javascript, typescript, html, css, python or auto")
	cmd.Flags().BoolVar(&aopts.fix, "fix", false, "write engine fixes back to the file")
	cmd.Flags().BoolVar(&aopts.jsonOutput, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&aopts.failOnError, "fail-on-error", false, "exit 1 when any error-severity issue is reported")
	return cmd
}

// renderReport prints a report as a table with a summary line.
func renderReport(p *ux.Printer, report *lint.Report) {
	p.Title(fmt.Sprintf("%s (%s)", report.FilePath, report.Language))

	if report.IssuesCount == 0 {
		p.Status(ux.IconSuccess, "No issues found")
		return
	}

	rows := make([][]string, 0, len(report.Issues))
	for _, issue := range report.Issues {
		rows = append(rows, []string{
			issue.Location(),
			string(issue.Severity),
			issue.Rule(),
			issue.Message,
			strconv.FormatBool(issue.Fixable),
		})
	}
	p.Table([]string{"LOCATION", "SEVERITY", "RULE", "MESSAGE", "FIXABLE"}, rows)

	icon := ux.IconWarning
	if report.ErrorCount() > 0 {
		icon = ux.IconError
	}
	p.Status(icon, fmt.Sprintf("%d issues, %d errors, %d fixable",
		report.IssuesCount, report.ErrorCount(), report.FixableCount()))
}

// outputMode picks rich output only when w is a terminal.
func outputMode(w io.Writer) ux.Mode {
	if f, ok := w.(*os.File); ok {
		return ux.DetectMode(f)
	}
	return ux.DetectMode(nil)
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
