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
	"fmt"
	"runtime"
	"sort"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/code-analyzer-server/pkg/ux"
	"github.com/AleutianAI/code-analyzer-server/services/analyzer"
)

func newToolsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the tool definitions returned by tools/list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := analyzer.New(opts.cfg, version, opts.logger.Slog())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{"tools": svc.Tools().Definitions()})
		},
	}
}

func newDoctorCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check which lint engines are installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := analyzer.New(opts.cfg, version, opts.logger.Slog())
			if err != nil {
				return err
			}
			available := svc.Engines().Detect()

			names := make([]string, 0, len(available))
			for name := range available {
				names = append(names, name)
			}
			sort.Strings(names)

			out := cmd.OutOrStdout()
			p := ux.NewPrinter(out, outputMode(out))
			p.Title("Lint engines")

			rows := make([][]string, 0, len(names))
			missing := 0
			for _, name := range names {
				cfg := svc.Engines().Get(name)
				status := "available"
				if !available[name] {
					status = "not installed"
					missing++
				}
				rows = append(rows, []string{name, cfg.Command, cfg.Timeout.String(), status})
			}
			p.Table([]string{"ENGINE", "COMMAND", "TIMEOUT", "STATUS"}, rows)

			if missing > 0 {
				p.Status(ux.IconWarning, fmt.Sprintf("%d engines not installed; their languages report an engine error", missing))
			} else {
				p.Status(ux.IconSuccess, "All engines available")
			}
			p.Muted("config: " + opts.cfg.Source)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "code-analyzer %s (%s, %s/%s)\n",
				version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
	// Skip config loading so version works with a broken config.
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error { return nil }
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error { return nil }
	return cmd
}
