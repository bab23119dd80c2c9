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
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/code-analyzer-server/pkg/logging"
	"github.com/AleutianAI/code-analyzer-server/services/analyzer/config"
)

// errIssuesFound makes analyze exit 1 under --fail-on-error. Nothing is
// printed for it; the report already says what was found.
var errIssuesFound = errors.New("error-severity issues found")

// rootOptions holds the persistent flags and what PersistentPreRunE
// builds from them.
type rootOptions struct {
	configPath string
	logLevel   string
	logDir     string
	logFormat  string

	cfg    *config.Config
	logger *logging.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "code-analyzer",
		Short: "MCP server for ESLint, HTMLHint, Stylelint and Pyright",
		Long: `code-analyzer exposes external lint engines to MCP clients over stdio.

Running it without a subcommand starts the server. Logs go to stderr;
stdout carries only protocol messages.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.logger != nil {
				return opts.logger.Close()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (default $"+config.EnvConfigPath+" or built-in defaults)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&opts.logDir, "log-dir", "", "also write JSON logs to this directory")
	flags.StringVar(&opts.logFormat, "log-format", "", "stderr log format: auto, text or json")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newAnalyzeCmd(opts),
		newToolsCmd(opts),
		newDoctorCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

// setup loads the config, applies flag overrides, and installs the logger
// as the slog default.
func (o *rootOptions) setup() error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.logDir != "" {
		cfg.Logging.Dir = o.logDir
	}
	if o.logFormat != "" {
		cfg.Logging.Format = o.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Config{
		Level:   level,
		Format:  logging.Format(cfg.Logging.Format),
		LogDir:  cfg.Logging.Dir,
		Service: cfg.Server.Name,
	})
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	o.cfg = cfg
	o.logger = logger
	slog.SetDefault(logger.Slog())
	return nil
}

// exitCode maps a command error to the process exit status. Errors other
// than errIssuesFound are printed to stderr first.
func exitCode(err error) int {
	if errors.Is(err, errIssuesFound) {
		return 1
	}
	slog.Error("Command failed", slog.String("error", err.Error()))
	return 2
}
