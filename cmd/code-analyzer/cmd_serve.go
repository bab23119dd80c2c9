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
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/code-analyzer-server/services/analyzer"
	"github.com/AleutianAI/code-analyzer-server/services/analyzer/config"
	"github.com/AleutianAI/code-analyzer-server/services/analyzer/telemetry"
)

// telemetryFlushTimeout bounds exporter shutdown on exit.
const telemetryFlushTimeout = 5 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP over stdio (the default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
}

// runServe runs the MCP server until stdin closes or a signal arrives.
//
// Description:
//
//	The optional metrics endpoint and config watcher run in the same
//	errgroup. When the server returns, the others are cancelled.
func runServe(cmd *cobra.Command, opts *rootOptions) error {
	cfg := opts.cfg
	logger := opts.logger.With("session_id", uuid.NewString())
	slog.SetDefault(logger.Slog())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := analyzer.New(cfg, version, logger.Slog())
	if err != nil {
		return err
	}

	shutdownTelemetry, err := telemetry.Init(ctx, telemetryConfig(cfg, svc.Version()))
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), telemetryFlushTimeout)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			logger.Warn("Telemetry shutdown failed", "error", err.Error())
		}
	}()

	svc.Engines().Detect()

	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancel := context.WithCancel(gctx)
	defer cancel()

	g.Go(func() error {
		defer cancel()
		return svc.Run(runCtx, os.Stdin, os.Stdout)
	})

	if addr := cfg.Telemetry.MetricsAddr; addr != "" {
		metrics := telemetry.NewMetricsServer(addr, cfg.Server.Name, svc.Health)
		g.Go(func() error {
			return metrics.Run(runCtx)
		})
	}

	if cfg.Watch {
		if cfg.Source == config.SourceEmbedded {
			logger.Warn("Config watch requested without a config file, ignoring")
		} else {
			watcher := config.NewWatcher(cfg.Source, svc.ApplyConfig, config.WithWatchLogger(logger.Slog()))
			g.Go(func() error {
				return watcher.Run(runCtx)
			})
		}
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// telemetryConfig maps the loaded config onto the telemetry settings.
// serviceVersion is the version the service reports to clients.
func telemetryConfig(cfg *config.Config, serviceVersion string) telemetry.Config {
	return telemetry.Config{
		ServiceName:    cfg.Server.Name,
		ServiceVersion: serviceVersion,
		TraceExporter:  cfg.Telemetry.TraceExporter,
		MetricExporter: cfg.Telemetry.MetricExporter,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure:   cfg.Telemetry.OTLPInsecure,
	}
}
