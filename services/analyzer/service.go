// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package analyzer wires configuration, the lint engines, the tool
// registry, and the MCP server into one runnable service.
package analyzer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/AleutianAI/code-analyzer-server/services/analyzer/config"
	"github.com/AleutianAI/code-analyzer-server/services/analyzer/lint"
	"github.com/AleutianAI/code-analyzer-server/services/analyzer/mcp"
	"github.com/AleutianAI/code-analyzer-server/services/analyzer/tools"
)

// ErrNilConfig indicates New was called without a config.
var ErrNilConfig = errors.New("analyzer: config must not be nil")

// Service owns the long-lived components of one server process.
//
// Thread Safety: Safe for concurrent use. ApplyConfig may run while a
// request is in flight; that request keeps the engine settings it
// already read.
type Service struct {
	mu      sync.RWMutex
	cfg     *config.Config
	version string
	logger  *slog.Logger

	engines  *lint.Registry
	analyzer *lint.Analyzer
	tools    *tools.Registry
	server   *mcp.Server
}

// New builds the service from cfg.
//
// Inputs:
//
//	cfg - Validated configuration
//	version - Build version, used when cfg.Server.Version is empty
//	logger - Destination for service logs. nil means slog.Default.
//
// Outputs:
//
//	*Service - Ready to Run
//	error - ErrNilConfig
func New(cfg *config.Config, version string, logger *slog.Logger) (*Service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if logger == nil {
		logger = slog.Default()
	}

	engines := lint.NewRegistry()
	engines.Replace(cfg.EngineConfigs())

	analyzer := lint.NewAnalyzer(engines)
	toolRegistry := tools.NewDefaultRegistry(analyzer)

	serverVersion := cfg.Server.Version
	if serverVersion == "" {
		serverVersion = version
	}

	s := &Service{
		cfg:      cfg,
		version:  serverVersion,
		logger:   logger,
		engines:  engines,
		analyzer: analyzer,
		tools:    toolRegistry,
		server: mcp.NewServer(toolRegistry,
			mcp.WithServerInfo(cfg.Server.Name, serverVersion),
			mcp.WithLogger(logger),
		),
	}
	return s, nil
}

// Engines returns the engine registry.
func (s *Service) Engines() *lint.Registry { return s.engines }

// Analyzer returns the analyzer.
func (s *Service) Analyzer() *lint.Analyzer { return s.analyzer }

// Tools returns the tool registry.
func (s *Service) Tools() *tools.Registry { return s.tools }

// Server returns the MCP server.
func (s *Service) Server() *mcp.Server { return s.server }

// Version returns the version reported to clients.
func (s *Service) Version() string { return s.version }

// Config returns the active configuration.
func (s *Service) Config() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Run serves MCP on in and out until the input ends or ctx is cancelled.
func (s *Service) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Info("Code analyzer server running on stdio",
		slog.String("version", s.version),
		slog.Any("engines", s.engines.Names()),
	)
	err := s.server.Serve(ctx, in, out)
	s.logger.Info("Code analyzer server stopped")
	return err
}

// ApplyConfig swaps in reloaded engine settings.
//
// Only the engine section takes effect at runtime. Changes to server,
// logging, or telemetry settings are logged and need a restart.
func (s *Service) ApplyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}

	s.mu.Lock()
	prev := s.cfg
	s.cfg = cfg
	s.mu.Unlock()

	s.engines.Replace(cfg.EngineConfigs())
	s.engines.Detect()

	if prev.Server != cfg.Server || prev.Logging != cfg.Logging || prev.Telemetry != cfg.Telemetry {
		s.logger.Warn("Config changes outside engines take effect after restart",
			slog.String("source", cfg.Source),
		)
	}
	s.logger.Info("Engine settings reloaded", slog.String("source", cfg.Source))
}

// Health reports engine availability for the /health endpoint.
func (s *Service) Health() map[string]any {
	engines := make(map[string]bool)
	for _, name := range s.engines.Names() {
		if cfg := s.engines.Get(name); cfg != nil {
			engines[name] = cfg.Available
		}
	}
	return map[string]any{
		"version": s.version,
		"engines": engines,
	}
}
