// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the analyzer configuration.
//
// Configuration is YAML. Built-in defaults are embedded in the binary and a
// user file, when one is given, is merged over them key by key. The user
// file is found through the --config flag or $CODE_ANALYZER_CONFIG.
//
// Thread Safety:
//
//	Config values are immutable once loaded. Watcher delivers new values
//	from a single goroutine.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/code-analyzer-server/services/analyzer/lint"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// MaxFileSize is the largest config file accepted (1MB).
	MaxFileSize = 1024 * 1024

	// EnvConfigPath names the environment variable holding a config path.
	EnvConfigPath = "CODE_ANALYZER_CONFIG"

	// SourceEmbedded is Config.Source when no user file was loaded.
	SourceEmbedded = "embedded"
)

//go:embed default.yaml
var defaultYAML []byte

var (
	// ErrConfigTooLarge indicates a config file over MaxFileSize.
	ErrConfigTooLarge = errors.New("config file too large")

	// ErrInvalidConfig indicates a config that failed validation.
	ErrInvalidConfig = errors.New("invalid config")
)

// =============================================================================
// Types
// =============================================================================

// Config is the full analyzer configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Engines   EnginesConfig   `yaml:"engines"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Watch     bool            `yaml:"watch"`

	// Source is the file the config was loaded from, or SourceEmbedded.
	Source string `yaml:"-"`
}

// ServerConfig is reported to clients by initialize.
type ServerConfig struct {
	Name    string `yaml:"name" validate:"required"`
	Version string `yaml:"version"`
}

// LoggingConfig controls pkg/logging.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=auto text json"`
	Dir    string `yaml:"dir"`
}

// EnginesConfig holds the launch settings of each engine.
type EnginesConfig struct {
	ESLint    EngineConfig `yaml:"eslint"`
	HTMLHint  EngineConfig `yaml:"htmlhint"`
	Stylelint EngineConfig `yaml:"stylelint"`
	Pyright   EngineConfig `yaml:"pyright"`
}

// EngineConfig is how one engine is launched.
type EngineConfig struct {
	Command string        `yaml:"command" validate:"required"`
	Args    []string      `yaml:"args"`
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
	Env     []string      `yaml:"env" validate:"dive,contains=="`
}

// TelemetryConfig selects trace and metric exporters.
type TelemetryConfig struct {
	TraceExporter  string `yaml:"trace_exporter" validate:"oneof=none stderr otlp"`
	MetricExporter string `yaml:"metric_exporter" validate:"oneof=none stderr prometheus"`
	OTLPEndpoint   string `yaml:"otlp_endpoint" validate:"required_if=TraceExporter otlp"`
	OTLPInsecure   bool   `yaml:"otlp_insecure"`
	MetricsAddr    string `yaml:"metrics_addr" validate:"omitempty,hostname_port"`
}

var configValidate = validator.New()

// =============================================================================
// Loading
// =============================================================================

// Default returns the embedded defaults.
func Default() (*Config, error) {
	cfg := &Config{Source: SourceEmbedded}
	if err := decodeInto(cfg, defaultYAML); err != nil {
		return nil, fmt.Errorf("embedded defaults: %w", err)
	}
	return cfg, nil
}

// Load returns the defaults merged with the user file, if any.
//
// Description:
//
//	The user file is path when non-empty, otherwise $CODE_ANALYZER_CONFIG.
//	Without either, Load returns the defaults. Keys absent from the user
//	file keep their default; lists are replaced, not appended to. Unknown
//	keys are rejected.
//
// Inputs:
//
//	path - Config file path; may be empty
//
// Outputs:
//
//	*Config - The validated configuration
//	error - Non-nil if the file cannot be read, parsed or validated
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		data, err := readFile(path)
		if err != nil {
			return nil, err
		}
		if err := decodeInto(cfg, data); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		cfg.Source = path
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes (max %d)", ErrConfigTooLarge, path, info.Size(), MaxFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return data, nil
}

// decodeInto merges YAML over cfg. An empty document changes nothing.
func decodeInto(cfg *Config, data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %s", strings.TrimPrefix(fe.Namespace(), "Config."), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// EngineConfigs converts the engine section into registry entries.
func (c *Config) EngineConfigs() []lint.EngineConfig {
	entries := []struct {
		name string
		cfg  EngineConfig
	}{
		{lint.EngineESLint, c.Engines.ESLint},
		{lint.EngineHTMLHint, c.Engines.HTMLHint},
		{lint.EngineStylelint, c.Engines.Stylelint},
		{lint.EnginePyright, c.Engines.Pyright},
	}

	configs := make([]lint.EngineConfig, 0, len(entries))
	for _, e := range entries {
		configs = append(configs, lint.EngineConfig{
			Name:    e.name,
			Command: e.cfg.Command,
			Args:    append([]string(nil), e.cfg.Args...),
			Env:     append([]string(nil), e.cfg.Env...),
			Timeout: e.cfg.Timeout,
		})
	}
	return configs
}
