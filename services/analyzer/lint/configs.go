// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package lint

import (
	"log/slog"
	"os/exec"
	"sort"
	"sync"
	"time"
)

// Engine names used as registry keys.
const (
	EngineESLint    = "eslint"
	EngineHTMLHint  = "htmlhint"
	EngineStylelint = "stylelint"
	EnginePyright   = "pyright"
)

// DefaultTimeout bounds a single engine run when the config does not set one.
const DefaultTimeout = 120 * time.Second

// =============================================================================
// ENGINE CONFIG
// =============================================================================

// EngineConfig configures how to launch one engine.
//
// Thread Safety: Treat as immutable after creation.
type EngineConfig struct {
	// Name is the registry key (e.g., "eslint").
	Name string

	// Command is the executable (e.g., "eslint" or "npx").
	Command string

	// Args are placed before the adapter's own arguments.
	// With Command "npx" this is typically []string{"--yes", "eslint"}.
	Args []string

	// Env holds extra KEY=VALUE pairs added to the process environment.
	Env []string

	// Timeout bounds a run. Zero disables the bound.
	Timeout time.Duration

	// Available is set by Registry.Detect.
	Available bool
}

// Clone returns a deep copy of the config.
func (c *EngineConfig) Clone() *EngineConfig {
	clone := &EngineConfig{
		Name:      c.Name,
		Command:   c.Command,
		Args:      make([]string, len(c.Args)),
		Env:       make([]string, len(c.Env)),
		Timeout:   c.Timeout,
		Available: c.Available,
	}
	copy(clone.Args, c.Args)
	copy(clone.Env, c.Env)
	return clone
}

// DefaultEngineConfigs returns the built-in launch settings.
func DefaultEngineConfigs() []EngineConfig {
	return []EngineConfig{
		{
			Name:    EngineESLint,
			Command: "eslint",
			Env:     []string{"ESLINT_USE_FLAT_CONFIG=false"},
			Timeout: DefaultTimeout,
		},
		{
			Name:    EngineHTMLHint,
			Command: "htmlhint",
			Timeout: DefaultTimeout,
		},
		{
			Name:    EngineStylelint,
			Command: "stylelint",
			Timeout: DefaultTimeout,
		},
		{
			Name:    EnginePyright,
			Command: "pyright",
			Timeout: DefaultTimeout,
		},
	}
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry holds the launch settings for every engine.
//
// Thread Safety: Safe for concurrent use. Replace swaps the whole set so a
// running analysis keeps the clone it already took.
type Registry struct {
	mu      sync.RWMutex
	configs map[string]*EngineConfig
}

// NewRegistry creates a registry with DefaultEngineConfigs.
func NewRegistry() *Registry {
	r := &Registry{configs: make(map[string]*EngineConfig)}
	for _, cfg := range DefaultEngineConfigs() {
		r.Register(cfg)
	}
	return r
}

// Register adds or replaces one engine config.
func (r *Registry) Register(cfg EngineConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[cfg.Name] = cfg.Clone()
}

// Replace swaps in a full set of engine configs.
//
// Description:
//
//	Engines not present in configs keep their current settings, so a
//	partial reload cannot leave an adapter without a launcher.
//
// Inputs:
//
//	configs - The new engine configs
func (r *Registry) Replace(configs []EngineConfig) {
	next := make(map[string]*EngineConfig, len(r.configs))

	r.mu.Lock()
	defer r.mu.Unlock()

	for name, cfg := range r.configs {
		next[name] = cfg
	}
	for _, cfg := range configs {
		next[cfg.Name] = cfg.Clone()
	}
	r.configs = next
}

// Get returns a clone of the config for an engine, or nil.
func (r *Registry) Get(name string) *EngineConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.configs[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// Names returns the registered engine names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.configs))
	for name := range r.configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Detect probes PATH for every engine command.
//
// Description:
//
//	Updates the Available flag of each config and logs the result.
//	Availability is informational: an unavailable engine still gets
//	launched and its failure becomes an engine fault.
//
// Outputs:
//
//	map[string]bool - Engine name to availability
//
// Thread Safety: Safe for concurrent use.
func (r *Registry) Detect() map[string]bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make(map[string]bool, len(r.configs))
	for name, cfg := range r.configs {
		_, err := exec.LookPath(cfg.Command)
		cfg.Available = err == nil
		result[name] = cfg.Available

		if cfg.Available {
			slog.Info("Engine available",
				slog.String("engine", name),
				slog.String("command", cfg.Command),
			)
		} else {
			slog.Warn("Engine not installed",
				slog.String("engine", name),
				slog.String("command", cfg.Command),
			)
		}
	}
	return result
}
