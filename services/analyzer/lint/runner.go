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
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

// =============================================================================
// RUNNER
// =============================================================================

// ExecResult is the captured result of one engine process.
type ExecResult struct {
	// Stdout is everything the engine wrote to stdout.
	Stdout []byte

	// Stderr is everything the engine wrote to stderr.
	Stderr []byte

	// ExitCode is the process exit status. Engines commonly exit non-zero
	// when they find problems, so this is not treated as a failure here.
	ExitCode int

	// Duration is the wall time of the run.
	Duration time.Duration
}

// Runner launches engine subprocesses.
//
// Thread Safety: Safe for concurrent use.
type Runner struct {
	workingDir string
}

// RunnerOption configures the Runner.
type RunnerOption func(*Runner)

// WithWorkingDir sets the working directory for engine processes.
func WithWorkingDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.workingDir = dir
	}
}

// NewRunner creates a runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes an engine with the given adapter arguments.
//
// Description:
//
//	Builds the command line as cfg.Command, cfg.Args, then args. Applies
//	cfg.Timeout when non-zero. A non-zero exit status is reported through
//	ExecResult.ExitCode, not as an error.
//
// Inputs:
//
//	ctx - Context for cancellation; cancelling it kills the engine
//	cfg - Engine launch settings
//	args - Adapter-specific arguments
//
// Outputs:
//
//	*ExecResult - Captured output and exit status
//	error - Non-nil if the engine could not be launched, timed out,
//	        or ctx was cancelled
//
// Errors:
//
//	ErrInvalidInput - nil ctx or cfg
//	ErrEngineNotInstalled - Command not found
//	ErrEngineTimeout - Run exceeded cfg.Timeout
//	ErrEngineFailed - Any other launch failure
//
// Thread Safety: Safe for concurrent use.
func (r *Runner) Run(ctx context.Context, cfg *EngineConfig, args []string) (*ExecResult, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: ctx must not be nil", ErrInvalidInput)
	}
	if cfg == nil || cfg.Command == "" {
		return nil, fmt.Errorf("%w: engine config must name a command", ErrInvalidInput)
	}

	cmdArgs := make([]string, 0, len(cfg.Args)+len(args))
	cmdArgs = append(cmdArgs, cfg.Args...)
	cmdArgs = append(cmdArgs, args...)

	cmdCtx := ctx
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		cmdCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(cmdCtx, cfg.Command, cmdArgs...)
	configureProcess(cmd)
	cmd.WaitDelay = 2 * time.Second
	if r.workingDir != "" {
		cmd.Dir = r.workingDir
	}
	if len(cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), cfg.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	result := &ExecResult{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}

	if cfg.Timeout > 0 && errors.Is(cmdCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return result, fmt.Errorf("%w: %s after %s", ErrEngineTimeout, cfg.Command, cfg.Timeout)
	}
	if ctx.Err() != nil {
		return result, ctx.Err()
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			slog.Debug("Engine exited non-zero",
				slog.String("engine", cfg.Name),
				slog.Int("exit_code", result.ExitCode),
			)
			return result, nil
		}
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return result, fmt.Errorf("%w: %s", ErrEngineNotInstalled, cfg.Command)
		}
		return result, fmt.Errorf("%w: %s: %v", ErrEngineFailed, cfg.Command, err)
	}

	slog.Debug("Engine completed",
		slog.String("engine", cfg.Name),
		slog.Duration("duration", result.Duration),
	)
	return result, nil
}
