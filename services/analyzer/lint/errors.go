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
	"errors"
	"fmt"
)

// Sentinel errors for the lint package.
var (
	// ErrUnsupportedLanguage indicates no engine handles the language.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrEngineNotInstalled indicates the engine binary was not found.
	ErrEngineNotInstalled = errors.New("engine not installed")

	// ErrEngineTimeout indicates the engine exceeded its configured timeout.
	ErrEngineTimeout = errors.New("engine timeout")

	// ErrEngineFailed indicates the engine ran but produced no usable result.
	ErrEngineFailed = errors.New("engine execution failed")

	// ErrParseOutput indicates the engine's output could not be parsed.
	ErrParseOutput = errors.New("failed to parse engine output")

	// ErrFileNotFound indicates the file to analyze could not be read.
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidInput indicates invalid input to a lint function.
	ErrInvalidInput = errors.New("invalid input")
)

// EngineFault describes why an engine run could not produce diagnostics.
//
// Thread Safety: Immutable after creation.
type EngineFault struct {
	// Engine is the display name of the engine (e.g., "ESLint").
	Engine string

	// Language is the language being analyzed.
	Language Language

	// Err is the underlying error.
	Err error

	// Output holds engine stderr, when there was any.
	Output string
}

// NewEngineFault creates a fault for an engine and language.
func NewEngineFault(engine string, language Language, err error) *EngineFault {
	return &EngineFault{
		Engine:   engine,
		Language: language,
		Err:      err,
	}
}

// WithOutput returns a copy of the fault with engine stderr attached.
func (f *EngineFault) WithOutput(output string) *EngineFault {
	return &EngineFault{
		Engine:   f.Engine,
		Language: f.Language,
		Err:      f.Err,
		Output:   output,
	}
}

// Error implements the error interface.
func (f *EngineFault) Error() string {
	if f.Output != "" {
		return fmt.Sprintf("%s (%s): %v: %s", f.Engine, f.Language, f.Err, f.Output)
	}
	return fmt.Sprintf("%s (%s): %v", f.Engine, f.Language, f.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (f *EngineFault) Unwrap() error {
	return f.Err
}

// Message is the text carried by the synthetic issue for this fault.
func (f *EngineFault) Message() string {
	if f.Output != "" {
		return fmt.Sprintf("%s error: %v: %s", f.Engine, f.Err, f.Output)
	}
	return fmt.Sprintf("%s error: %v", f.Engine, f.Err)
}
