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
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// maxFaultOutput caps the stderr text carried into a synthetic issue.
const maxFaultOutput = 2048

// statFile checks that path names a regular, readable file.
func statFile(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileNotFound, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrInvalidInput, path)
	}
	return info, nil
}

// writeTempJSON writes v to a fresh temp file and returns its path.
// The caller removes the file.
func writeTempJSON(pattern string, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal engine config: %w", err)
	}

	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	path := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("closing temp file: %w", err)
	}
	return path, nil
}

// stderrText trims engine stderr for inclusion in a fault.
func stderrText(result *ExecResult) string {
	if result == nil {
		return ""
	}
	text := strings.TrimSpace(string(result.Stderr))
	if len(text) > maxFaultOutput {
		text = text[:maxFaultOutput] + "..."
	}
	return text
}

// isBlank reports whether engine output is empty or whitespace.
func isBlank(data []byte) bool {
	return len(bytes.TrimSpace(data)) == 0
}

// lookupEngine returns the engine config or a fault for a missing one.
func lookupEngine(registry *Registry, name, display string, language Language) (*EngineConfig, *EngineFault) {
	cfg := registry.Get(name)
	if cfg == nil {
		return nil, NewEngineFault(display, language,
			fmt.Errorf("%w: no launch settings for %s", ErrEngineNotInstalled, name))
	}
	return cfg, nil
}
