// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package e2e drives the built code-analyzer binary over real stdio pipes.
package e2e

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
)

var serverBinary string

func TestMain(m *testing.M) {
	if _, err := exec.LookPath("go"); err != nil {
		fmt.Println("go toolchain not on PATH, skipping e2e tests")
		os.Exit(0)
	}

	dir, err := os.MkdirTemp("", "code-analyzer-e2e-*")
	if err != nil {
		fmt.Printf("Failed to create build dir: %v\n", err)
		os.Exit(1)
	}
	name := "code-analyzer"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	serverBinary = filepath.Join(dir, name)

	// Run from test/e2e/, so the command package is two levels up.
	cmd := exec.Command("go", "build", "-o", serverBinary, "../../cmd/code-analyzer")
	if out, err := cmd.CombinedOutput(); err != nil {
		fmt.Printf("Failed to build server: %v\n%s\n", err, out)
		os.RemoveAll(dir)
		os.Exit(1)
	}

	exitCode := m.Run()

	os.RemoveAll(dir)
	os.Exit(exitCode)
}
