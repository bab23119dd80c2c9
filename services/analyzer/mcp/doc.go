// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package mcp serves the analysis tools over the Model Context Protocol.
//
// Messages are JSON-RPC 2.0, one per line, on a byte stream (normally the
// process's stdin and stdout). The server handles initialize, ping,
// tools/list and tools/call, and answers requests one at a time in
// arrival order. Notifications are never answered.
//
// # Usage
//
//	srv := mcp.NewServer(registry, mcp.WithServerInfo("code-analyzer-server", "1.0.0"))
//	if err := srv.Serve(ctx, os.Stdin, os.Stdout); err != nil {
//	    return err
//	}
//
// Nothing but protocol messages may be written to the output stream.
package mcp
