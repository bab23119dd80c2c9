// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package mcp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
)

// JSONRPCVersion is the JSON-RPC version used by MCP.
const JSONRPCVersion = "2.0"

// MaxMessageSize bounds a single input line.
const MaxMessageSize = 8 << 20

// =============================================================================
// JSON-RPC MESSAGE TYPES
// =============================================================================

// Request is an incoming JSON-RPC request or notification.
type Request struct {
	// JSONRPC is the protocol version, always "2.0".
	JSONRPC string `json:"jsonrpc"`

	// ID is the raw request identifier. Absent for notifications.
	ID json.RawMessage `json:"id,omitempty"`

	// Method is the method to invoke.
	Method string `json:"method"`

	// Params contains the method parameters.
	Params json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the request carries no id.
func (r *Request) IsNotification() bool {
	return len(r.ID) == 0
}

// Response is an outgoing JSON-RPC response.
type Response struct {
	// JSONRPC is the protocol version, always "2.0".
	JSONRPC string `json:"jsonrpc"`

	// ID echoes the request id; null when it could not be read.
	ID json.RawMessage `json:"id"`

	// Result contains the method result (mutually exclusive with Error).
	Result any `json:"result,omitempty"`

	// Error contains error information (mutually exclusive with Result).
	Error *RPCError `json:"error,omitempty"`
}

// =============================================================================
// CODEC
// =============================================================================

// Codec reads and writes newline-delimited JSON-RPC messages.
//
// Thread Safety:
//
//	ReadMessage must be called from a single goroutine. WriteMessage is
//	safe for concurrent use.
type Codec struct {
	reader  *bufio.Reader
	writer  io.Writer
	writeMu sync.Mutex
	closed  bool
}

// NewCodec creates a codec over r and w.
func NewCodec(r io.Reader, w io.Writer) *Codec {
	return &Codec{
		reader: bufio.NewReaderSize(r, 64*1024),
		writer: w,
	}
}

// ReadMessage returns the next non-empty line without its terminator.
//
// Outputs:
//
//	[]byte - The raw message
//	error - io.EOF at end of input, ErrMessageTooLarge for an oversized
//	        line (the line is consumed), or a read error
func (c *Codec) ReadMessage() ([]byte, error) {
	for {
		line, err := c.readLine()
		if err != nil {
			return nil, err
		}
		line = bytes.TrimSpace(line)
		if len(line) > 0 {
			return line, nil
		}
	}
}

func (c *Codec) readLine() ([]byte, error) {
	var buf []byte
	tooLarge := false
	for {
		chunk, err := c.reader.ReadSlice('\n')
		if !tooLarge {
			if len(buf)+len(chunk) > MaxMessageSize {
				tooLarge = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}

		switch {
		case err == nil:
			if tooLarge {
				return nil, ErrMessageTooLarge
			}
			return buf, nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			if tooLarge {
				return nil, ErrMessageTooLarge
			}
			if len(buf) > 0 {
				return buf, nil
			}
			return nil, io.EOF
		default:
			return nil, err
		}
	}
}

// WriteMessage marshals v and writes it as one line.
func (c *Codec) WriteMessage(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	data = append(data, '\n')

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.closed {
		return ErrCodecClosed
	}
	if _, err := c.writer.Write(data); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// Close stops further writes. The underlying streams are left open.
func (c *Codec) Close() {
	c.writeMu.Lock()
	c.closed = true
	c.writeMu.Unlock()
}
