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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/code-analyzer-server/services/analyzer/lint"
	"github.com/AleutianAI/code-analyzer-server/services/analyzer/telemetry"
	"github.com/AleutianAI/code-analyzer-server/services/analyzer/tools"
)

// ToolCaller lists and runs tools. *tools.Registry implements it.
type ToolCaller interface {
	Definitions() []tools.Definition
	Call(ctx context.Context, name string, args json.RawMessage) (*tools.Result, error)
}

// Server is an MCP server over a line-delimited stream.
//
// Thread Safety: Serve must not be called concurrently on one Server.
type Server struct {
	tools       ToolCaller
	info        Implementation
	logger      *slog.Logger
	initialized atomic.Bool
}

// ServerOption configures the Server.
type ServerOption func(*Server)

// WithServerInfo sets the name and version reported by initialize.
func WithServerInfo(name, version string) ServerOption {
	return func(s *Server) {
		s.info = Implementation{Name: name, Version: version}
	}
}

// WithLogger sets the logger. It must not write to the protocol stream.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a server exposing the given tools.
func NewServer(toolCaller ToolCaller, opts ...ServerOption) *Server {
	s := &Server{
		tools:  toolCaller,
		info:   Implementation{Name: "code-analyzer-server", Version: "dev"},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialized reports whether the client sent notifications/initialized.
func (s *Server) Initialized() bool {
	return s.initialized.Load()
}

type readResult struct {
	msg []byte
	err error
}

// Serve reads requests from r and writes responses to w until the input
// ends or ctx is cancelled.
//
// Description:
//
//	A reader goroutine feeds lines to the loop, which handles them one at
//	a time. Cancelling ctx also cancels the in-flight tool call, which
//	kills any running engine. The goroutine may stay blocked on r after
//	Serve returns if r never unblocks.
//
// Outputs:
//
//	error - nil on end of input or cancellation, otherwise the read or
//	        write error that stopped the loop
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	if ctx == nil {
		return fmt.Errorf("ctx must not be nil")
	}
	codec := NewCodec(r, w)
	defer codec.Close()

	msgs := make(chan readResult)
	go func() {
		for {
			msg, err := codec.ReadMessage()
			select {
			case msgs <- readResult{msg: msg, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil && !errors.Is(err, ErrMessageTooLarge) {
				return
			}
		}
	}()

	s.logger.Info("MCP server listening on stdio",
		slog.String("server", s.info.Name),
		slog.String("version", s.info.Version),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("MCP server shutting down", slog.String("reason", ctx.Err().Error()))
			return nil
		case rr := <-msgs:
			if rr.err != nil {
				switch {
				case errors.Is(rr.err, ErrMessageTooLarge):
					if err := codec.WriteMessage(errorResponse(nil, newRPCError(CodeInvalidRequest, "message exceeds %d bytes", MaxMessageSize))); err != nil {
						return err
					}
					continue
				case errors.Is(rr.err, io.EOF):
					s.logger.Info("MCP input closed")
					return nil
				default:
					return fmt.Errorf("read message: %w", rr.err)
				}
			}

			if resp := s.handleMessage(ctx, rr.msg); resp != nil {
				if err := codec.WriteMessage(resp); err != nil {
					return err
				}
			}
		}
	}
}

// handleMessage decodes and runs one message. It returns nil for
// notifications.
func (s *Server) handleMessage(ctx context.Context, data []byte) *Response {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		if !json.Valid(data) {
			recordRequest("", codeName(CodeParseError))
			s.logger.Warn("Unparsable message", slog.String("error", err.Error()))
			return errorResponse(nil, newRPCError(CodeParseError, "Parse error"))
		}
		recordRequest("", codeName(CodeInvalidRequest))
		return errorResponse(nil, newRPCError(CodeInvalidRequest, "Invalid request"))
	}

	if req.JSONRPC != JSONRPCVersion || req.Method == "" || !validID(req.ID) {
		recordRequest(req.Method, codeName(CodeInvalidRequest))
		id := req.ID
		if !validID(id) {
			id = nil
		}
		return errorResponse(id, newRPCError(CodeInvalidRequest, "Invalid request"))
	}

	if req.IsNotification() {
		s.handleNotification(&req)
		return nil
	}

	start := time.Now()
	result, rpcErr := s.dispatch(ctx, &req)
	status := "ok"
	if rpcErr != nil {
		status = codeName(rpcErr.Code)
	}
	recordRequest(req.Method, status)
	s.logger.Debug("Request handled",
		slog.String("method", req.Method),
		slog.String("status", status),
		slog.Duration("duration", time.Since(start)),
	)

	if rpcErr != nil {
		return errorResponse(req.ID, rpcErr)
	}
	return &Response{JSONRPC: JSONRPCVersion, ID: req.ID, Result: result}
}

func (s *Server) handleNotification(req *Request) {
	switch req.Method {
	case MethodInitialized:
		s.initialized.Store(true)
		s.logger.Info("Client initialized")
	case MethodCancelled:
		// Requests run to completion one at a time; there is nothing to cancel.
		s.logger.Debug("Ignoring cancellation notice")
	default:
		s.logger.Debug("Ignoring notification", slog.String("method", req.Method))
	}
}

func (s *Server) dispatch(ctx context.Context, req *Request) (any, *RPCError) {
	switch req.Method {
	case MethodInitialize:
		return s.initialize(req.Params)
	case MethodPing:
		return struct{}{}, nil
	case MethodToolsList:
		return ListToolsResult{Tools: s.tools.Definitions()}, nil
	case MethodToolsCall:
		return s.callTool(ctx, req.Params)
	default:
		return nil, newRPCError(CodeMethodNotFound, "Method not found: %s", req.Method)
	}
}

func (s *Server) initialize(raw json.RawMessage) (any, *RPCError) {
	var params InitializeParams
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &params); err != nil {
			return nil, newRPCError(CodeInvalidParams, "Invalid initialize params: %v", err)
		}
	}
	s.logger.Info("Client connected",
		slog.String("client", params.ClientInfo.Name),
		slog.String("client_version", params.ClientInfo.Version),
		slog.String("protocol_version", params.ProtocolVersion),
	)
	return InitializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities:    ServerCapabilities{Tools: &ToolsCapability{}},
		ServerInfo:      s.info,
	}, nil
}

// callTool runs tools/call.
//
// Description:
//
//	An unknown tool is a method-not-found error and an unsupported
//	language is an invalid-params error. Any other tool failure is an
//	internal error. Request-level problems the tool reports itself come
//	back as a normal result with isError set.
func (s *Server) callTool(ctx context.Context, raw json.RawMessage) (any, *RPCError) {
	var params CallToolParams
	if len(raw) == 0 {
		return nil, newRPCError(CodeInvalidParams, "Missing tools/call params")
	}
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, newRPCError(CodeInvalidParams, "Invalid tools/call params: %v", err)
	}
	if params.Name == "" {
		return nil, newRPCError(CodeInvalidParams, "Missing tool name")
	}

	callID := uuid.NewString()
	ctx, span := startToolCallSpan(ctx, params.Name, callID)
	defer span.End()

	logger := telemetry.LoggerWithTrace(ctx, s.logger).With(
		slog.String("call_id", callID),
		slog.String("tool", params.Name),
	)
	start := time.Now()

	result, err := s.tools.Call(ctx, params.Name, params.Arguments)
	duration := time.Since(start)

	if err != nil {
		var rpcErr *RPCError
		toolLabel := params.Name
		switch {
		case errors.Is(err, tools.ErrUnknownTool):
			rpcErr = newRPCError(CodeMethodNotFound, "Unknown tool: %s", params.Name)
			toolLabel = "unknown"
		case errors.Is(err, lint.ErrUnsupportedLanguage):
			rpcErr = newRPCError(CodeInvalidParams, "Invalid params: %v", err)
		default:
			rpcErr = newRPCError(CodeInternalError, "Tool %s failed: %v", params.Name, err)
		}
		setToolCallSpanError(span, rpcErr)
		recordToolCall(toolLabel, codeName(rpcErr.Code), duration)
		logger.Warn("Tool call failed",
			slog.Int("code", rpcErr.Code),
			slog.String("error", err.Error()),
			slog.Duration("duration", duration),
		)
		return nil, rpcErr
	}

	outcome := "ok"
	if result.IsError {
		outcome = "tool_error"
	}
	setToolCallSpanResult(span, result.IsError)
	recordToolCall(params.Name, outcome, duration)
	logger.Info("Tool call completed",
		slog.Bool("is_error", result.IsError),
		slog.Duration("duration", duration),
	)
	return textResult(result), nil
}

func errorResponse(id json.RawMessage, rpcErr *RPCError) *Response {
	return &Response{JSONRPC: JSONRPCVersion, ID: id, Error: rpcErr}
}

// validID accepts an absent id, null, a string or a number.
func validID(id json.RawMessage) bool {
	if len(id) == 0 {
		return true
	}
	switch id[0] {
	case '{', '[', 't', 'f':
		return false
	default:
		return true
	}
}
