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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("code-analyzer.mcp")

// ==============================================================================
// Prometheus Metrics
// ==============================================================================

var (
	// requestsTotal counts JSON-RPC requests by method and status
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "code_analyzer_mcp_requests_total",
		Help: "Total MCP requests by method and status",
	}, []string{"method", "status"})

	// toolCallsTotal counts tool calls by tool and outcome
	toolCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "code_analyzer_tool_calls_total",
		Help: "Total tool calls by tool and outcome",
	}, []string{"tool", "outcome"})

	// toolCallDuration tracks tool call latency
	toolCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "code_analyzer_tool_call_duration_seconds",
		Help:    "Tool call duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms to ~80s
	}, []string{"tool"})
)

// knownMethods bounds the method label.
var knownMethods = map[string]bool{
	MethodInitialize: true,
	MethodPing:       true,
	MethodToolsList:  true,
	MethodToolsCall:  true,
}

func recordRequest(method, status string) {
	if !knownMethods[method] {
		method = "other"
	}
	requestsTotal.WithLabelValues(method, status).Inc()
}

func recordToolCall(tool, outcome string, duration time.Duration) {
	toolCallsTotal.WithLabelValues(tool, outcome).Inc()
	toolCallDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

func startToolCallSpan(ctx context.Context, tool, callID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Server.CallTool",
		trace.WithAttributes(
			attribute.String("mcp.tool", tool),
			attribute.String("mcp.call_id", callID),
		),
	)
}

func setToolCallSpanResult(span trace.Span, isError bool) {
	span.SetAttributes(attribute.Bool("mcp.is_error", isError))
}

func setToolCallSpanError(span trace.Span, rpcErr *RPCError) {
	span.SetAttributes(attribute.Int("mcp.error_code", rpcErr.Code))
	span.RecordError(rpcErr)
	span.SetStatus(codes.Error, rpcErr.Message)
}
