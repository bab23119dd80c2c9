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
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("code-analyzer.lint")
	meter  = otel.Meter("code-analyzer.lint")
)

var (
	analysisLatency metric.Float64Histogram
	analysisTotal   metric.Int64Counter
	issuesReported  metric.Int64Histogram
	engineFaults    metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics creates the instruments on first use.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		analysisLatency, err = meter.Float64Histogram(
			"analysis_duration_seconds",
			metric.WithDescription("Duration of single-file analyses"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		analysisTotal, err = meter.Int64Counter(
			"analysis_total",
			metric.WithDescription("Total number of analyses"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		issuesReported, err = meter.Int64Histogram(
			"analysis_issues_reported",
			metric.WithDescription("Issues reported per analysis"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		engineFaults, err = meter.Int64Counter(
			"analysis_engine_faults_total",
			metric.WithDescription("Analyses that ended in an engine fault"),
		)
		if err != nil {
			metricsErr = err
		}
	})
	return metricsErr
}

func startAnalyzeSpan(ctx context.Context, language Language, engine, filePath string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Analyzer.Analyze",
		trace.WithAttributes(
			attribute.String("analysis.language", language.String()),
			attribute.String("analysis.engine", engine),
			attribute.String("analysis.file_path", filePath),
		),
	)
}

func setAnalyzeSpanResult(span trace.Span, report *Report, fault *EngineFault) {
	span.SetAttributes(
		attribute.Int("analysis.issues_count", report.IssuesCount),
		attribute.Int("analysis.error_count", report.ErrorCount()),
		attribute.Int("analysis.fixable_count", report.FixableCount()),
		attribute.Bool("analysis.engine_fault", fault != nil),
	)
	if fault != nil {
		span.RecordError(fault)
		span.SetStatus(codes.Error, fault.Message())
	}
}

func recordAnalysisMetrics(ctx context.Context, language Language, engine string, duration time.Duration, report *Report, faulted bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("language", language.String()),
		attribute.String("engine", engine),
		attribute.Bool("faulted", faulted),
	)

	analysisLatency.Record(ctx, duration.Seconds(), attrs)
	analysisTotal.Add(ctx, 1, attrs)

	if faulted {
		engineFaults.Add(ctx, 1, metric.WithAttributes(
			attribute.String("engine", engine),
		))
		return
	}
	issuesReported.Record(ctx, int64(report.IssuesCount), metric.WithAttributes(
		attribute.String("language", language.String()),
	))
}
