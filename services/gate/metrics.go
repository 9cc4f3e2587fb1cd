// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package gate

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for gate operations.
var (
	tracer = otel.Tracer("lintgate.gate")
	meter  = otel.Meter("lintgate.gate")
)

// Metrics for gate operations.
var (
	invocationsTotal metric.Int64Counter
	lintLatency      metric.Float64Histogram
	probeTotal       metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		invocationsTotal, err = meter.Int64Counter(
			"lintgate_invocations_total",
			metric.WithDescription("Total number of handled edit events by final state"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		lintLatency, err = meter.Float64Histogram(
			"lintgate_lint_duration_seconds",
			metric.WithDescription("Duration of lint command runs"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		probeTotal, err = meter.Int64Counter(
			"lintgate_probe_total",
			metric.WithDescription("Total number of environment probes"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// startHandleSpan creates a span for one Handle call.
func startHandleSpan(ctx context.Context, invocationID, toolKind string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Gate.Handle",
		trace.WithAttributes(
			attribute.String("gate.invocation_id", invocationID),
			attribute.String("gate.tool_kind", toolKind),
		),
	)
}

// setHandleSpanResult sets the outcome attributes on a Handle span.
func setHandleSpanResult(span trace.Span, out Outcome) {
	span.SetAttributes(
		attribute.String("gate.state", out.State.String()),
		attribute.String("gate.reason", string(out.Reason)),
		attribute.String("gate.file_path", out.FilePath),
	)
}

// recordInvocation counts a finished Handle call.
func recordInvocation(ctx context.Context, out Outcome) {
	if err := initMetrics(); err != nil {
		return
	}
	invocationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("state", out.State.String()),
		attribute.String("reason", string(out.Reason)),
	))
}

// recordLint records the duration of one lint command run.
func recordLint(ctx context.Context, duration time.Duration, reason Reason) {
	if err := initMetrics(); err != nil {
		return
	}
	lintLatency.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("reason", string(reason)),
	))
}

// recordProbe counts one probe and its answer.
func recordProbe(ctx context.Context, name string, available bool) {
	if err := initMetrics(); err != nil {
		return
	}
	probeTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("probe", name),
		attribute.Bool("available", available),
	))
}
