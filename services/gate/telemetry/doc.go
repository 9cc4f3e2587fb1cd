// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry initializes OpenTelemetry tracing and metrics for lintgate.
//
// OTel is the abstraction layer: gate code uses otel.Tracer and otel.Meter
// directly, and this package only decides where the data goes.
//
// # Exporters
//
//	| Signal  | Values                        | Default |
//	|---------|-------------------------------|---------|
//	| traces  | none, stdout, otlp            | none    |
//	| metrics | none, stdout, prometheus      | none    |
//
// Hook invocations are short-lived, so both default to none. The serve
// command usually enables prometheus and mounts MetricsHandler at /metrics.
//
// # Usage
//
//	shutdown, err := telemetry.Init(ctx, cfg)
//	if err != nil {
//	    return fmt.Errorf("init telemetry: %w", err)
//	}
//	defer shutdown(context.Background())
package telemetry
