// SPDX-License-Identifier: AGPL-3.0-or-later
// dabmod - DAB (ETSI EN 300 401) modulator with SFN timestamping
// Copyright (C) 2024-2026 SDRNet
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// The source code is available at <https://github.com/sdrnet/dabmod>

// Package tracing wires an OpenTelemetry TracerProvider (otlptracegrpc
// exporter, always-sample, batched export) and gives the flowgraph scheduler a
// StageSpan helper that opens one span per node run, so per-node wall-clock
// timing is visible in a real tracing backend.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Init builds and installs a TracerProvider exporting to endpoint over
// OTLP/gRPC, returning a shutdown function the caller must invoke before
// exiting. If endpoint is empty, Init leaves the global TracerProvider
// (a no-op one unless something else installed one) unchanged and returns
// a no-op shutdown.
func Init(ctx context.Context, serviceName, endpoint string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptrace.New(ctx, otlptracegrpc.NewClient(
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithEndpoint(endpoint),
	))
	if err != nil {
		return nil, fmt.Errorf("tracing: building OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		attribute.String("service.name", serviceName),
		attribute.String("library.language", "go"),
	))
	if err != nil {
		return nil, fmt.Errorf("tracing: building resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	return provider.Shutdown, nil
}

// Tracer is the scheduler's handle on the installed TracerProvider,
// narrowed to what internal/flowgraph needs.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer returns a Tracer named name, drawn from the currently installed
// global TracerProvider.
func NewTracer(name string) *Tracer {
	return &Tracer{tracer: otel.Tracer(name)}
}

// StageSpan opens one span for a single node's single run() invocation,
// recording stageName as a span attribute. The caller ends the span (via
// the returned end func) once the node's Process call returns.
func (t *Tracer) StageSpan(ctx context.Context, stageName string) (context.Context, func()) {
	spanCtx, span := t.tracer.Start(ctx, "flowgraph.stage",
		trace.WithAttributes(attribute.String("stage.name", stageName)))
	return spanCtx, func() { span.End() }
}
