// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package telemetry wires an OpenTelemetry tracer into a node's event
// loop, grounded on getployz-ployz/cmd/ployz's
// sdktrace.NewTracerProvider()/otel.SetTracerProvider(tp) bring-up and the
// span-per-step shape of its pkg/sdk/telemetry.Operation.RunStep. Spans
// exist for offline trace inspection in the simulator (cmd/waternode sim);
// a real node build can run with a no-op tracer at effectively zero cost.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Provider owns the process-wide tracer provider and its shutdown.
type Provider struct {
	tp *sdktrace.TracerProvider
}

// NewProvider creates a Provider and installs it as the global tracer
// provider, mirroring cmd/ployz's main().
func NewProvider(opts ...sdktrace.TracerProviderOption) *Provider {
	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	return &Provider{tp: tp}
}

// Shutdown flushes and releases the tracer provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.tp == nil {
		return nil
	}
	return p.tp.Shutdown(ctx)
}

// Tracer names are one per role, so spans group naturally by which event
// loop produced them.
const (
	TracerBorder      = "waternet/node/border"
	TracerComputation = "waternet/node/computation"
	TracerSensor      = "waternet/node/sensor"
)

// Handler wraps one role's dispatch of inbound events (HELLO receipt,
// sensor receipt, command receipt) in a span, for offline trace
// inspection. It is a thin wrapper, not a generic step-tree like
// getployz-ployz's Operation: a node's event loop has no sub-steps to
// nest, just one span per dispatched handler call.
type Handler struct {
	tracer trace.Tracer
}

// NewHandler creates a Handler using the named tracer from the global
// tracer provider (or a no-op tracer if telemetry was never configured).
func NewHandler(tracerName string) *Handler {
	return &Handler{tracer: otel.Tracer(tracerName)}
}

// Span runs fn inside a span named spanName and ends the span when fn
// returns. fn reports no error; SpanErr is the variant that records one.
func (h *Handler) Span(ctx context.Context, spanName string, fn func(context.Context)) {
	if h == nil || h.tracer == nil {
		fn(ctx)
		return
	}
	spanCtx, span := h.tracer.Start(ctx, spanName)
	defer span.End()
	fn(spanCtx)
}

// SpanErr is Span for handlers that can fail; the error, if any, is
// recorded on the span and returned to the caller.
func (h *Handler) SpanErr(ctx context.Context, spanName string, fn func(context.Context) error) error {
	if h == nil || h.tracer == nil {
		return fn(ctx)
	}
	spanCtx, span := h.tracer.Start(ctx, spanName)
	defer span.End()
	err := fn(spanCtx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
