// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package telemetry

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestHandlerSpanRunsFn(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	h := &Handler{tracer: tp.Tracer("test")}

	ran := false
	h.Span(context.Background(), "sensor.hello_receipt", func(context.Context) {
		ran = true
	})
	if !ran {
		t.Fatal("Span did not invoke fn")
	}

	spans := recorder.Ended()
	if len(spans) != 1 || spans[0].Name() != "sensor.hello_receipt" {
		t.Fatalf("expected one span named sensor.hello_receipt, got %v", spans)
	}
}

func TestHandlerSpanErrRecordsError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	h := &Handler{tracer: tp.Tracer("test")}
	want := errors.New("boom")

	err := h.SpanErr(context.Background(), "border.command_receipt", func(context.Context) error {
		return want
	})
	if err != want {
		t.Fatalf("got err %v, want %v", err, want)
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected one span, got %d", len(spans))
	}
	if spans[0].Status().Code != codes.Error {
		t.Fatalf("expected error status, got %v", spans[0].Status())
	}
}

func TestNilHandlerStillRunsFn(t *testing.T) {
	var h *Handler
	ran := false
	h.Span(context.Background(), "x", func(context.Context) { ran = true })
	if !ran {
		t.Fatal("nil Handler.Span must still invoke fn")
	}
}
