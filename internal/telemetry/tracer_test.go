// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package telemetry

import (
	"context"
	"testing"
)

func TestNewProviderDisabledReturnsNoop(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown on noop provider: %v", err)
	}
}

func TestNewProviderRejectsUnknownExporter(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Enabled: true, ExporterType: "carrier-pigeon"})
	if err == nil {
		t.Fatalf("expected error for unsupported exporter type")
	}
}

func TestTracerReturnsNonNil(t *testing.T) {
	if Tracer("reservation-planner") == nil {
		t.Fatalf("expected non-nil tracer")
	}
}
