package otel

import (
	"context"
	"errors"
	"testing"

	"github.com/results-hub/results-hub/internal/config"
	"github.com/results-hub/results-hub/internal/logging"
)

func TestSetupOTEL(t *testing.T) {
	logger := logging.FallbackLogger()

	t.Run("disabled config returns no shutdown", func(t *testing.T) {
		shutdown, err := SetupOTEL(context.Background(), &config.OTELConfig{Enabled: false}, "0.0.1", logger)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if shutdown != nil {
			t.Fatalf("Expected a nil shutdown for disabled OTEL")
		}
	})

	t.Run("stdout tracing starts and shuts down", func(t *testing.T) {
		conf := &config.OTELConfig{Enabled: true, EnableTracing: true, ExporterType: ExporterTypeStdout}
		shutdown, err := SetupOTEL(context.Background(), conf, "0.0.1", logger)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if shutdown == nil {
			t.Fatalf("Expected a shutdown function")
		}
		if err := shutdown(context.Background()); err != nil {
			t.Fatalf("Shutdown failed: %v", err)
		}
	})

	t.Run("invalid exporter type fails", func(t *testing.T) {
		conf := &config.OTELConfig{Enabled: true, EnableTracing: true, ExporterType: "carrier-pigeon"}
		if _, err := SetupOTEL(context.Background(), conf, "0.0.1", logger); err == nil {
			t.Fatalf("Expected an error for an invalid exporter type")
		}
	})

	t.Run("secure grpc exporter without TLS fails", func(t *testing.T) {
		conf := &config.OTELConfig{Enabled: true, EnableTracing: true, ExporterType: ExporterTypeOTLPGRPC, ExporterEndpoint: "localhost:4317"}
		if _, err := SetupOTEL(context.Background(), conf, "0.0.1", logger); err == nil {
			t.Fatalf("Expected an error for a missing TLS config")
		}
	})
}

func TestNewSampler(t *testing.T) {
	cases := map[float64]string{
		1.0: "AlwaysOnSampler",
		2.0: "AlwaysOnSampler",
		0.0: "AlwaysOffSampler",
		-1:  "AlwaysOffSampler",
		0.5: "TraceIDRatioBased{0.5}",
	}
	for ratio, want := range cases {
		if got := newSampler(ratio).Description(); got != want {
			t.Fatalf("newSampler(%v) = %s, want %s", ratio, got, want)
		}
	}
}

func TestWithSpan(t *testing.T) {
	failure := errors.New("boom")
	conf := &config.Config{OTEL: &config.OTELConfig{Enabled: true}}

	for _, serviceConfig := range []*config.Config{nil, conf} {
		called := false
		err := WithSpan(context.Background(), serviceConfig, "test", "op", map[string]string{"id": "1", "empty": ""}, func(ctx context.Context) error {
			called = true
			return failure
		})
		if !called {
			t.Fatalf("Expected the span function to be called")
		}
		if !errors.Is(err, failure) {
			t.Fatalf("Expected the function error to be returned, got %v", err)
		}
	}
}
