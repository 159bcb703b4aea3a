package otel

import (
	"context"
	"fmt"

	"github.com/results-hub/results-hub/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type SpanFunction func(context.Context) error

// WithSpan runs fn inside a child span named operation when OTEL is enabled.
// Empty attribute values are skipped.
func WithSpan(ctx context.Context, serviceConfig *config.Config, component string, operation string, attributes map[string]string, fn SpanFunction) error {
	if serviceConfig == nil || !serviceConfig.IsOTELEnabled() {
		return fn(ctx)
	}

	spanCtx, span := otel.Tracer(component).Start(ctx, operation)
	defer span.End()

	var atts []attribute.KeyValue
	for key, value := range attributes {
		if value != "" {
			atts = append(atts, attribute.String(key, value))
		}
	}
	span.SetAttributes(atts...)

	err := fn(spanCtx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, fmt.Sprintf("%s failed", operation))
	} else {
		span.SetStatus(codes.Ok, fmt.Sprintf("%s successful", operation))
	}
	return err
}

// SpanFromContext exposes the active span so callers can add events.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}
