// Package otel provides OpenTelemetry instrumentation utilities for the
// storefront server.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for business context used across the application.
// Using shared keys ensures consistent attribute naming in traces.
const (
	AttrCollectionID = attribute.Key("collection.id")
	AttrProductID    = attribute.Key("product.id")
	AttrOrderID      = attribute.Key("order.id")
	AttrAccessLevel  = attribute.Key("access.level")
	AttrAccessType   = attribute.Key("access.type")
	AttrResultCount  = attribute.Key("result.count")
)

// StartSpan starts a new span if the tracer is non-nil, otherwise returns a
// no-op span. This provides graceful degradation when tracing is disabled.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError records an error on a span and sets the span status to error.
// The status description is intentionally generic so that SQL text and
// connection details never appear in trace status.
func RecordError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "operation failed")
	}
}
