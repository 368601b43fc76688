// Package tracing wraps hub dispatch and per-extension delivery in
// OpenTelemetry spans.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "eventhub-tracer"

// Provider starts spans around hub dispatch and per-extension delivery. The
// zero value is not usable; construct with NewProvider. Its methods take
// plain strings rather than internal/core.Event so that core's traceProvider
// interface and this package never need to import one another.
type Provider struct {
	tracer trace.Tracer
}

// NewProvider constructs a Provider using the global OpenTelemetry tracer
// provider.
func NewProvider() *Provider {
	return &Provider{tracer: otel.Tracer(tracerName)}
}

// StartDispatch opens a span covering preprocessing and fan-out for one
// dispatched event.
func (p *Provider) StartDispatch(ctx context.Context, eventID, eventType, eventSource string) (context.Context, func()) {
	ctx, span := p.tracer.Start(ctx, "hub.dispatch")
	span.SetAttributes(
		attribute.String("event.id", eventID),
		attribute.String("event.type", eventType),
		attribute.String("event.source", eventSource),
	)
	return ctx, func() { span.End() }
}

// StartDeliver opens a span covering delivery of one event to one
// extension's private worker.
func (p *Provider) StartDeliver(ctx context.Context, extensionName, eventID string) (context.Context, func()) {
	ctx, span := p.tracer.Start(ctx, "hub.deliver")
	span.SetAttributes(
		attribute.String("extension", extensionName),
		attribute.String("event.id", eventID),
	)
	return ctx, func() { span.End() }
}
