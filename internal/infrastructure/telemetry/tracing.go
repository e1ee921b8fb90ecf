package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of every span the service starts
const TracerName = "pdf-engine"

// Span attribute keys shared by the print service and the engines.
// AttrEngine and AttrEntityType are declared with the render metrics.
const (
	AttrTemplateID = attribute.Key("print.template_id")
	AttrEntityID   = attribute.Key("print.entity_id")
	AttrPDFSize    = attribute.Key("pdf.size_bytes")
)

// StartSpan starts a span on the global tracer provider. The span is a no-op
// until a provider has been installed with NewTracerProvider.
//
//	ctx, span := telemetry.StartSpan(ctx, "gotenberg.render")
//	defer func() { telemetry.Finish(span, err) }()
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, name, opts...)
}

// Finish ends span. A non-nil err is recorded as an exception event and
// sets the error status, otherwise the span is marked Ok.
func Finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// Event adds a named event carrying attrs to span.
func Event(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
