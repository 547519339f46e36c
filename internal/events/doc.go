// Package events provides the paired start/end span instrumentation used by
// the query engine. A Tracer opens a span, hands back an opaque correlation
// ID, and later closes the span with a result payload; closing happens on
// failure paths too, so observability never loses a failure's existence or
// timing. The tracer is passed explicitly rather than held as ambient global
// state, and supports an optional OpenTelemetry bridge.
package events
