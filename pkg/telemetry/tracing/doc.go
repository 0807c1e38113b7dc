// Package tracing provides OpenTelemetry tracing for the analysis gateway.
//
// When telemetry.tracing.enabled is false, New returns a tracer backed by the
// noop provider so callers can create spans unconditionally.
//
// Spans emitted:
//
//   - analysis.execute: one analysis request, including prompt construction
//   - gemini.generate_content: the provider call itself
//   - gemini.upload_file: a file registration
//   - queue.drain: one drain pass over the request queue
//
// Spans are exported over OTLP/gRPC to telemetry.tracing.endpoint.
package tracing
