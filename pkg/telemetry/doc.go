// Package telemetry groups the gateway's observability packages.
//
//   - logging: structured slog logging with secret redaction and
//     request-scoped attributes
//   - metrics: Prometheus collectors for HTTP, admission, queue and provider
//     activity
//   - tracing: OpenTelemetry spans around provider calls
//   - health: liveness, readiness and version endpoints
package telemetry
