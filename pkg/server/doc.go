// Package server provides the HTTP server of the analysis gateway.
//
// It ties the API handlers, health endpoints and Prometheus endpoint to a
// chi router and manages the listener's lifecycle.
//
// # Basic Usage
//
//	srv, err := server.New(server.Options{
//	    Server:    &cfg.Server,
//	    Telemetry: &cfg.Telemetry,
//	    API:       apiHandler,
//	    Health:    checker,
//	    Metrics:   collector,
//	})
//	if err != nil {
//	    return err
//	}
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
//
// Start blocks until ctx is cancelled, SIGINT or SIGTERM is received, or
// Shutdown is called, then shuts the listener down within
// server.shutdown_timeout.
//
// # Routes
//
//   - POST /ai/analyze, GET /ai/usage, GET /ai/usage/history, GET /ai/model, POST /ai/files
//   - GET /health, GET /ready, GET /version
//   - GET /metrics (when metrics are enabled)
//
// # Middleware Chain
//
// Outermost first: Recovery, RequestID, Identity, Logging, CORS. The /ai
// routes additionally pass a per-IP flood guard when server.ip_rate_limit
// is set.
package server
