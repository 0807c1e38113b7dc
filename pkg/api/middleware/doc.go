// Package middleware provides the HTTP middleware chain for the analysis
// API: request IDs, user identity, structured access logs with metrics,
// and panic recovery.
//
// Example:
//
//	r := chi.NewRouter()
//	r.Use(middleware.Recovery)
//	r.Use(middleware.RequestID)
//	r.Use(middleware.Identity)
//	r.Use(middleware.Logging(collector))
package middleware
