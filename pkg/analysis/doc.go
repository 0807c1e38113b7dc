// Package analysis turns an analysis request into a provider call.
//
// The Executor sanitizes the request's structured fields, sizes the
// expected answer from the query, builds either a compact file-backed
// prompt or a fuller text prompt, calls the provider and accounts the
// reported tokens against the global budget. Classify maps any error the
// admission path can produce to the client-facing ErrorType.
package analysis
