// Package health provides liveness and readiness probes.
//
// Liveness only reports that the process is serving HTTP. Readiness runs
// every registered check concurrently, each bounded by the checker's timeout,
// and reports 503 if any fails. The gateway registers checks for the Gemini
// provider configuration and the usage ledger.
package health
