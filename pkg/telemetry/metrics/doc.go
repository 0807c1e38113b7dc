// Package metrics provides Prometheus metrics for the analysis gateway.
//
// # Metrics Categories
//
//   - Admission: limiter decisions by outcome and reason, token and request
//     counters of the current usage windows
//   - Queue: depth, time spent queued, and how entries leave the queue
//   - Provider: Gemini call latency, token consumption, and classified errors
//   - HTTP: request count and duration per route
//
// All metrics live on a private registry exposed through Handler. A nil
// *Collector is valid and records nothing, so components can be built
// without metrics in tests.
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	router.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//	collector.RecordAdmission("allowed", "")
package metrics
