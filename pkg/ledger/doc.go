// Package ledger records one entry per executed analysis call.
//
// The ledger is an audit trail of provider usage. It complements the
// in-memory counters in package limits, which only cover the current minute
// and day, with a durable per-user history that can be queried and
// summarized.
//
// # Architecture
//
//   - storage: the memory and SQLite backends
//   - recorder: asynchronous writes so recording never blocks a response
//   - retention: scheduled pruning of old entries
//
// # Usage
//
//	store, err := storage.Open(&cfg.Ledger)
//	rec := recorder.New(store, recorder.ConfigFrom(&cfg.Ledger))
//	defer rec.Close()
//
//	rec.Record(&ledger.Entry{UserID: "u1", Model: "gemini-2.5-flash", ...})
//
//	entries, err := store.Query(ctx, &ledger.Query{UserID: "u1", Limit: 50})
package ledger
