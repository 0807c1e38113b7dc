// Package storage holds the per-user rate limit records.
//
// # Overview
//
// Every user that sends an analysis request gets a Record, created lazily on
// the first request. A Record holds the user's sliding request window and
// daily request counter.
//
// Records live in memory only. MemoryStore bounds the number of records with
// an LRU capacity and expires records that have not been touched for a TTL,
// so the store does not grow with every user ever seen:
//
//	store := storage.NewMemoryStore(storage.MemoryStoreConfig{
//	    MaxEntries: 100000,
//	    TTL:        24 * time.Hour,
//	})
//
//	rec := store.Get("alice")
//	rec.Window.Record(now)
//	store.Touch("alice", rec)
//
// # Thread Safety
//
// Store methods are safe for concurrent use. The Record values they return
// are not; callers serialize access to a record themselves.
package storage
