// Package storage provides ledger.Storage backends.
//
// MemoryStorage keeps a bounded number of entries and is intended for
// development and tests. SQLiteStorage persists entries in a local database
// file using the pure-Go modernc.org/sqlite driver.
package storage
