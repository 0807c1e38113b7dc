package storage

import (
	"fmt"

	"vadapro/analyzer/pkg/config"
	"vadapro/analyzer/pkg/ledger"
)

// Open creates the backend selected by cfg.Backend.
func Open(cfg *config.LedgerConfig) (ledger.Storage, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryStorage(cfg.Memory.MaxRecords), nil
	case "sqlite", "":
		return NewSQLiteStorage(cfg.SQLite)
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.Backend)
	}
}
