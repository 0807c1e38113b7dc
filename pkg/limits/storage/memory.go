package storage

import (
	"time"

	"github.com/ammario/tlru"
)

// Defaults for MemoryStoreConfig.
const (
	DefaultMaxEntries = 100000
	DefaultTTL        = 24 * time.Hour
)

// MemoryStore implements Store with a size-bounded, time-expiring LRU cache.
type MemoryStore struct {
	cache *tlru.Cache[string, *Record]
	ttl   time.Duration
}

// MemoryStoreConfig configures the memory store.
type MemoryStoreConfig struct {
	// MaxEntries is the maximum number of user records kept. The least
	// recently used record is evicted when the limit is reached.
	// Default: 100,000
	MaxEntries int

	// TTL is how long an untouched record is kept.
	// Default: 24 hours
	TTL time.Duration
}

// NewMemoryStore creates a new in-memory record store.
func NewMemoryStore(cfg MemoryStoreConfig) *MemoryStore {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}

	return &MemoryStore{
		cache: tlru.New[string](tlru.ConstantCost[*Record], cfg.MaxEntries),
		ttl:   cfg.TTL,
	}
}

// Get returns the record for userID, creating and storing an empty one if
// none exists.
func (m *MemoryStore) Get(userID string) *Record {
	if rec, _, ok := m.cache.Get(userID); ok {
		return rec
	}
	rec := &Record{}
	m.cache.Set(userID, rec, m.ttl)
	return rec
}

// Touch stores rec for userID and extends its expiry by the store TTL.
func (m *MemoryStore) Touch(userID string, rec *Record) {
	m.cache.Set(userID, rec, m.ttl)
}

// Peek returns the record for userID without creating one.
func (m *MemoryStore) Peek(userID string) (*Record, bool) {
	rec, _, ok := m.cache.Get(userID)
	return rec, ok
}
