package storage

import (
	"context"
	"slices"
	"sync"

	"vadapro/analyzer/pkg/ledger"
)

// DefaultMaxRecords is the MemoryStorage capacity used when none is given.
const DefaultMaxRecords = 10000

// MemoryStorage implements ledger.Storage in memory. When full, the oldest
// stored entry is dropped.
type MemoryStorage struct {
	entries    []*ledger.Entry
	maxRecords int
	mu         sync.RWMutex
}

// NewMemoryStorage creates an in-memory backend holding at most maxRecords
// entries.
func NewMemoryStorage(maxRecords int) *MemoryStorage {
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}
	return &MemoryStorage{maxRecords: maxRecords}
}

// Store keeps a copy of entry.
func (s *MemoryStorage) Store(ctx context.Context, entry *ledger.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *entry
	s.entries = append(s.entries, &c)
	if over := len(s.entries) - s.maxRecords; over > 0 {
		s.entries = slices.Delete(s.entries, 0, over)
	}
	return nil
}

// Query returns copies of the matching entries, newest first.
func (s *MemoryStorage) Query(ctx context.Context, q *ledger.Query) ([]*ledger.Entry, error) {
	s.mu.RLock()
	matched := s.match(q)
	s.mu.RUnlock()

	slices.SortStableFunc(matched, func(a, b *ledger.Entry) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if q != nil {
		start := min(q.Offset, len(matched))
		matched = matched[start:]
		if q.Limit > 0 && q.Limit < len(matched) {
			matched = matched[:q.Limit]
		}
	}
	return matched, nil
}

// Count returns the number of matching entries.
func (s *MemoryStorage) Count(ctx context.Context, q *ledger.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, e := range s.entries {
		if q.Matches(e) {
			n++
		}
	}
	return n, nil
}

// Summarize aggregates the matching entries.
func (s *MemoryStorage) Summarize(ctx context.Context, q *ledger.Query) (*ledger.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := &ledger.Summary{}
	for _, e := range s.entries {
		if q.Matches(e) {
			sum.Add(e)
		}
	}
	return sum, nil
}

// Delete removes the matching entries.
func (s *MemoryStorage) Delete(ctx context.Context, q *ledger.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.entries)
	s.entries = slices.DeleteFunc(s.entries, q.Matches)
	return int64(before - len(s.entries)), nil
}

// Close is a no-op.
func (s *MemoryStorage) Close() error {
	return nil
}

func (s *MemoryStorage) match(q *ledger.Query) []*ledger.Entry {
	var out []*ledger.Entry
	for _, e := range s.entries {
		if q.Matches(e) {
			c := *e
			out = append(out, &c)
		}
	}
	return out
}
