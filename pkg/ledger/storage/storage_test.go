package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vadapro/analyzer/pkg/config"
	"vadapro/analyzer/pkg/ledger"
)

var base = time.Date(2030, time.June, 1, 12, 0, 0, 0, time.UTC)

func newSQLite(t *testing.T) *SQLiteStorage {
	t.Helper()

	s, err := NewSQLiteStorage(config.SQLiteConfig{
		Path:         filepath.Join(t.TempDir(), "usage.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		WALMode:      true,
		BusyTimeout:  time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// backends runs fn against every backend.
func backends(t *testing.T, fn func(t *testing.T, s ledger.Storage)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryStorage(100)) })
	t.Run("sqlite", func(t *testing.T) { fn(t, newSQLite(t)) })
}

func entry(i int, user string, status ledger.Status) *ledger.Entry {
	return &ledger.Entry{
		ID:           fmt.Sprintf("entry-%03d", i),
		UserID:       user,
		Model:        "gemini-2.5-flash",
		Status:       status,
		QueryChars:   20,
		InputTokens:  100,
		OutputTokens: 50,
		TotalTokens:  150,
		CreatedAt:    base.Add(time.Duration(i) * time.Minute),
	}
}

func seed(t *testing.T, s ledger.Storage) {
	t.Helper()
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		user := "alice"
		if i%2 == 1 {
			user = "bob"
		}
		status := ledger.StatusSuccess
		if i == 4 {
			status = ledger.StatusError
		}
		require.NoError(t, s.Store(ctx, entry(i, user, status)))
	}
}

func TestStorage_QueryNewestFirst(t *testing.T) {
	backends(t, func(t *testing.T, s ledger.Storage) {
		seed(t, s)

		got, err := s.Query(context.Background(), &ledger.Query{UserID: "alice"})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "entry-004", got[0].ID)
		assert.Equal(t, "entry-002", got[1].ID)
		assert.Equal(t, "entry-000", got[2].ID)
		assert.True(t, got[2].CreatedAt.Equal(base))
	})
}

func TestStorage_Pagination(t *testing.T) {
	backends(t, func(t *testing.T, s ledger.Storage) {
		seed(t, s)

		got, err := s.Query(context.Background(), &ledger.Query{Limit: 2, Offset: 1})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "entry-004", got[0].ID)
		assert.Equal(t, "entry-003", got[1].ID)
	})
}

func TestStorage_TimeRangeAndStatus(t *testing.T) {
	backends(t, func(t *testing.T, s ledger.Storage) {
		seed(t, s)
		ctx := context.Background()

		start := base.Add(2 * time.Minute)
		end := base.Add(4 * time.Minute)
		n, err := s.Count(ctx, &ledger.Query{StartTime: &start, EndTime: &end})
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		n, err = s.Count(ctx, &ledger.Query{Status: ledger.StatusError})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}

func TestStorage_Summarize(t *testing.T) {
	backends(t, func(t *testing.T, s ledger.Storage) {
		seed(t, s)

		sum, err := s.Summarize(context.Background(), &ledger.Query{UserID: "alice"})
		require.NoError(t, err)
		assert.Equal(t, &ledger.Summary{
			Requests:     3,
			Errors:       1,
			InputTokens:  300,
			OutputTokens: 150,
			TotalTokens:  450,
		}, sum)
	})
}

func TestStorage_Delete(t *testing.T) {
	backends(t, func(t *testing.T, s ledger.Storage) {
		seed(t, s)
		ctx := context.Background()

		cutoff := base.Add(time.Minute)
		deleted, err := s.Delete(ctx, &ledger.Query{EndTime: &cutoff})
		require.NoError(t, err)
		assert.Equal(t, int64(2), deleted)

		n, err := s.Count(ctx, &ledger.Query{})
		require.NoError(t, err)
		assert.Equal(t, int64(4), n)
	})
}

func TestStorage_RoundTripsFields(t *testing.T) {
	backends(t, func(t *testing.T, s ledger.Storage) {
		ctx := context.Background()
		want := &ledger.Entry{
			ID:           "e1",
			RequestID:    "req-1",
			UserID:       "carol",
			Model:        "gemini-2.5-flash",
			Status:       ledger.StatusError,
			ErrorType:    "SERVER_ERROR",
			ErrorMessage: "upstream failed",
			QueryChars:   42,
			FileBacked:   true,
			Queued:       true,
			QueueWaitMs:  1500,
			LatencyMs:    800,
			CreatedAt:    base,
		}
		require.NoError(t, s.Store(ctx, want))

		got, err := s.Query(ctx, &ledger.Query{UserID: "carol"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.True(t, got[0].CreatedAt.Equal(want.CreatedAt))
		got[0].CreatedAt = want.CreatedAt
		assert.Equal(t, want, got[0])
	})
}

func TestMemoryStorage_DropsOldest(t *testing.T) {
	s := NewMemoryStorage(3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Store(ctx, entry(i, "alice", ledger.StatusSuccess)))
	}

	got, err := s.Query(ctx, nil)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "entry-004", got[0].ID)
	assert.Equal(t, "entry-002", got[2].ID)
}

func TestOpen(t *testing.T) {
	s, err := Open(&config.LedgerConfig{Backend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStorage{}, s)

	s, err = Open(&config.LedgerConfig{
		Backend: "sqlite",
		SQLite:  config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "nested", "usage.db")},
	})
	require.NoError(t, err)
	defer s.Close()
	assert.IsType(t, &SQLiteStorage{}, s)

	_, err = Open(&config.LedgerConfig{Backend: "postgres"})
	assert.Error(t, err)
}
