package recorder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vadapro/analyzer/pkg/config"
	"vadapro/analyzer/pkg/ledger"
	"vadapro/analyzer/pkg/ledger/storage"
)

func TestRecorder_WritesEntries(t *testing.T) {
	store := storage.NewMemoryStorage(100)
	r := New(store, DefaultConfig())

	for i := 0; i < 10; i++ {
		require.NoError(t, r.Record(&ledger.Entry{UserID: "alice", TotalTokens: 10, CreatedAt: time.Now()}))
	}
	require.NoError(t, r.Close())

	sum, err := store.Summarize(context.Background(), &ledger.Query{UserID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, int64(10), sum.Requests)
	assert.Equal(t, int64(100), sum.TotalTokens)
}

func TestRecorder_GeneratesID(t *testing.T) {
	store := storage.NewMemoryStorage(10)
	r := New(store, nil)

	e := &ledger.Entry{UserID: "bob"}
	require.NoError(t, r.Record(e))
	require.NoError(t, r.Close())

	assert.NotEmpty(t, e.ID)
	got, err := store.Query(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, e.ID, got[0].ID)
}

func TestRecorder_Disabled(t *testing.T) {
	store := storage.NewMemoryStorage(10)
	r := New(store, &Config{Enabled: false})

	require.NoError(t, r.Record(&ledger.Entry{UserID: "bob"}))
	require.NoError(t, r.Close())

	n, err := store.Count(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRecorder_RecordAfterClose(t *testing.T) {
	r := New(storage.NewMemoryStorage(10), DefaultConfig())
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	err := r.Record(&ledger.Entry{UserID: "bob"})
	var recErr *ledger.RecorderError
	require.ErrorAs(t, err, &recErr)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestConfigFrom(t *testing.T) {
	disabled := false
	c := ConfigFrom(&config.LedgerConfig{Enabled: &disabled, AsyncBuffer: 7})
	assert.False(t, c.Enabled)
	assert.Equal(t, 7, c.AsyncBuffer)
	assert.Equal(t, 5*time.Second, c.WriteTimeout)

	c = ConfigFrom(&config.LedgerConfig{})
	assert.True(t, c.Enabled)
}
