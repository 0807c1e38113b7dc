// Package recorder writes ledger entries asynchronously.
package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"vadapro/analyzer/pkg/config"
	"vadapro/analyzer/pkg/ledger"
)

// Config contains configuration for the recorder.
type Config struct {
	// Enabled enables recording. A disabled recorder accepts and discards
	// entries.
	Enabled bool

	// AsyncBuffer is the size of the write channel.
	// Default: 1000
	AsyncBuffer int

	// WriteTimeout bounds a single storage write and how long Record waits
	// for room in a full channel.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		AsyncBuffer:  1000,
		WriteTimeout: 5 * time.Second,
	}
}

// ConfigFrom builds a recorder configuration from the ledger section.
func ConfigFrom(cfg *config.LedgerConfig) *Config {
	c := DefaultConfig()
	c.Enabled = cfg.IsEnabled()
	if cfg.AsyncBuffer > 0 {
		c.AsyncBuffer = cfg.AsyncBuffer
	}
	if cfg.WriteTimeout > 0 {
		c.WriteTimeout = cfg.WriteTimeout
	}
	return c
}

// Recorder hands entries to a background writer so callers never wait on
// storage.
type Recorder struct {
	storage ledger.Storage
	config  *Config
	entries chan *ledger.Entry
	wg      sync.WaitGroup
	done    chan struct{}
	once    sync.Once
	logger  *slog.Logger
}

// New creates a recorder writing to storage and starts its writer.
func New(storage ledger.Storage, cfg *Config) *Recorder {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.AsyncBuffer <= 0 {
		cfg.AsyncBuffer = 1000
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}

	r := &Recorder{
		storage: storage,
		config:  cfg,
		entries: make(chan *ledger.Entry, cfg.AsyncBuffer),
		done:    make(chan struct{}),
		logger:  slog.Default().With("component", "ledger.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("ledger recorder initialized",
		"enabled", cfg.Enabled,
		"async_buffer", cfg.AsyncBuffer,
		"write_timeout", cfg.WriteTimeout,
	)
	return r
}

// Record queues entry for writing. Missing IDs are generated. It returns a
// *ledger.RecorderError if the entry had to be dropped.
func (r *Recorder) Record(entry *ledger.Entry) error {
	if !r.config.Enabled || entry == nil {
		return nil
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	select {
	case <-r.done:
		return &ledger.RecorderError{EntryID: entry.ID, Cause: context.Canceled}
	default:
	}

	timer := time.NewTimer(r.config.WriteTimeout)
	defer timer.Stop()

	select {
	case r.entries <- entry:
		return nil
	case <-timer.C:
		r.logger.Error("ledger channel full, dropping entry",
			"entry_id", entry.ID,
			"channel_capacity", r.config.AsyncBuffer,
		)
		return &ledger.RecorderError{EntryID: entry.ID, Cause: context.DeadlineExceeded}
	case <-r.done:
		r.logger.Warn("recorder shutting down, dropping entry", "entry_id", entry.ID)
		return &ledger.RecorderError{EntryID: entry.ID, Cause: context.Canceled}
	}
}

// Storage returns the backend entries are written to.
func (r *Recorder) Storage() ledger.Storage {
	return r.storage
}

// Close stops the writer after draining queued entries. It does not close
// the storage.
func (r *Recorder) Close() error {
	r.once.Do(func() {
		r.logger.Info("shutting down ledger recorder")
		close(r.done)
		r.wg.Wait()
		r.logger.Info("ledger recorder shut down complete")
	})
	return nil
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case entry := <-r.entries:
			r.write(entry)

		case <-r.done:
			r.logger.Debug("draining ledger channel before shutdown", "pending_count", len(r.entries))
			for {
				select {
				case entry := <-r.entries:
					r.write(entry)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(entry *ledger.Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()
	if err := r.storage.Store(ctx, entry); err != nil {
		r.logger.Error("failed to store ledger entry",
			"entry_id", entry.ID,
			"user_id", entry.UserID,
			"error", err,
		)
		return
	}

	duration := time.Since(start)
	r.logger.Debug("ledger entry recorded",
		"entry_id", entry.ID,
		"user_id", entry.UserID,
		"total_tokens", entry.TotalTokens,
		"duration_ms", duration.Milliseconds(),
	)
	if duration > r.config.WriteTimeout/2 {
		r.logger.Warn("slow ledger write",
			"entry_id", entry.ID,
			"duration_ms", duration.Milliseconds(),
			"threshold_ms", (r.config.WriteTimeout / 2).Milliseconds(),
		)
	}
}
