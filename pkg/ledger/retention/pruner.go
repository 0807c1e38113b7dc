package retention

import (
	"context"
	"log/slog"

	"github.com/coder/quartz"

	"vadapro/analyzer/pkg/config"
	"vadapro/analyzer/pkg/ledger"
)

// Pruner deletes ledger entries older than the retention period.
type Pruner struct {
	storage   ledger.Storage
	config    config.RetentionConfig
	clock     quartz.Clock
	logger    *slog.Logger
	scheduler *Scheduler
}

// NewPruner creates a pruner. A nil clock uses the real clock.
func NewPruner(storage ledger.Storage, cfg config.RetentionConfig, clock quartz.Clock) *Pruner {
	if clock == nil {
		clock = quartz.NewReal()
	}

	p := &Pruner{
		storage: storage,
		config:  cfg,
		clock:   clock,
		logger:  slog.Default().With("component", "ledger.retention"),
	}
	p.scheduler = NewScheduler(p)
	return p
}

// Prune deletes entries created before now minus the retention period and
// returns how many were removed. A negative retention keeps entries forever.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if p.config.Days < 0 {
		p.logger.Debug("retention disabled, nothing pruned")
		return 0, nil
	}

	cutoff := p.clock.Now().AddDate(0, 0, -p.config.Days)
	deleted, err := p.storage.Delete(ctx, &ledger.Query{EndTime: &cutoff})
	if err != nil {
		return 0, &ledger.RetentionError{RetentionDays: p.config.Days, Cause: err}
	}

	if deleted > 0 {
		p.logger.Info("ledger pruning completed",
			"deleted_count", deleted,
			"retention_days", p.config.Days,
			"cutoff_time", cutoff,
		)
	}
	return deleted, nil
}

// Start begins scheduled pruning.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops scheduled pruning and waits for a running prune to finish.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}
