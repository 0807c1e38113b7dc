package api

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"

	"vadapro/analyzer/pkg/analysis"
	"vadapro/analyzer/pkg/ledger"
	"vadapro/analyzer/pkg/limits"
	"vadapro/analyzer/pkg/providers"
	"vadapro/analyzer/pkg/queue"
	"vadapro/analyzer/pkg/telemetry/metrics"
)

// Defaults.
const (
	DefaultMaxWait        = 90 * time.Second
	DefaultMaxBodyBytes   = 10 << 20
	DefaultMaxUploadBytes = 20 << 20
)

// Limiter is the admission controller.
type Limiter interface {
	CheckRateLimit(userID string) limits.Decision
	Stats() limits.Stats
}

// Executor runs admitted requests.
type Executor interface {
	Execute(ctx context.Context, req *analysis.Request) (*analysis.Result, error)
	Model() string
}

// Queue holds soft-limited requests until a drain admits them.
type Queue interface {
	Enqueue(ctx context.Context, req *analysis.Request) (*queue.Entry, error)
	Await(ctx context.Context, entry *queue.Entry) (*analysis.Result, error)
	Len() int
}

// Uploader registers datasets with the provider.
type Uploader interface {
	UploadFile(ctx context.Context, req *providers.UploadRequest) (*providers.FileRef, error)
}

// Config configures a Handler.
type Config struct {
	Limiter  Limiter
	Executor Executor
	Queue    Queue

	// Uploader enables POST /ai/files when set.
	Uploader Uploader

	// Ledger enables GET /ai/usage/history when set.
	Ledger ledger.Storage

	// OnEnqueue is called after a request is queued, typically to start a
	// drain right away.
	OnEnqueue func()

	// MaxWait bounds how long a caller waits on a queued request.
	MaxWait time.Duration

	MaxBodyBytes   int64
	MaxUploadBytes int64

	Metrics *metrics.Collector
	Logger  *slog.Logger
}

// Handler serves the /ai routes.
type Handler struct {
	limiter        Limiter
	executor       Executor
	queue          Queue
	uploader       Uploader
	ledger         ledger.Storage
	onEnqueue      func()
	maxWait        time.Duration
	maxBodyBytes   int64
	maxUploadBytes int64
	metrics        *metrics.Collector
	logger         *slog.Logger
}

// New creates a Handler.
func New(cfg Config) (*Handler, error) {
	switch {
	case cfg.Limiter == nil:
		return nil, errors.New("limiter is required")
	case cfg.Executor == nil:
		return nil, errors.New("executor is required")
	case cfg.Queue == nil:
		return nil, errors.New("queue is required")
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = DefaultMaxWait
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Handler{
		limiter:        cfg.Limiter,
		executor:       cfg.Executor,
		queue:          cfg.Queue,
		uploader:       cfg.Uploader,
		ledger:         cfg.Ledger,
		onEnqueue:      cfg.OnEnqueue,
		maxWait:        cfg.MaxWait,
		maxBodyBytes:   cfg.MaxBodyBytes,
		maxUploadBytes: cfg.MaxUploadBytes,
		metrics:        cfg.Metrics,
		logger:         cfg.Logger.With("component", "api"),
	}, nil
}

// Register mounts the routes on r under /ai.
func (h *Handler) Register(r chi.Router) {
	r.Route("/ai", func(r chi.Router) {
		r.Post("/analyze", h.Analyze)
		r.Get("/usage", h.Usage)
		r.Get("/model", h.Model)
		if h.ledger != nil {
			r.Get("/usage/history", h.UsageHistory)
		}
		if h.uploader != nil {
			r.Post("/files", h.UploadFile)
		}
	})
}
