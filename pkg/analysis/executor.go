package analysis

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/coder/quartz"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"vadapro/analyzer/pkg/ledger"
	"vadapro/analyzer/pkg/providers"
	"vadapro/analyzer/pkg/telemetry/logging"
	"vadapro/analyzer/pkg/telemetry/metrics"
	"vadapro/analyzer/pkg/telemetry/tracing"
)

// DefaultPreviewRows is the number of CSV lines embedded in text prompts.
const DefaultPreviewRows = 20

// TokenRecorder receives the tokens consumed by each completed call.
type TokenRecorder interface {
	RecordTokens(n int64)
}

// LedgerRecorder receives one entry per executed call.
type LedgerRecorder interface {
	Record(entry *ledger.Entry) error
}

// ExecutorConfig configures an Executor.
type ExecutorConfig struct {
	Provider providers.Provider
	Usage    TokenRecorder

	// Optional.
	Ledger      LedgerRecorder
	Tracer      *tracing.Tracer
	Metrics     *metrics.Collector
	Clock       quartz.Clock
	Logger      *slog.Logger
	PreviewRows int
}

// Executor runs admitted analysis requests against the provider.
type Executor struct {
	provider    providers.Provider
	usage       TokenRecorder
	ledger      LedgerRecorder
	tracer      *tracing.Tracer
	metrics     *metrics.Collector
	clock       quartz.Clock
	logger      *slog.Logger
	previewRows int
}

// NewExecutor creates an Executor.
func NewExecutor(cfg ExecutorConfig) (*Executor, error) {
	if cfg.Provider == nil {
		return nil, errors.New("provider is required")
	}
	if cfg.Usage == nil {
		return nil, errors.New("usage recorder is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.PreviewRows <= 0 {
		cfg.PreviewRows = DefaultPreviewRows
	}

	return &Executor{
		provider:    cfg.Provider,
		usage:       cfg.Usage,
		ledger:      cfg.Ledger,
		tracer:      cfg.Tracer,
		metrics:     cfg.Metrics,
		clock:       cfg.Clock,
		logger:      cfg.Logger.With("component", "analysis.executor"),
		previewRows: cfg.PreviewRows,
	}, nil
}

// Model returns the provider's model identifier.
func (e *Executor) Model() string {
	return e.provider.Model()
}

// Execute runs an admitted request.
func (e *Executor) Execute(ctx context.Context, req *Request) (*Result, error) {
	return e.execute(ctx, req, false, 0)
}

// ExecuteQueued runs a request that waited in the queue for waited.
func (e *Executor) ExecuteQueued(ctx context.Context, req *Request, waited time.Duration) (*Result, error) {
	return e.execute(ctx, req, true, waited)
}

func (e *Executor) execute(ctx context.Context, req *Request, queued bool, waited time.Duration) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	model := e.provider.Model()
	sizing := SizeQuery(req.Query)

	ctx, span := e.tracer.Start(ctx, "analysis.execute", trace.WithAttributes(
		attribute.String(tracing.AttrModel, model),
		attribute.String(tracing.AttrUser, req.UserID),
		attribute.Bool(tracing.AttrFileBacked, req.HasFile()),
		attribute.Bool(tracing.AttrQueued, queued),
		attribute.Int(tracing.AttrQueryChars, utf8.RuneCountInString(req.Query)),
		attribute.Bool(tracing.AttrSimpleQuery, sizing.Simple),
		attribute.Int(tracing.AttrMaxWords, sizing.MaxWords),
	))
	defer span.End()

	start := e.clock.Now()
	resp, err := e.provider.Generate(ctx, &providers.GenerateRequest{
		Model: model,
		Parts: e.buildParts(req, sizing),
	})
	latency := e.clock.Since(start)

	entry := &ledger.Entry{
		RequestID:   logging.GetRequestID(ctx),
		UserID:      req.UserID,
		Model:       model,
		QueryChars:  utf8.RuneCountInString(req.Query),
		FileBacked:  req.HasFile(),
		Queued:      queued,
		QueueWaitMs: waited.Milliseconds(),
		LatencyMs:   latency.Milliseconds(),
		CreatedAt:   start,
	}

	if err != nil {
		errorType := Classify(err)
		tracing.SetErrorAttributes(span, err, string(errorType))
		e.metrics.RecordProviderCall(model, "error", latency, 0, 0)

		entry.Status = ledger.StatusError
		entry.ErrorType = string(errorType)
		entry.ErrorMessage = err.Error()
		e.record(entry)

		e.logger.WarnContext(ctx, "AI analysis failed",
			"model", model,
			"error_type", errorType,
			"queued", queued,
			"latency", latency,
			"error", err)
		return nil, err
	}

	if resp.Model != "" {
		model = resp.Model
	}
	usage := resp.Usage
	if usage.TotalTokens > 0 {
		e.usage.RecordTokens(int64(usage.TotalTokens))
	}

	tracing.SetTokenAttributes(span, usage.InputTokens, usage.OutputTokens)
	tracing.SetStatus(span, nil)
	e.metrics.RecordProviderCall(model, "success", latency, usage.InputTokens, usage.OutputTokens)

	entry.Model = model
	entry.Status = ledger.StatusSuccess
	entry.InputTokens = usage.InputTokens
	entry.OutputTokens = usage.OutputTokens
	entry.TotalTokens = usage.TotalTokens
	e.record(entry)

	e.logger.InfoContext(ctx, "AI usage",
		"model", model,
		"input_tokens", usage.InputTokens,
		"output_tokens", usage.OutputTokens,
		"total_tokens", usage.TotalTokens,
		"file_backed", req.HasFile(),
		"queued", queued,
		"latency", latency)

	return &Result{
		Success:  true,
		Response: resp.Text,
		Metadata: Metadata{
			InputTokens:  usage.InputTokens,
			OutputTokens: usage.OutputTokens,
			TotalTokens:  usage.TotalTokens,
			Model:        model,
			Timestamp:    FormatTimestamp(e.clock.Now()),
		},
	}, nil
}

// buildParts sanitizes the request's structured fields and builds the
// provider content for either branch.
func (e *Executor) buildParts(req *Request, sizing Sizing) []providers.Part {
	if req.HasFile() {
		mimeType := req.Context.MIMEType
		if mimeType == "" {
			mimeType = DefaultFileMIMEType
		}
		return []providers.Part{
			providers.FilePart(req.Context.FileURI, mimeType),
			providers.TextPart(BuildFilePrompt(req, sizing)),
		}
	}

	prompt := BuildTextPrompt(req, SanitizeValue(req.Statistics), SanitizeValue(req.CSVSummary), e.previewRows, sizing)
	return []providers.Part{providers.TextPart(prompt)}
}

func (e *Executor) record(entry *ledger.Entry) {
	if e.ledger == nil {
		return
	}
	if err := e.ledger.Record(entry); err != nil {
		e.logger.Warn("failed to record ledger entry", "error", err)
	}
}
