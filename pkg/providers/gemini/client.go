package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"vadapro/analyzer/pkg/config"
	"vadapro/analyzer/pkg/providers"
	"vadapro/analyzer/pkg/telemetry/tracing"
)

// ProviderName identifies this provider in errors and logs.
const ProviderName = "gemini"

// errMissingKey is returned by every call when no API key is configured.
var errMissingKey = &providers.ConfigError{
	Provider: ProviderName,
	Message:  "API key is not configured (set GEMINI_API_KEY)",
}

// Client implements providers.Provider on the Gemini API.
type Client struct {
	client          *genai.Client
	model           string
	timeout         time.Duration
	temperature     float64
	maxOutputTokens int
	tracer          *tracing.Tracer
	logger          *slog.Logger
}

// options holds optional Client settings.
type options struct {
	baseURL    string
	httpClient *http.Client
	tracer     *tracing.Tracer
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*options)

// WithBaseURL points the client at a different API endpoint.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithTracer sets the tracer for provider spans.
func WithTracer(t *tracing.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithLogger sets the client's logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New creates a Gemini client from configuration.
//
// A missing API key is not an error here: the client is created, reports
// itself not ready, and fails every call with a *providers.ConfigError. This
// lets the server start and report the problem per request.
func New(ctx context.Context, cfg *config.GeminiConfig, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("gemini config is nil")
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	c := &Client{
		model:           cfg.Model,
		timeout:         cfg.Timeout,
		temperature:     cfg.Temperature,
		maxOutputTokens: cfg.MaxOutputTokens,
		tracer:          o.tracer,
		logger:          o.logger.With("component", "gemini"),
	}
	if c.model == "" {
		c.model = config.DefaultGeminiModel
	}
	if c.timeout <= 0 {
		c.timeout = config.DefaultGeminiTimeout
	}

	if cfg.APIKey == "" {
		c.logger.Warn("Gemini API key is not configured; analysis requests will fail")
		return c, nil
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: o.httpClient,
	}
	if o.baseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: o.baseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	c.client = client

	return c, nil
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Model returns the default model identifier.
func (c *Client) Model() string {
	return c.model
}

// Ready returns a *providers.ConfigError if no API key is configured.
func (c *Client) Ready(context.Context) error {
	if c.client == nil {
		return errMissingKey
	}
	return nil
}

// Close releases resources. The underlying SDK client holds none that need
// explicit release.
func (c *Client) Close() error {
	return nil
}

// Generate sends a generateContent call. The call is bounded by the
// configured timeout.
func (c *Client) Generate(ctx context.Context, req *providers.GenerateRequest) (*providers.GenerateResponse, error) {
	if c.client == nil {
		return nil, errMissingKey
	}
	if req == nil || len(req.Parts) == 0 {
		return nil, &providers.ProviderError{Provider: ProviderName, Message: "request has no content"}
	}

	model := req.Model
	if model == "" {
		model = c.model
	}

	ctx, span := c.tracer.Start(ctx, "gemini.generate_content",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String(tracing.AttrModel, model)))
	defer span.End()

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(callCtx, model, buildContents(req.Parts), c.buildConfig(req))
	latency := time.Since(start)
	if err != nil {
		err = c.classify(ctx, err)
		tracing.SetError(span, err)
		c.logger.Warn("generateContent failed",
			"model", model,
			"latency", latency,
			"error", err)
		return nil, err
	}
	if resp == nil {
		err := &providers.ProviderError{Provider: ProviderName, Message: "empty response"}
		tracing.SetError(span, err)
		return nil, err
	}

	usage := usageFrom(resp.UsageMetadata)
	tracing.SetTokenAttributes(span, usage.InputTokens, usage.OutputTokens)
	tracing.SetStatus(span, nil)

	return &providers.GenerateResponse{
		Text:    resp.Text(),
		Usage:   usage,
		Model:   model,
		Latency: latency,
	}, nil
}

// UploadFile uploads a file through the Files API.
func (c *Client) UploadFile(ctx context.Context, req *providers.UploadRequest) (*providers.FileRef, error) {
	if c.client == nil {
		return nil, errMissingKey
	}
	if req == nil || req.Reader == nil {
		return nil, &providers.ProviderError{Provider: ProviderName, Message: "upload has no content"}
	}

	ctx, span := c.tracer.Start(ctx, "gemini.upload_file", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	file, err := c.client.Files.Upload(callCtx, req.Reader, &genai.UploadFileConfig{
		MIMEType:    req.MIMEType,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		err = c.classify(ctx, err)
		tracing.SetError(span, err)
		return nil, err
	}

	ref := &providers.FileRef{
		Name:     file.Name,
		URI:      file.URI,
		MIMEType: file.MIMEType,
	}
	if ref.MIMEType == "" {
		ref.MIMEType = req.MIMEType
	}

	c.logger.Info("file uploaded", "name", ref.Name, "mime_type", ref.MIMEType)
	return ref, nil
}

func (c *Client) buildConfig(req *providers.GenerateRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}

	temperature := c.temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	cfg.Temperature = genai.Ptr(float32(temperature))

	maxTokens := c.maxOutputTokens
	if req.MaxOutputTokens > 0 {
		maxTokens = req.MaxOutputTokens
	}
	if maxTokens > 0 {
		cfg.MaxOutputTokens = int32(maxTokens)
	}

	return cfg
}

// buildContents converts parts to a single user turn. File parts are sent
// before text so the prompt can refer to the attached file.
func buildContents(parts []providers.Part) []*genai.Content {
	out := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.IsFile() {
			out = append(out, genai.NewPartFromURI(p.FileURI, p.MIMEType))
		}
	}
	for _, p := range parts {
		if !p.IsFile() && p.Text != "" {
			out = append(out, genai.NewPartFromText(p.Text))
		}
	}
	return []*genai.Content{genai.NewContentFromParts(out, genai.RoleUser)}
}

func usageFrom(md *genai.GenerateContentResponseUsageMetadata) providers.Usage {
	if md == nil {
		return providers.Usage{}
	}
	return providers.NewUsage(int(md.PromptTokenCount), int(md.CandidatesTokenCount))
}

// classify converts an SDK error into a typed provider error. Cancellation of
// the caller's context is returned as the context error.
func (c *Client) classify(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &providers.TimeoutError{Provider: ProviderName, Timeout: c.timeout}
	}
	return classifyError(err)
}

// classifyError maps an SDK error to a typed provider error.
func classifyError(err error) error {
	if apiErr, ok := asAPIError(err); ok {
		switch {
		case isCredentialError(apiErr):
			return &providers.ConfigError{Provider: ProviderName, Message: apiErr.Message, Cause: err}
		case apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED":
			return &providers.QuotaError{Provider: ProviderName, Message: apiErr.Message, Cause: err}
		default:
			return &providers.ProviderError{
				Provider:   ProviderName,
				StatusCode: apiErr.Code,
				Message:    apiErr.Message,
				Cause:      err,
			}
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &providers.NetworkError{Provider: ProviderName, Cause: err}
	}

	return &providers.ProviderError{Provider: ProviderName, Message: err.Error(), Cause: err}
}

// asAPIError finds a genai.APIError in err's chain. The SDK returns it by
// value, but a pointer is accepted too.
func asAPIError(err error) (*genai.APIError, bool) {
	var value genai.APIError
	if errors.As(err, &value) {
		return &value, true
	}
	var ptr *genai.APIError
	if errors.As(err, &ptr) && ptr != nil {
		return ptr, true
	}
	return nil, false
}

func isCredentialError(e *genai.APIError) bool {
	switch {
	case e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden:
		return true
	case e.Status == "UNAUTHENTICATED" || e.Status == "PERMISSION_DENIED":
		return true
	}

	for _, detail := range e.Details {
		if reason, ok := detail["reason"].(string); ok && strings.HasPrefix(reason, "API_KEY") {
			return true
		}
	}
	return strings.Contains(e.Message, "API key") || strings.Contains(e.Message, "API_KEY")
}
