package providertest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"vadapro/analyzer/pkg/providers"
)

// Provider is an in-memory providers.Provider for testing. By default it
// answers every request with Text and Usage. Set GenerateFunc to script
// responses or errors.
type Provider struct {
	// Text is the default response text.
	Text string

	// Usage is the default token usage.
	Usage providers.Usage

	// GenerateFunc, if set, replaces the default response.
	GenerateFunc func(ctx context.Context, req *providers.GenerateRequest) (*providers.GenerateResponse, error)

	// UploadFunc, if set, replaces the default upload behavior.
	UploadFunc func(ctx context.Context, req *providers.UploadRequest) (*providers.FileRef, error)

	// ReadyErr is returned by Ready.
	ReadyErr error

	model    string
	requests []*providers.GenerateRequest
	uploads  int
	mu       sync.Mutex
}

// NewProvider creates a fake provider serving model.
func NewProvider(model string) *Provider {
	return &Provider{
		model: model,
		Text:  "mock response",
		Usage: providers.NewUsage(10, 20),
	}
}

// Generate records req and returns the scripted response.
func (p *Provider) Generate(ctx context.Context, req *providers.GenerateRequest) (*providers.GenerateResponse, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	fn := p.GenerateFunc
	p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if fn != nil {
		return fn(ctx, req)
	}

	model := req.Model
	if model == "" {
		model = p.model
	}
	return &providers.GenerateResponse{Text: p.Text, Usage: p.Usage, Model: model}, nil
}

// UploadFile returns a fake file reference.
func (p *Provider) UploadFile(ctx context.Context, req *providers.UploadRequest) (*providers.FileRef, error) {
	p.mu.Lock()
	p.uploads++
	fn := p.UploadFunc
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	if req.Reader == nil {
		return nil, errors.New("no file content")
	}
	name := "files/" + strings.ToLower(strings.ReplaceAll(req.DisplayName, " ", "-"))
	return &providers.FileRef{
		Name:     name,
		URI:      "https://generativelanguage.googleapis.com/v1beta/" + name,
		MIMEType: req.MIMEType,
	}, nil
}

// Name returns "mock".
func (p *Provider) Name() string {
	return "mock"
}

// Model returns the default model.
func (p *Provider) Model() string {
	return p.model
}

// Ready returns ReadyErr.
func (p *Provider) Ready(context.Context) error {
	return p.ReadyErr
}

// Close is a no-op.
func (p *Provider) Close() error {
	return nil
}

// Requests returns the generate requests received so far.
func (p *Provider) Requests() []*providers.GenerateRequest {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]*providers.GenerateRequest, len(p.requests))
	copy(out, p.requests)
	return out
}

// Uploads returns the number of upload calls.
func (p *Provider) Uploads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.uploads
}
