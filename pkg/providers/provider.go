package providers

import "context"

// Provider is the interface generative-AI provider adapters implement.
//
// All methods accept a context.Context for cancellation and timeout control.
// Implementations must respect context cancellation and return immediately
// when the context is cancelled.
type Provider interface {
	// Generate sends req to the provider and returns the response text and
	// token usage. An empty req.Model selects the provider's default model.
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// UploadFile registers a file with the provider so later requests can
	// reference it with FilePart.
	UploadFile(ctx context.Context, req *UploadRequest) (*FileRef, error)

	// Name returns the provider's name (e.g., "gemini").
	Name() string

	// Model returns the default model identifier.
	Model() string

	// Ready returns nil if the provider is configured to accept requests.
	Ready(ctx context.Context) error

	// Close releases any resources held by the provider.
	Close() error
}
