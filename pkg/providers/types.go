package providers

import (
	"io"
	"time"
)

// Part is one piece of request content: text or a file reference.
type Part struct {
	// Text is the text content. Empty for file parts.
	Text string `json:"text,omitempty"`

	// FileURI is the provider-issued URI of an uploaded file.
	FileURI string `json:"file_uri,omitempty"`

	// MIMEType is the MIME type of the referenced file.
	MIMEType string `json:"mime_type,omitempty"`
}

// IsFile reports whether the part references an uploaded file.
func (p Part) IsFile() bool {
	return p.FileURI != ""
}

// TextPart returns a text part.
func TextPart(text string) Part {
	return Part{Text: text}
}

// FilePart returns a part referencing an uploaded file.
func FilePart(uri, mimeType string) Part {
	return Part{FileURI: uri, MIMEType: mimeType}
}

// GenerateRequest is a provider-agnostic generation request.
type GenerateRequest struct {
	// Model overrides the provider's default model when set.
	Model string

	// Parts is the user content, in order.
	Parts []Part

	// Temperature overrides the configured sampling temperature when set.
	Temperature *float64

	// MaxOutputTokens caps the response length. Zero uses the provider default.
	MaxOutputTokens int
}

// Usage is the provider-reported token usage of one call.
type Usage struct {
	// InputTokens is the number of prompt tokens.
	InputTokens int `json:"inputTokens"`

	// OutputTokens is the number of generated tokens.
	OutputTokens int `json:"outputTokens"`

	// TotalTokens is InputTokens + OutputTokens.
	TotalTokens int `json:"totalTokens"`
}

// NewUsage builds a Usage from input and output counts. Negative counts are
// treated as zero.
func NewUsage(input, output int) Usage {
	input = max(input, 0)
	output = max(output, 0)
	return Usage{InputTokens: input, OutputTokens: output, TotalTokens: input + output}
}

// GenerateResponse is a provider-agnostic generation response.
type GenerateResponse struct {
	// Text is the response text.
	Text string

	// Usage is the token usage reported by the provider. Missing counts are
	// zero.
	Usage Usage

	// Model is the model that served the request.
	Model string

	// Latency is the time spent waiting for the provider.
	Latency time.Duration
}

// UploadRequest describes a file to upload to the provider.
type UploadRequest struct {
	// Reader supplies the file content.
	Reader io.Reader

	// MIMEType is the content type, e.g. "text/csv".
	MIMEType string

	// DisplayName is an optional human-readable name.
	DisplayName string
}

// FileRef identifies a file uploaded to the provider.
type FileRef struct {
	// Name is the provider's resource name for the file.
	Name string `json:"name"`

	// URI is the reference used in FilePart.
	URI string `json:"uri"`

	// MIMEType is the file's content type.
	MIMEType string `json:"mimeType"`

	// SizeBytes is the stored size, if reported.
	SizeBytes int64 `json:"sizeBytes,omitempty"`

	// ExpiresAt is when the provider deletes the file, if reported.
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}
