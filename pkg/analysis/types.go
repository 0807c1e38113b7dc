package analysis

import (
	"strings"
	"time"
)

// DefaultFileMIMEType is assumed for file references without a MIME type.
const DefaultFileMIMEType = "text/csv"

// Request is the body of POST /ai/analyze. Statistics, ChartConfig and
// CSVSummary are usually objects but any JSON value is accepted.
type Request struct {
	Query       string           `json:"query"`
	Statistics  any              `json:"statistics,omitempty"`
	ChartConfig any              `json:"chartConfig,omitempty"`
	CSVSummary  any              `json:"csvSummary,omitempty"`
	CSVData     string           `json:"csvData,omitempty"`
	Context     *AnalysisContext `json:"context,omitempty"`
	UserID      string           `json:"userId,omitempty"`
}

// AnalysisContext references a dataset previously uploaded to the
// provider.
type AnalysisContext struct {
	FileURI  string `json:"fileUri,omitempty"`
	MIMEType string `json:"mimeType,omitempty"`
	FileName string `json:"fileName,omitempty"`
}

// HasFile reports whether the request carries a provider file reference.
func (r *Request) HasFile() bool {
	return r.Context != nil && strings.TrimSpace(r.Context.FileURI) != ""
}

// Validate checks that the request has a non-blank query.
func (r *Request) Validate() error {
	if r == nil || strings.TrimSpace(r.Query) == "" {
		return ErrMissingQuery
	}
	return nil
}

// Result is the success body of POST /ai/analyze.
type Result struct {
	Success  bool     `json:"success"`
	Response string   `json:"response"`
	Metadata Metadata `json:"metadata"`
}

// Metadata describes the provider call behind a Result.
type Metadata struct {
	InputTokens  int    `json:"inputTokens"`
	OutputTokens int    `json:"outputTokens"`
	TotalTokens  int    `json:"totalTokens"`
	Model        string `json:"model"`
	Timestamp    string `json:"timestamp"`
}

// timestampLayout is ISO 8601 in UTC with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp formats t for Metadata.Timestamp.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
