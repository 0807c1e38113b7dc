package api

import (
	"vadapro/analyzer/pkg/analysis"
	"vadapro/analyzer/pkg/ledger"
	"vadapro/analyzer/pkg/limits"
	"vadapro/analyzer/pkg/providers"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success   bool               `json:"success"`
	Message   string             `json:"message"`
	ErrorType analysis.ErrorType `json:"errorType"`
}

// UsageStats is limits.Stats plus the queue length.
type UsageStats struct {
	limits.Stats
	QueueLength int `json:"queueLength"`
}

// UsageResponse is the body of GET /ai/usage.
type UsageResponse struct {
	Success bool       `json:"success"`
	Stats   UsageStats `json:"stats"`
}

// ModelResponse is the body of GET /ai/model.
type ModelResponse struct {
	Success bool   `json:"success"`
	Model   string `json:"model"`
}

// FileResponse is the body of POST /ai/files.
type FileResponse struct {
	Success bool               `json:"success"`
	File    *providers.FileRef `json:"file"`
}

// HistoryResponse is the body of GET /ai/usage/history.
type HistoryResponse struct {
	Success bool            `json:"success"`
	Entries []*ledger.Entry `json:"entries"`
	Total   int64           `json:"total"`
	Summary *ledger.Summary `json:"summary"`
}
