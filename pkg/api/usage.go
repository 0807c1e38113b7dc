package api

import (
	"net/http"
	"strconv"
	"time"

	"vadapro/analyzer/pkg/analysis"
	"vadapro/analyzer/pkg/ledger"
)

// History paging bounds.
const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// Usage handles GET /ai/usage.
func (h *Handler) Usage(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, UsageResponse{
		Success: true,
		Stats: UsageStats{
			Stats:       h.limiter.Stats(),
			QueueLength: h.queue.Len(),
		},
	})
}

// Model handles GET /ai/model.
func (h *Handler) Model(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ModelResponse{Success: true, Model: h.executor.Model()})
}

// UsageHistory handles GET /ai/usage/history. Supported parameters are
// userId, status, since, until (RFC 3339), limit and offset.
func (h *Handler) UsageHistory(w http.ResponseWriter, r *http.Request) {
	q, err := parseHistoryQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	entries, err := h.ledger.Query(r.Context(), q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	total, err := h.ledger.Count(r.Context(), q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	summary, err := h.ledger.Summarize(r.Context(), q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if entries == nil {
		entries = []*ledger.Entry{}
	}
	writeJSON(w, http.StatusOK, HistoryResponse{
		Success: true,
		Entries: entries,
		Total:   total,
		Summary: summary,
	})
}

func parseHistoryQuery(r *http.Request) (*ledger.Query, error) {
	params := r.URL.Query()
	q := &ledger.Query{
		UserID: params.Get("userId"),
		Limit:  defaultHistoryLimit,
	}

	switch status := ledger.Status(params.Get("status")); status {
	case "", ledger.StatusSuccess, ledger.StatusError:
		q.Status = status
	default:
		return nil, invalidParam("status", "status must be success or error")
	}

	if v := params.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, invalidParam("limit", "limit must be a positive integer")
		}
		q.Limit = min(n, maxHistoryLimit)
	}
	if v := params.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, invalidParam("offset", "offset must be a non-negative integer")
		}
		q.Offset = n
	}

	var err error
	if q.StartTime, err = parseTimeParam(params.Get("since"), "since"); err != nil {
		return nil, err
	}
	if q.EndTime, err = parseTimeParam(params.Get("until"), "until"); err != nil {
		return nil, err
	}
	return q, nil
}

func parseTimeParam(v, name string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, invalidParam(name, name+" must be an RFC 3339 timestamp")
	}
	return &t, nil
}

func invalidParam(field, message string) error {
	return &analysis.ValidationError{Field: field, Message: message}
}
