package api

import (
	"context"
	"net/http"

	"vadapro/analyzer/pkg/analysis"
	"vadapro/analyzer/pkg/telemetry/logging"
)

// Analyze handles POST /ai/analyze. Allowed requests run immediately,
// soft-limited ones wait in the queue for up to MaxWait, and hard
// rejections fail with 429.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	req, err := decodeAnalyzeRequest(w, r, h.maxBodyBytes)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	req.UserID = resolveUserID(req.UserID, r)
	ctx := logging.WithUser(r.Context(), req.UserID)

	decision := h.limiter.CheckRateLimit(req.UserID)
	setRateLimitHeaders(w, decision)

	var result *analysis.Result
	switch {
	case decision.Allowed:
		result, err = h.executor.Execute(ctx, req)
	case decision.ShouldQueue:
		result, err = h.enqueue(ctx, req)
	default:
		err = decision.Err()
	}
	if err != nil {
		h.writeError(w, r.WithContext(ctx), err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// enqueue queues req and blocks until it is served, rejected, or MaxWait
// passes.
func (h *Handler) enqueue(ctx context.Context, req *analysis.Request) (*analysis.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, h.maxWait)
	defer cancel()

	entry, err := h.queue.Enqueue(ctx, req)
	if err != nil {
		return nil, err
	}
	if h.onEnqueue != nil {
		h.onEnqueue()
	}

	return h.queue.Await(ctx, entry)
}
