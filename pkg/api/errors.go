package api

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"vadapro/analyzer/pkg/analysis"
	"vadapro/analyzer/pkg/limits"
)

// StatusCode maps an error type to its HTTP status.
func StatusCode(t analysis.ErrorType) int {
	switch t {
	case analysis.ErrorTypeValidation:
		return http.StatusBadRequest
	case analysis.ErrorTypeRateLimit, analysis.ErrorTypeQuotaExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// writeError classifies err and writes the error body. Rejections carry a
// Retry-After header when the limiter estimated one.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	errorType := analysis.Classify(err)
	status := StatusCode(errorType)

	if rej, ok := limits.AsRejection(err); ok && rej.RetryAfter > 0 {
		setRetryAfter(w, rej.RetryAfter)
	}

	h.metrics.RecordError(string(errorType))

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed",
		"path", r.URL.Path,
		"status", status,
		"error_type", errorType,
		"error", err)

	writeJSON(w, status, ErrorResponse{
		Success:   false,
		Message:   analysis.Message(err),
		ErrorType: errorType,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// setRateLimitHeaders describes the caller's per-minute window.
func setRateLimitHeaders(w http.ResponseWriter, d limits.Decision) {
	if d.Limit <= 0 {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(d.Remaining, 0)))
}

// setRetryAfter writes whole seconds, rounded up.
func setRetryAfter(w http.ResponseWriter, d time.Duration) {
	seconds := int(math.Ceil(d.Seconds()))
	w.Header().Set("Retry-After", strconv.Itoa(max(seconds, 1)))
}
