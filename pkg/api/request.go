package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"vadapro/analyzer/pkg/analysis"
	"vadapro/analyzer/pkg/api/middleware"
	"vadapro/analyzer/pkg/limits"
)

var errInvalidBody = &analysis.ValidationError{Field: "body", Message: "Request body must be valid JSON"}

// decodeAnalyzeRequest reads and validates an analyze body of at most
// maxBytes.
func decodeAnalyzeRequest(w http.ResponseWriter, r *http.Request, maxBytes int64) (*analysis.Request, error) {
	var req analysis.Request

	body := http.MaxBytesReader(w, r.Body, maxBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return nil, &analysis.ValidationError{
				Field:   "body",
				Message: fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit),
			}
		case errors.Is(err, io.EOF):
			return nil, analysis.ErrMissingQuery
		default:
			return nil, errInvalidBody
		}
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}

// resolveUserID picks the body's userId, then the X-User-ID header, then
// the anonymous user.
func resolveUserID(bodyUserID string, r *http.Request) string {
	if id := strings.TrimSpace(bodyUserID); id != "" {
		return id
	}
	if id := strings.TrimSpace(r.Header.Get(middleware.UserIDHeader)); id != "" {
		return id
	}
	return limits.AnonymousUser
}
