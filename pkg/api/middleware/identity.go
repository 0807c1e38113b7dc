package middleware

import (
	"net/http"
	"strings"

	"vadapro/analyzer/pkg/telemetry/logging"
)

// UserIDHeader identifies the caller when the body does not.
const UserIDHeader = "X-User-ID"

// Identity stores the X-User-ID header in the context. Handlers that accept
// a userId in the body give that precedence.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := strings.TrimSpace(r.Header.Get(UserIDHeader)); user != "" {
			r = r.WithContext(logging.WithUser(r.Context(), user))
		}
		next.ServeHTTP(w, r)
	})
}
