package server

import (
	"encoding/json"
	"net/http"

	"vadapro/analyzer/pkg/analysis"
	"vadapro/analyzer/pkg/api"
)

func writeError(w http.ResponseWriter, status int, errorType analysis.ErrorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(api.ErrorResponse{
		Success:   false,
		Message:   message,
		ErrorType: errorType,
	})
}
