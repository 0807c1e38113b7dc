package analysis

import (
	"errors"

	"vadapro/analyzer/pkg/limits"
	"vadapro/analyzer/pkg/providers"
)

// ErrorType is the client-facing error classification.
type ErrorType string

const (
	ErrorTypeRateLimit     ErrorType = "RATE_LIMIT"
	ErrorTypeQuotaExceeded ErrorType = "QUOTA_EXCEEDED"
	ErrorTypeConfig        ErrorType = "CONFIG_ERROR"
	ErrorTypeServer        ErrorType = "SERVER_ERROR"
	ErrorTypeValidation    ErrorType = "VALIDATION_ERROR"
)

// ValidationError is returned for malformed requests.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ErrMissingQuery is returned when a request has no query.
var ErrMissingQuery = &ValidationError{Field: "query", Message: "Query is required"}

// Client-facing messages for provider failures.
const (
	messageConfig  = "AI service is not configured correctly. Please contact the administrator."
	messageQuota   = "AI service quota exceeded. Please try again later."
	messageTimeout = "The AI service took too long to respond. Please try again."
	messageServer  = "Failed to process AI analysis request. Please try again."
)

// Classify maps err to its ErrorType. Limiter and queue rejections map to
// RATE_LIMIT, or QUOTA_EXCEEDED for the global token budget; provider
// errors are mapped by type; everything else is SERVER_ERROR.
func Classify(err error) ErrorType {
	if err == nil {
		return ""
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return ErrorTypeValidation
	}
	if rej, ok := limits.AsRejection(err); ok {
		if rej.QuotaExhausted() {
			return ErrorTypeQuotaExceeded
		}
		return ErrorTypeRateLimit
	}

	var configErr *providers.ConfigError
	if errors.As(err, &configErr) {
		return ErrorTypeConfig
	}
	var quotaErr *providers.QuotaError
	if errors.As(err, &quotaErr) {
		return ErrorTypeQuotaExceeded
	}
	return ErrorTypeServer
}

// Message returns the message shown to the client for err. Provider
// details are not exposed.
func Message(err error) string {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}
	if rej, ok := limits.AsRejection(err); ok {
		return rej.Message
	}

	var timeoutErr *providers.TimeoutError
	switch Classify(err) {
	case ErrorTypeConfig:
		return messageConfig
	case ErrorTypeQuotaExceeded:
		return messageQuota
	default:
		if errors.As(err, &timeoutErr) {
			return messageTimeout
		}
		return messageServer
	}
}
