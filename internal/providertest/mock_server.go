// Package providertest provides test doubles for generative-AI providers.
package providertest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// GenerateContentSuffix is the path suffix of the Gemini generateContent
// endpoint.
const GenerateContentSuffix = ":generateContent"

// MockServer is a mock Gemini API server for testing the provider adapter.
// Responses are matched by URL path suffix, so the API version and model
// segments of the path do not matter.
type MockServer struct {
	server       *httptest.Server
	responses    map[string]MockResponse
	requests     []RecordedRequest
	requestCount int
	mu           sync.Mutex
}

// MockResponse defines a mock response configuration.
type MockResponse struct {
	StatusCode int
	Body       any
	Delay      time.Duration
	Headers    map[string]string
}

// RecordedRequest is a request received by the server.
type RecordedRequest struct {
	Method string
	Path   string
	APIKey string
	Body   map[string]any
}

// NewMockServer creates and starts a new mock server.
func NewMockServer() *MockServer {
	ms := &MockServer{
		responses: make(map[string]MockResponse),
	}
	ms.server = httptest.NewServer(http.HandlerFunc(ms.handler))
	return ms
}

// URL returns the mock server's base URL.
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Close closes the mock server.
func (ms *MockServer) Close() {
	ms.server.Close()
}

// SetResponse sets the response for requests whose path ends with suffix.
func (ms *MockServer) SetResponse(suffix string, response MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.responses[suffix] = response
}

// GetRequestCount returns the number of requests received.
func (ms *MockServer) GetRequestCount() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	return ms.requestCount
}

// Requests returns the requests received so far.
func (ms *MockServer) Requests() []RecordedRequest {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	out := make([]RecordedRequest, len(ms.requests))
	copy(out, ms.requests)
	return out
}

func (ms *MockServer) handler(w http.ResponseWriter, r *http.Request) {
	rec := RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		APIKey: r.Header.Get("x-goog-api-key"),
	}
	_ = json.NewDecoder(r.Body).Decode(&rec.Body)

	ms.mu.Lock()
	ms.requestCount++
	ms.requests = append(ms.requests, rec)

	var (
		response MockResponse
		ok       bool
	)
	for suffix, resp := range ms.responses {
		if strings.HasSuffix(r.URL.Path, suffix) {
			response, ok = resp, true
			break
		}
	}
	ms.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	if response.Delay > 0 {
		select {
		case <-time.After(response.Delay):
		case <-r.Context().Done():
			return
		}
	}

	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(response.StatusCode)

	if response.Body != nil {
		switch v := response.Body.(type) {
		case string:
			_, _ = w.Write([]byte(v))
		case []byte:
			_, _ = w.Write(v)
		default:
			_ = json.NewEncoder(w).Encode(response.Body)
		}
	}
}

// MockGeminiResponse creates a successful generateContent response body.
func MockGeminiResponse(text string, promptTokens, candidateTokens int) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{
			{
				"content": map[string]any{
					"role": "model",
					"parts": []map[string]any{
						{"text": text},
					},
				},
				"finishReason": "STOP",
			},
		},
		"usageMetadata": map[string]any{
			"promptTokenCount":     promptTokens,
			"candidatesTokenCount": candidateTokens,
			"totalTokenCount":      promptTokens + candidateTokens,
		},
	}
}

// MockErrorResponse creates a Google API error response.
func MockErrorResponse(statusCode int, status, message string) MockResponse {
	return MockResponse{
		StatusCode: statusCode,
		Body: map[string]any{
			"error": map[string]any{
				"code":    statusCode,
				"message": message,
				"status":  status,
			},
		},
	}
}

// MockInvalidKeyError creates the response Gemini returns for a bad API key.
func MockInvalidKeyError() MockResponse {
	return MockErrorResponse(http.StatusBadRequest, "INVALID_ARGUMENT",
		"API key not valid. Please pass a valid API key.")
}

// MockQuotaError creates a 429 quota exhausted response.
func MockQuotaError() MockResponse {
	return MockErrorResponse(http.StatusTooManyRequests, "RESOURCE_EXHAUSTED",
		"Resource has been exhausted (e.g. check quota).")
}

// MockServerError creates a 500 internal server error response.
func MockServerError() MockResponse {
	return MockErrorResponse(http.StatusInternalServerError, "INTERNAL", "Internal error encountered.")
}
