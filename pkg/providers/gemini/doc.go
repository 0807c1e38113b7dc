// Package gemini implements providers.Provider for Google Gemini models.
//
// The adapter uses the official google.golang.org/genai SDK. Each call runs
// under the configured timeout and its failure is classified where the SDK
// returns it:
//
//   - HTTP 401/403, or an API_KEY_* error reason: *providers.ConfigError
//   - HTTP 429 or RESOURCE_EXHAUSTED: *providers.QuotaError
//   - deadline exceeded: *providers.TimeoutError
//   - transport failure: *providers.NetworkError
//   - anything else: *providers.ProviderError
//
// Usage:
//
//	client, err := gemini.New(ctx, &cfg.Gemini, gemini.WithTracer(tracer))
//	if err != nil {
//	    return err
//	}
//
//	resp, err := client.Generate(ctx, &providers.GenerateRequest{
//	    Parts: []providers.Part{providers.TextPart("Summarize the survey.")},
//	})
package gemini
