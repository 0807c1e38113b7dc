// Package providers defines the interface to generative-AI providers.
//
// # Overview
//
// A Provider generates a text response from a list of content parts. A part
// is either text or a reference to a file previously uploaded to the
// provider, identified by URI and MIME type. Every response carries the
// provider-reported token usage, which feeds the global token budget.
//
// # Basic Usage
//
//	resp, err := provider.Generate(ctx, &providers.GenerateRequest{
//	    Parts: []providers.Part{
//	        providers.FilePart(file.URI, file.MIMEType),
//	        providers.TextPart(prompt),
//	    },
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(resp.Text, resp.Usage.TotalTokens)
//
// # Error Handling
//
// Implementations classify failures where the provider SDK is called and
// return one of the typed errors in this package:
//
//   - *ConfigError: missing or rejected credentials
//   - *QuotaError: the provider reported its own quota as exhausted
//   - *TimeoutError: the call exceeded its deadline
//   - *NetworkError: the provider could not be reached
//   - *ProviderError: any other provider failure
//
// Callers translate them with errors.As rather than by inspecting messages:
//
//	var quotaErr *providers.QuotaError
//	if errors.As(err, &quotaErr) {
//	    // report QUOTA_EXCEEDED
//	}
//
// Context cancellation by the caller is returned unwrapped.
package providers
