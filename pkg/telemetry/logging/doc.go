// Package logging configures structured logging for the gateway.
//
// It builds a log/slog handler from the telemetry.logging configuration and
// wraps it with two behaviors:
//
//   - request-scoped fields (request_id, user_id) stored in the context by
//     the HTTP middleware are added to every record logged with a context
//   - string attributes are scrubbed of API keys, bearer tokens, email
//     addresses and phone numbers when redaction is enabled
//
// # Usage
//
//	logger, err := logging.New(logging.FromConfig(&cfg.Telemetry.Logging))
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger)
//
//	ctx = logging.WithRequestID(ctx, "req-123")
//	slog.InfoContext(ctx, "analysis completed", "total_tokens", 1234)
package logging
