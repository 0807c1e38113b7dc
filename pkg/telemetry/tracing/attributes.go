package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys set on gateway spans.
const (
	AttrModel        = "vadapro.model"
	AttrRequestID    = "vadapro.request_id"
	AttrUser         = "vadapro.user"
	AttrFileBacked   = "vadapro.file_backed"
	AttrQueued       = "vadapro.queued"
	AttrQueryChars   = "vadapro.query.chars"
	AttrMaxWords     = "vadapro.prompt.max_words"
	AttrSimpleQuery  = "vadapro.prompt.simple"
	AttrTokensInput  = "vadapro.tokens.input"
	AttrTokensOutput = "vadapro.tokens.output"
	AttrTokensTotal  = "vadapro.tokens.total"
	AttrErrorType    = "vadapro.error.type"
	AttrQueueDepth   = "vadapro.queue.depth"
)

// SetTokenAttributes records provider-reported token counts on span.
func SetTokenAttributes(span trace.Span, input, output int) {
	span.SetAttributes(
		attribute.Int(AttrTokensInput, input),
		attribute.Int(AttrTokensOutput, output),
		attribute.Int(AttrTokensTotal, input+output),
	)
}

// SetErrorAttributes records err and its client-facing classification.
func SetErrorAttributes(span trace.Span, err error, errorType string) {
	SetError(span, err)
	if errorType != "" {
		span.SetAttributes(attribute.String(AttrErrorType, errorType))
	}
}
