package logging

import (
	"context"
	"log/slog"
)

// Attribute names added to every record logged with a request context.
const (
	AttrRequestID = "request_id"
	AttrUser      = "user_id"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	userKey
)

// WithRequestID returns ctx carrying the request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID returns the request ID in ctx, or "".
func GetRequestID(ctx context.Context) string {
	return stringValue(ctx, requestIDKey)
}

// WithUser returns ctx carrying the user the request is admitted as.
func WithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUser returns the user in ctx, or "".
func GetUser(ctx context.Context) string {
	return stringValue(ctx, userKey)
}

func stringValue(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}

func contextAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	if id := GetRequestID(ctx); id != "" {
		attrs = append(attrs, slog.String(AttrRequestID, id))
	}
	if user := GetUser(ctx); user != "" {
		attrs = append(attrs, slog.String(AttrUser, user))
	}
	return attrs
}
