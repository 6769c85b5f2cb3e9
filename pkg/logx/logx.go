// Package logx contains slog plumbing shared by all commands: a handler
// that stamps records with the request id from context, and a logging
// round-tripper for outgoing HTTP clients.
package logx

import (
	"context"

	"golang.org/x/exp/slog"
)

type requestIDKey struct{}

// ContextWithRequestID returns a new context with the given request ID.
func ContextWithRequestID(parent context.Context, reqID string) context.Context {
	return context.WithValue(parent, requestIDKey{}, reqID)
}

// RequestIDFromContext returns request id from context.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(requestIDKey{}).(string)
	return v, ok
}

// Handler decorates records with the request id from context.
type Handler struct {
	slog.Handler
}

// Handle implements slog.Handler interface.
func (h Handler) Handle(ctx context.Context, rec slog.Record) error {
	if reqID, ok := RequestIDFromContext(ctx); ok {
		rec.AddAttrs(slog.String("request_id", reqID))
	}
	return h.Handler.Handle(ctx, rec)
}

// WithGroup returns a new Handler with the given group.
func (h Handler) WithGroup(group string) slog.Handler {
	return Handler{Handler: h.Handler.WithGroup(group)}
}

// WithAttrs returns a new Handler with the given attributes.
func (h Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return Handler{Handler: h.Handler.WithAttrs(attrs)}
}

// NoOp returns a handler that discards all records.
func NoOp() slog.Handler { return noop{} }

type noop struct{}

func (noop) Enabled(context.Context, slog.Level) bool  { return false }
func (noop) Handle(context.Context, slog.Record) error { return nil }
func (n noop) WithAttrs([]slog.Attr) slog.Handler      { return n }
func (n noop) WithGroup(string) slog.Handler           { return n }
