// Package logging provides the structured-logging glue used by
// walletcrypto. It is deliberately small so callers can supply their own
// implementation for testing or redaction policies, following the same
// shape the cb-mpc wrapper uses for its own Logger interface.
package logging

import (
	"context"
	"log/slog"
)

const redactedPlaceholder = "[redacted]"

// Logger defines the subset of slog functionality walletcrypto uses. No
// exported operation ever passes secret bytes through it; only metadata
// (sizes, durations, failure kinds) is logged.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	With(args ...any) Logger
}

// New returns a Logger backed by the provided slog.Logger. Passing nil binds
// to slog.Default().
func New(logger *slog.Logger) Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &slogLogger{logger: logger}
}

type slogLogger struct {
	logger *slog.Logger
}

func (l *slogLogger) Debug(ctx context.Context, msg string, args ...any) {
	l.logger.DebugContext(ctx, msg, args...)
}

func (l *slogLogger) Info(ctx context.Context, msg string, args ...any) {
	l.logger.InfoContext(ctx, msg, args...)
}

func (l *slogLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.logger.WarnContext(ctx, msg, args...)
}

func (l *slogLogger) Error(ctx context.Context, msg string, args ...any) {
	l.logger.ErrorContext(ctx, msg, args...)
}

func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{logger: l.logger.With(args...)}
}

// Redacted marks an attribute key whose value must not be logged. Use it in
// place of a secret value, never alongside it.
func Redacted(key string) slog.Attr {
	return slog.String(key, redactedPlaceholder)
}

// Placeholder returns the canonical string substituted for a redacted value.
func Placeholder() string {
	return redactedPlaceholder
}

// noop is a Logger that discards everything. Used as the zero-value default
// so components never need a nil check before logging.
type noop struct{}

// Noop returns a Logger that discards every call.
func Noop() Logger { return noop{} }

func (noop) Debug(context.Context, string, ...any) {}
func (noop) Info(context.Context, string, ...any)  {}
func (noop) Warn(context.Context, string, ...any)  {}
func (noop) Error(context.Context, string, ...any) {}
func (noop) With(...any) Logger                    { return noop{} }
