// Package logging defines the structured-logging contract used across the
// client and server, plus an slog-backed implementation.
package logging

import "context"

// Logger is a context-aware structured logger. The variadic args are
// key–value pairs:
//
//	log.Info(ctx, "starting server", "addr", addr)
type Logger interface {
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always carries the given pairs.
	With(args ...any) Logger
}
