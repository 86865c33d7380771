// Package logger provides structured logging for redif.
//
// It wraps log/slog:
//
//   - logger.go: handler construction, the shared level and the default logger
//   - context.go: context propagation of the logger and request IDs
//
// The level is process-wide, so SetLevel adjusts every logger built by New.
// Packages that take a *slog.Logger get one through Slog.
package logger
