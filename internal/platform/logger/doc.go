// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured text or
// JSON logging with configurable log levels. Output goes to stderr so that command
// results written to stdout stay machine-readable. Loggers scoped to a request or a
// batch run travel through context.Context.
package logger
