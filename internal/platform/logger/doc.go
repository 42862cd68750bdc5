// Package logger sets up the JSON slog logger and carries request-scoped
// loggers through a context, so handlers and services log with the same
// trace attributes.
package logger
