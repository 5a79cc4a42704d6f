// Package logger builds the application's slog.Logger: JSON or text output
// selected per environment, static service attributes, and a handler
// decorator that injects request-scoped attributes (tenant ID, request ID)
// from the context on every log call. Attr helpers keep key names
// consistent across packages.
package logger
