package httpserver

import "errors"

var (
	// ErrStart indicates the listener failed to start or died unexpectedly.
	ErrStart = errors.New("failed to start HTTP server")

	// ErrShutdown indicates graceful shutdown did not complete in time.
	ErrShutdown = errors.New("failed to shut down HTTP server")
)
