package httpserver

import "errors"

var (
	// ErrStart indicates the server failed to start or stopped unexpectedly.
	ErrStart = errors.New("failed to run HTTP server")
	// ErrShutdown indicates graceful shutdown did not complete in time.
	ErrShutdown = errors.New("failed to shut down HTTP server gracefully")
)
