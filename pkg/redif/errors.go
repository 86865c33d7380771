package redif

import "errors"

var (
	// ErrServerClosed is returned by Serve and Listen after the server has
	// shut down, and by a second concurrent Serve.
	ErrServerClosed = errors.New("redif: server closed")

	// ErrHandlerPanic reports a recovered panic from a Handler. The
	// connection whose request triggered it is closed.
	ErrHandlerPanic = errors.New("redif: handler panic")
)
