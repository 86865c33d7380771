// Package netpoll provides the readiness-notification source and the
// non-blocking sockets the redif reactor runs on.
//
// A Poller wraps Linux epoll. Every registered descriptor receives an opaque
// Token; Wait returns notifications tagged with that token and the
// readiness kind. Listener and Conn are thin wrappers over raw descriptors
// opened in non-blocking, close-on-exec mode so they can be driven entirely
// by the poller.
//
// On platforms other than Linux the constructors return ErrUnsupported.
package netpoll
