//go:build !linux

package netpoll

import "time"

// NewPoller is not available on this platform.
func NewPoller() (*Poller, error) { return nil, ErrUnsupported }

// Register is not available on this platform.
func (p *Poller) Register(fd int, interest Event, edge bool) (Token, error) {
	return 0, ErrUnsupported
}

// Deregister is not available on this platform.
func (p *Poller) Deregister(fd int) error { return ErrUnsupported }

// Wait is not available on this platform.
func (p *Poller) Wait(timeout time.Duration) ([]Notification, error) {
	return nil, ErrUnsupported
}

// Wake is not available on this platform.
func (p *Poller) Wake() error { return ErrUnsupported }

// Close is a no-op on this platform.
func (p *Poller) Close() error { return nil }

// Listen is not available on this platform.
func Listen(network, address string) (*Listener, error) { return nil, ErrUnsupported }

// Accept is not available on this platform.
func (l *Listener) Accept() (*Conn, error) { return nil, ErrUnsupported }

// Close is a no-op on this platform.
func (l *Listener) Close() error { return nil }

// Read is not available on this platform.
func (c *Conn) Read(p []byte) (int, error) { return 0, ErrUnsupported }

// Write is not available on this platform.
func (c *Conn) Write(p []byte) (int, error) { return 0, ErrUnsupported }

// Close is a no-op on this platform.
func (c *Conn) Close() error { return nil }
