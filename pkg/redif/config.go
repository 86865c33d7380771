package redif

import (
	"log/slog"
	"sync"
	"time"

	"github.com/yndnr/redif-go/pkg/frame"
)

// Default configuration values.
const (
	DefaultAddr           = "0.0.0.0:4400"
	DefaultNetwork        = "tcp"
	DefaultPollTimeout    = 5 * time.Second
	DefaultEventQueueSize = 1024
)

// Config configures a Server. The zero value is usable.
type Config struct {
	// Addr is the listen address (default: 0.0.0.0:4400).
	Addr string
	// Network is "tcp", "tcp4" or "tcp6" (default: tcp).
	Network string
	// ReadBufferSize is the per-connection read arena in bytes; a request
	// larger than this closes the connection (default: 1 MiB).
	ReadBufferSize int
	// PollTimeout bounds each readiness wait (default: 5s).
	PollTimeout time.Duration
	// EventQueueSize is the capacity of the poller to worker channel
	// (default: 1024).
	EventQueueSize int
	// Lock serializes handler calls (default: a private mutex).
	Lock sync.Locker
	// Logger receives server logs (default: slog.Default()).
	Logger *slog.Logger
	// Metrics records server metrics. Nil disables them.
	Metrics *Metrics
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.Network == "" {
		c.Network = DefaultNetwork
	}
	if c.ReadBufferSize <= 0 {
		c.ReadBufferSize = frame.DefaultCapacity
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = DefaultPollTimeout
	}
	if c.EventQueueSize <= 0 {
		c.EventQueueSize = DefaultEventQueueSize
	}
	if c.Lock == nil {
		c.Lock = &sync.Mutex{}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}
