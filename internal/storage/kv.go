package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Engine names accepted by Config.Engine.
const (
	EngineMemory = "memory"
	EngineBadger = "badger"
)

// Common errors
var (
	ErrKeyNotFound   = errors.New("storage: key not found")
	ErrClosed        = errors.New("storage: engine closed")
	ErrUnknownEngine = errors.New("storage: unknown engine")
)

// KV is a byte-oriented key-value engine. Implementations are safe for
// concurrent use.
type KV interface {
	// Get returns the value for key or ErrKeyNotFound.
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value []byte) error

	// Delete removes key and reports whether it existed.
	Delete(ctx context.Context, key []byte) (bool, error)

	// Has reports whether key exists.
	Has(ctx context.Context, key []byte) (bool, error)

	// Count returns the number of stored keys.
	Count(ctx context.Context) (int, error)

	// Close releases the engine. Further calls return ErrClosed.
	Close() error
}

// Config selects and tunes an engine.
type Config struct {
	// Engine is "memory" or "badger" (default: memory).
	Engine string

	// DataDir is the Badger directory. Required for badger.
	DataDir string

	// SyncWrites fsyncs every Badger write.
	SyncWrites bool

	// GCInterval is the period of the Badger value-log GC (default: 10m).
	GCInterval time.Duration

	// GCThreshold is the discard ratio passed to Badger's GC (default: 0.5).
	GCThreshold float64
}

// DefaultConfig returns an in-memory configuration.
func DefaultConfig() Config {
	return Config{
		Engine:      EngineMemory,
		GCInterval:  10 * time.Minute,
		GCThreshold: 0.5,
	}
}

// Open creates the engine named by cfg.Engine. reg, if non-nil, receives
// the engine's size gauges.
func Open(cfg Config, logger *slog.Logger, reg prometheus.Registerer) (KV, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Engine {
	case "", EngineMemory:
		return NewMemoryEngine(), nil
	case EngineBadger:
		e, err := NewBadgerEngine(cfg, logger)
		if err != nil {
			return nil, err
		}
		if reg != nil {
			if err := e.RegisterMetrics(reg); err != nil {
				_ = e.Close()
				return nil, err
			}
		}
		return e, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, cfg.Engine)
	}
}
