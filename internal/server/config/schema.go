package config

import "time"

// ServerConfig is the root configuration for redif-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Storage StorageSection `koanf:"storage"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	RESP RESPConfig `koanf:"resp"`
	HTTP HTTPConfig `koanf:"http"`
}

// RESPConfig configures the RESP reactor.
type RESPConfig struct {
	Addr           string        `koanf:"addr"`
	ReadBufferSize int           `koanf:"read_buffer_size"`
	PollTimeout    time.Duration `koanf:"poll_timeout"`
	EventQueueSize int           `koanf:"event_queue_size"`
}

// HTTPConfig configures the ops HTTP server (metrics, health, version).
type HTTPConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// StorageSection configures the key-value engine.
type StorageSection struct {
	// Engine is "memory" or "badger".
	Engine     string        `koanf:"engine"`
	DataDir    string        `koanf:"data_dir"`
	SyncWrites bool          `koanf:"sync_writes"`
	GCInterval time.Duration `koanf:"gc_interval"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
