package config

import "time"

// Default configuration values.
const (
	DefaultRESPAddr       = "0.0.0.0:4400"
	DefaultReadBufferSize = 1 << 20
	DefaultPollTimeout    = 5 * time.Second
	DefaultEventQueueSize = 1024

	DefaultHTTPAddr = "127.0.0.1:4480"

	DefaultEngine     = "memory"
	DefaultDataDir    = "/var/lib/redif-server/data"
	DefaultGCInterval = 10 * time.Minute

	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			RESP: RESPConfig{
				Addr:           DefaultRESPAddr,
				ReadBufferSize: DefaultReadBufferSize,
				PollTimeout:    DefaultPollTimeout,
				EventQueueSize: DefaultEventQueueSize,
			},
			HTTP: HTTPConfig{
				Enabled: false,
				Addr:    DefaultHTTPAddr,
			},
		},
		Storage: StorageSection{
			Engine:     DefaultEngine,
			DataDir:    DefaultDataDir,
			GCInterval: DefaultGCInterval,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
