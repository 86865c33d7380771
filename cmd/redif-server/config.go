package main

import (
	"fmt"
	"net"
	"strconv"

	"github.com/yndnr/redif-go/internal/infra/confloader"
	"github.com/yndnr/redif-go/internal/server/config"
	"github.com/yndnr/redif-go/internal/storage"
	"github.com/yndnr/redif-go/pkg/redif"
)

// overrides holds the flag values that take precedence over every other
// configuration source. Zero values mean "not set".
type overrides struct {
	Addr      string
	Port      int
	Verbose   bool
	LogFormat string
}

// toMap converts the overrides into dotted koanf keys. base supplies the
// host that --port is combined with.
func (o overrides) toMap(base *config.ServerConfig) (map[string]any, error) {
	m := make(map[string]any)

	addr := base.Server.RESP.Addr
	if o.Addr != "" {
		addr = o.Addr
		m["server.resp.addr"] = addr
	}
	if o.Port != 0 {
		if o.Port < 0 || o.Port > 65535 {
			return nil, fmt.Errorf("port %d out of range", o.Port)
		}
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, fmt.Errorf("combine --port with %q: %w", addr, err)
		}
		m["server.resp.addr"] = net.JoinHostPort(host, strconv.Itoa(o.Port))
	}
	if o.Verbose {
		m["log.level"] = "debug"
	}
	if o.LogFormat != "" {
		m["log.format"] = o.LogFormat
	}
	return m, nil
}

// loadConfig loads defaults, file, environment and flag overrides, then
// verifies the result.
func loadConfig(path string, o overrides) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if path != "" {
		opts = append(opts, confloader.WithConfigFile(path))
	}
	loader := confloader.NewLoader(opts...)

	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	flags, err := o.toMap(cfg)
	if err != nil {
		return nil, err
	}
	if len(flags) > 0 {
		if err := loader.LoadMap(flags); err != nil {
			return nil, err
		}
		if err := loader.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("unmarshal config: %w", err)
		}
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func storageConfig(cfg *config.ServerConfig) storage.Config {
	sc := storage.DefaultConfig()
	sc.Engine = cfg.Storage.Engine
	sc.DataDir = cfg.Storage.DataDir
	sc.SyncWrites = cfg.Storage.SyncWrites
	if cfg.Storage.GCInterval > 0 {
		sc.GCInterval = cfg.Storage.GCInterval
	}
	return sc
}

func reactorConfig(cfg *config.ServerConfig) redif.Config {
	return redif.Config{
		Addr:           cfg.Server.RESP.Addr,
		ReadBufferSize: cfg.Server.RESP.ReadBufferSize,
		PollTimeout:    cfg.Server.RESP.PollTimeout,
		EventQueueSize: cfg.Server.RESP.EventQueueSize,
	}
}
