package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/redif-go/internal/infra/buildinfo"
	"github.com/yndnr/redif-go/internal/infra/confloader"
	"github.com/yndnr/redif-go/internal/infra/shutdown"
	"github.com/yndnr/redif-go/internal/server/config"
	"github.com/yndnr/redif-go/internal/server/httpserver"
	"github.com/yndnr/redif-go/internal/storage"
	"github.com/yndnr/redif-go/internal/store"
	"github.com/yndnr/redif-go/internal/telemetry/logger"
	"github.com/yndnr/redif-go/internal/telemetry/metric"
	"github.com/yndnr/redif-go/pkg/redif"
)

const shutdownTimeout = 30 * time.Second

func init() {
	// -v is --verbose here.
	cli.VersionFlag = &cli.BoolFlag{Name: "version", Usage: "print the version"}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "redif-server",
		Usage:   "example key-value server on the redif RESP reactor",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
				EnvVars: []string{"REDIF_CONFIG"},
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "RESP listen port (keeps the configured host)",
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "RESP listen address (host:port)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log at debug level",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log format: text, json",
			},
		},
		Action: serve,
	}
}

func serve(c *cli.Context) error {
	path := c.String("config")
	o := overrides{
		Addr:      c.String("addr"),
		Port:      c.Int("port"),
		Verbose:   c.Bool("verbose"),
		LogFormat: c.String("log-format"),
	}

	cfg, err := loadConfig(path, o)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	slogger := logger.Slog(log)
	component := func(name string) *slog.Logger {
		return logger.Slog(logger.Component(log, name))
	}

	info := buildinfo.Get()
	log.Info("starting redif-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", path)

	reg := metric.NewRegistry()

	kv, err := storage.Open(storageConfig(cfg), component("storage"), reg.Registerer())
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	rc := reactorConfig(cfg)
	rc.Logger = component("redif")
	rc.Metrics = redif.NewMetrics(reg.Registerer())
	srv := redif.New(rc, store.New(kv, component("store")))
	if err := srv.Listen(); err != nil {
		_ = kv.Close()
		return err
	}

	sh := shutdown.NewHandler(shutdownTimeout, shutdown.WithLogger(slogger))

	// Hooks run in reverse order: storage closes last.
	sh.OnShutdown("storage", func(context.Context) error {
		return kv.Close()
	})

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	var serveErr error
	served := make(chan struct{})
	go func() {
		defer close(served)
		if serveErr = srv.Serve(ctx); serveErr != nil {
			log.Error("RESP server stopped", "error", serveErr)
			sh.Trigger()
		}
	}()
	log.Info("RESP server listening", "addr", srv.Addr().String())

	sh.OnShutdown("resp", func(sctx context.Context) error {
		cancel()
		select {
		case <-served:
			return serveErr
		case <-sctx.Done():
			return sctx.Err()
		}
	})

	if cfg.Server.HTTP.Enabled {
		hs, err := startHTTP(cfg, reg, kv, slogger, sh)
		if err != nil {
			cancel()
			<-served
			_ = kv.Close()
			return err
		}
		log.Info("HTTP server listening", "addr", hs.Addr().String())
		sh.OnShutdown("http", hs.Shutdown)
	}

	if path != "" {
		w, err := watchConfig(path, o, slogger)
		if err != nil {
			log.Warn("configuration watcher disabled", "error", err)
		} else {
			sh.OnShutdown("watcher", func(context.Context) error { return w.Stop() })
		}
	}

	log.Info("server started, press Ctrl+C to stop")
	if err := sh.Wait(c.Context); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
		Attrs:  []any{"service", "redif-server"},
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}

func startHTTP(cfg *config.ServerConfig, reg *metric.Registry, kv storage.KV, l *slog.Logger, sh *shutdown.Handler) (*httpserver.Server, error) {
	router := httpserver.NewRouter(httpserver.RouterConfig{
		Metrics: reg.Handler(),
		Health: func(ctx context.Context) error {
			_, err := kv.Count(ctx)
			return err
		},
		Logger: l.With("component", "http"),
	})
	hs := httpserver.New(cfg.Server.HTTP.Addr, router)
	if err := hs.Listen(); err != nil {
		return nil, err
	}
	go func() {
		if err := hs.Serve(); err != nil {
			l.Error("HTTP server error", "error", err)
			sh.Trigger()
		}
	}()
	return hs, nil
}

// watchConfig reapplies log.level whenever the configuration file changes.
// --verbose pins the level to debug.
func watchConfig(path string, o overrides, l *slog.Logger) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(l))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		_ = w.Stop()
		return nil, err
	}
	w.OnChange(func(changed string) {
		if o.Verbose {
			return
		}
		cfg, err := loadConfig(changed, o)
		if err != nil {
			l.Warn("configuration reload failed", "file", changed, "error", err)
			return
		}
		prev := logger.GetLevel()
		if err := logger.SetLevel(cfg.Log.Level); err != nil {
			l.Warn("configuration reload failed", "file", changed, "error", err)
			return
		}
		if cur := logger.GetLevel(); cur != prev {
			l.Info("log level changed", "from", prev, "to", cur)
		}
	})
	w.StartAsync()
	return w, nil
}
