package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/szaher/kontra/internal/archive"
	"github.com/szaher/kontra/internal/config"
	"github.com/szaher/kontra/internal/conversation"
	"github.com/szaher/kontra/internal/debate"
	"github.com/szaher/kontra/internal/llm"
	"github.com/szaher/kontra/internal/server"
	"github.com/szaher/kontra/internal/store"
	"github.com/szaher/kontra/internal/telemetry"
)

func newServeCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the debate HTTP server",
		Long:  "Start the HTTP server: POST /chat, DELETE /chat/{id}, GET /healthz, GET /stats, GET /metrics.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if watch {
				if configPath == "" {
					return fmt.Errorf("--watch requires --config")
				}
				return serveWithWatch(ctx)
			}
			return runServer(ctx)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Restart when the config file changes")
	return cmd
}

// runServer builds the full stack from configuration and serves until
// ctx is cancelled.
func runServer(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := telemetry.NewLogger(os.Stdout, logLevel(cfg.LogLevel))
	metrics := telemetry.NewMetrics()

	kv, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	engineOpts := []debate.EngineOption{
		debate.WithMaxTurns(cfg.Conversation.MaxTurns),
		debate.WithLogger(logger),
		debate.WithMetrics(metrics),
	}
	if cfg.Generation.Model != "" {
		client := llm.NewClientForModel(cfg.Generation.Model)
		engineOpts = append(engineOpts, debate.WithGenerator(debate.NewResponder(client,
			debate.WithModel(cfg.Generation.Model),
			debate.WithMaxTokens(cfg.Generation.MaxTokens),
			debate.WithTemperature(cfg.Generation.Temperature),
			debate.WithTimeout(cfg.GenerationTimeout()),
		)))
		logger.Info("external generation enabled", "model", cfg.Generation.Model)
	} else {
		logger.Info("no model configured, running on the fallback path")
	}
	if cfg.Archive.S3Bucket != "" {
		archiver, err := archive.NewS3(ctx, cfg.Archive.S3Bucket, cfg.Archive.S3Prefix)
		if err != nil {
			return err
		}
		engineOpts = append(engineOpts, debate.WithArchiver(archiver))
		logger.Info("transcript archival enabled", "bucket", cfg.Archive.S3Bucket)
	}

	engine := debate.NewEngine(conversation.NewStore(kv, cfg.TTL()), engineOpts...)
	srv := server.NewServer(engine,
		server.WithLogger(logger),
		server.WithMetrics(metrics),
		server.WithMaxMessageLength(cfg.Conversation.MaxMessageLength),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(cfg.Listen); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// serveWithWatch runs the server and restarts it whenever the config
// file is rewritten.
func serveWithWatch(parent context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watch: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors and config tools often replace the
	// file via rename, which drops a watch on the file itself.
	if err := watcher.Add(filepath.Dir(configPath)); err != nil {
		return fmt.Errorf("config watch: %w", err)
	}
	target := filepath.Clean(configPath)

	for {
		ctx, cancel := context.WithCancel(parent)
		done := make(chan error, 1)
		go func() { done <- runServer(ctx) }()

		restart := false
		for !restart {
			select {
			case err := <-done:
				cancel()
				return err
			case ev := <-watcher.Events:
				if filepath.Clean(ev.Name) == target && ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					slog.Info("config changed, restarting", "path", target)
					restart = true
				}
			case err := <-watcher.Errors:
				slog.Warn("config watch error", "error", err)
			}
		}

		cancel()
		<-done
		if parent.Err() != nil {
			return nil
		}
		// Let the writer finish before reloading.
		time.Sleep(200 * time.Millisecond)
	}
}

// openStore builds the configured KV backend. The returned func
// releases backend resources.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.KV, func(), error) {
	switch cfg.Store.Kind {
	case config.StoreMemory:
		m := store.NewMemory()
		stop := func() {}
		if cfg.Store.SweepSchedule != "" {
			s, err := m.StartSweeper(cfg.Store.SweepSchedule)
			if err != nil {
				return nil, nil, fmt.Errorf("store sweeper: %w", err)
			}
			stop = s
		}
		logger.Info("using in-memory store", "sweep", cfg.Store.SweepSchedule)
		return m, stop, nil

	case config.StoreEtcd:
		e, err := store.DialEtcd(cfg.Store.EtcdEndpoints, 5*time.Second)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using etcd store", "endpoints", cfg.Store.EtcdEndpoints)
		return e, func() { _ = e.Close() }, nil

	case config.StorePostgres:
		p, err := store.DialPostgres(ctx, cfg.Store.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using postgres store")
		return p, p.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store kind %q", cfg.Store.Kind)
}

func logLevel(name string) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
