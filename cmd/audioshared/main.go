package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"

	"audioshare/internal/api"
	"audioshare/internal/blob"
	"audioshare/internal/config"
	"audioshare/internal/logging"
	"audioshare/internal/preflight"
	"audioshare/internal/share"
	"audioshare/internal/store"
	"audioshare/internal/transcode"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "audioshared: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, resolvedPath, found, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	if found {
		logger.Info("config loaded", logging.String("path", resolvedPath))
	} else {
		logger.Warn("no config file found, using defaults", logging.String("looked_at", resolvedPath))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lock := flock.New(filepath.Join(cfg.Paths.DataDir, "audioshared.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire instance lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another audioshared instance holds %s", lock.Path())
	}
	defer func() {
		_ = lock.Unlock()
	}()

	st, err := store.Open(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	results := preflight.Run(ctx, cfg, st)
	for _, result := range results {
		if result.Passed {
			logger.Debug("preflight check passed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail))
			continue
		}
		logger.Error("preflight check failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail))
	}
	if err := preflight.Err(results); err != nil {
		return err
	}

	blobs, err := blob.NewS3Store(ctx, cfg.Blob)
	if err != nil {
		return err
	}

	pipeline := transcode.NewPipeline(cfg, blobs, logger)
	svc := share.NewService(cfg, st, blobs, pipeline, logger)
	server := api.NewServer(cfg, svc, st, logger)

	logger.Info("starting", logging.String("bind", cfg.Paths.APIBind), logging.String("db", st.Path()))
	return server.Run(ctx)
}
