// Package main is the entry point for the discussion board server.
//
// main stays minimal: load config, build the logger, create the data
// directory, and hand off to internal/server, which wires everything else.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"

	"github.com/hayato-dev/discussboard/internal/config"
	"github.com/hayato-dev/discussboard/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := newLogger(*cfg)

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	srv, err := server.New(*cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// newLogger builds the process logger. LOG_FORMAT=pretty switches to a
// colorized handler for local development; the default is plain text.
func newLogger(cfg config.Config) *slog.Logger {
	if cfg.LogFormat == config.LogFormatPretty {
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
			Level:      cfg.LogLevel,
			TimeFormat: time.Kitchen,
		}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
}
