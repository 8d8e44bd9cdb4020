// Package config loads application configuration from the environment.
//
// A .env file in the working directory is loaded first (if present) via
// godotenv, then individual variables are read with defaults. Nothing here is
// required except what the feature needs: the server runs without an
// OPENAI_API_KEY, category suggestions just fall back to the local matcher.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Log output formats accepted in LOG_FORMAT.
const (
	LogFormatText   = "text"
	LogFormatPretty = "pretty"
)

// Config holds the complete application configuration.
type Config struct {
	Port   int    // PORT, default 8080
	DBPath string // DB_PATH, default data/board.db

	// Category suggestion API. An empty key disables the external call.
	OpenAIKey     string // OPENAI_API_KEY
	OpenAIBaseURL string // OPENAI_BASE_URL, default https://api.openai.com

	LogLevel  slog.Level // LOG_LEVEL: debug|info|warn|error, default info
	LogFormat string     // LOG_FORMAT: text|pretty, default text
}

// Load reads configuration from .env (if present) and the environment.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set variables directly.
	_ = godotenv.Load()

	cfg := &Config{
		Port:          8080,
		DBPath:        "data/board.db",
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: "https://api.openai.com",
		LogLevel:      slog.LevelInfo,
		LogFormat:     LogFormatText,
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("config: invalid PORT %q: %w", portStr, err)
		}
		cfg.Port = port
	}

	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}

	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.OpenAIBaseURL = strings.TrimRight(v, "/")
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level, err := parseLogLevel(v)
		if err != nil {
			return nil, err
		}
		cfg.LogLevel = level
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		switch v {
		case LogFormatText, LogFormatPretty:
			cfg.LogFormat = v
		default:
			return nil, fmt.Errorf("config: invalid LOG_FORMAT %q (want text or pretty)", v)
		}
	}

	return cfg, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("config: invalid LOG_LEVEL %q", s)
	}
}
