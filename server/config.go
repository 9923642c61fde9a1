package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

type config struct {
	DatabaseURL      string
	Port             string
	SessionCacheSize int
	LogLevel         log.Level
}

// loadConfig reads the environment, after loading .env if there is one.
func loadConfig() (*config, error) {
	_ = godotenv.Load()

	cfg := &config{
		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		Port:             ":3000",
		SessionCacheSize: 256,
		LogLevel:         log.InfoLevel,
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		if strings.HasPrefix(port, ":") {
			cfg.Port = port
		} else {
			cfg.Port = ":" + port
		}
	}

	if raw := strings.TrimSpace(os.Getenv("SESSION_CACHE_SIZE")); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size <= 0 {
			return nil, fmt.Errorf("SESSION_CACHE_SIZE must be a positive integer, got %q", raw)
		}
		cfg.SessionCacheSize = size
	}

	if raw := strings.TrimSpace(os.Getenv("LOG_LEVEL")); raw != "" {
		level, err := log.ParseLevel(raw)
		if err != nil {
			return nil, fmt.Errorf("LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = level
	}

	return cfg, nil
}
