package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/sankey"
	"github.com/meikuraledutech/sankey/postgres"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
	})

	cfg, err := loadConfig()
	if err != nil {
		logger.Fatal("config", "err", err)
	}
	logger.SetLevel(cfg.LogLevel)

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect", "err", err)
	}
	defer pool.Close()

	var store sankey.Store = postgres.New(pool)

	sessions, err := newSessionCache(cfg.SessionCacheSize)
	if err != nil {
		logger.Fatal("session cache", "err", err)
	}

	app := newApp(store, sessions, logger)

	logger.Info("listening", "addr", cfg.Port, "session_cache", cfg.SessionCacheSize)
	if err := app.Listen(cfg.Port); err != nil {
		logger.Fatal("listen", "err", err)
	}
}
