package main

import (
	"testing"

	"github.com/charmbracelet/log"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/sankey")
	t.Setenv("PORT", "")
	t.Setenv("SESSION_CACHE_SIZE", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Port != ":3000" || cfg.SessionCacheSize != 256 || cfg.LogLevel != log.InfoLevel {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/sankey")
	t.Setenv("PORT", "8080")
	t.Setenv("SESSION_CACHE_SIZE", "10")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Port != ":8080" || cfg.SessionCacheSize != 10 || cfg.LogLevel != log.DebugLevel {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing database url", map[string]string{"DATABASE_URL": ""}},
		{"bad cache size", map[string]string{"DATABASE_URL": "postgres://x", "SESSION_CACHE_SIZE": "0"}},
		{"bad log level", map[string]string{"DATABASE_URL": "postgres://x", "LOG_LEVEL": "loud"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SESSION_CACHE_SIZE", "")
			t.Setenv("LOG_LEVEL", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := loadConfig(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
