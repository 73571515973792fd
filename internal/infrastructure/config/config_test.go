package config_test

import (
	"testing"
	"time"

	"github.com/iho/moneyfield/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MONEY_DEFAULT_CURRENCY", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("MIGRATIONS_PATH", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DefaultCurrency != "USD" {
		t.Fatalf("expected default currency USD, got %q", cfg.DefaultCurrency)
	}

	if cfg.StrictAssignment {
		t.Fatalf("expected lenient assignment by default")
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.MigrationsPath != "" {
		t.Fatalf("expected embedded migrations by default, got %q", cfg.MigrationsPath)
	}

	if cfg.LogFormat != "json" {
		t.Fatalf("expected json log format, got %q", cfg.LogFormat)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MONEY_DEFAULT_CURRENCY", "EUR")
	t.Setenv("MONEY_STRICT_ASSIGNMENT", "true")
	t.Setenv("DATABASE_URL", "postgres://example/db")
	t.Setenv("DATABASE_MAX_CONNS", "4")
	t.Setenv("DATABASE_MIN_CONNS", "2")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv("METRICS_FILE", "/tmp/moneyfield.prom")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DefaultCurrency != "EUR" || !cfg.StrictAssignment {
		t.Fatalf("expected money overrides, got %q strict=%v", cfg.DefaultCurrency, cfg.StrictAssignment)
	}

	if cfg.DatabaseURL != "postgres://example/db" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if cfg.DatabaseMaxConns != 4 || cfg.DatabaseMinConns != 2 {
		t.Fatalf("expected pool overrides, got max=%d min=%d", cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	}

	if cfg.DatabaseTimeout != 45*time.Second {
		t.Fatalf("expected database timeout override, got %s", cfg.DatabaseTimeout)
	}

	if cfg.LogLevel != "debug" || cfg.LogFormat != "console" {
		t.Fatalf("expected log overrides, got %s/%s", cfg.LogLevel, cfg.LogFormat)
	}

	if cfg.MetricsFile != "/tmp/moneyfield.prom" {
		t.Fatalf("expected metrics file override, got %q", cfg.MetricsFile)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown currency", "MONEY_DEFAULT_CURRENCY", "DOLLARS"},
		{"lowercase currency", "MONEY_DEFAULT_CURRENCY", "usd"},
		{"log level", "LOG_LEVEL", "verbose"},
		{"log format", "LOG_FORMAT", "xml"},
		{"pool bounds", "DATABASE_MIN_CONNS", "50"},
		{"unparseable duration", "DATABASE_TIMEOUT", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := config.Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}
