package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/moneyfield/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/moneyfield/internal/adapter/repository/postgres"
	"github.com/iho/moneyfield/internal/catalog"
	"github.com/iho/moneyfield/internal/domain"
	"github.com/iho/moneyfield/internal/infrastructure/config"
	"github.com/iho/moneyfield/internal/infrastructure/logger"
	"github.com/iho/moneyfield/internal/infrastructure/metrics"
	"github.com/iho/moneyfield/internal/infrastructure/postgres"
	"github.com/iho/moneyfield/internal/monetize"
	"github.com/iho/moneyfield/internal/record"
)

const (
	storeMemory   = "memory"
	storePostgres = "postgres"
)

// app is the wiring shared by every command.
type app struct {
	cfg       *config.Config
	logger    zerolog.Logger
	registry  *domain.Registry
	catalog   *catalog.Catalog
	metrics   *metrics.Metrics
	gatherer  prometheus.Gatherer
	storeKind string
	timeout   time.Duration
	closers   []func()
}

// openStore is replaced in tests.
var openStore = func(ctx context.Context, a *app) (record.Store, error) {
	switch a.storeKind {
	case storeMemory:
		return memory.NewRecordRepository(nil), nil
	case storePostgres:
		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL:    a.cfg.DatabaseURL,
			MaxConns:       a.cfg.DatabaseMaxConns,
			MinConns:       a.cfg.DatabaseMinConns,
			ConnectTimeout: a.cfg.DatabaseTimeout,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		return postgresRepo.NewRecordRepository(pool, nil, a.logger), nil
	default:
		return nil, fmt.Errorf("unknown store %q, want %s or %s", a.storeKind, storeMemory, storePostgres)
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var (
		defaultCurrency string
		strict          bool
		metricsFile     string
		logLevel        string
	)

	rootCmd := &cobra.Command{
		Use:           "moneyctl",
		Short:         "Inspect and exercise monetized record fields",
		Long:          `A command line tool for the currency registry, amount conversion and catalog records.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("currency") {
				cfg.DefaultCurrency = defaultCurrency
			}
			if flags.Changed("strict") {
				cfg.StrictAssignment = strict
			}
			if flags.Changed("metrics-file") {
				cfg.MetricsFile = metricsFile
			}
			if flags.Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return a.init(cfg, cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.finish()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&defaultCurrency, "currency", "", "Registry default currency (overrides MONEY_DEFAULT_CURRENCY)")
	flags.BoolVar(&strict, "strict", false, "Accept only money input on every field (overrides MONEY_STRICT_ASSIGNMENT)")
	flags.StringVar(&metricsFile, "metrics-file", "", "Write a Prometheus textfile snapshot on exit")
	flags.StringVar(&logLevel, "log-level", "", "Log level (overrides LOG_LEVEL)")
	flags.StringVar(&a.storeKind, "store", storePostgres, "Record store: memory or postgres")
	flags.DurationVar(&a.timeout, "timeout", 30*time.Second, "Timeout for store operations")

	rootCmd.AddCommand(
		currenciesCmd(a),
		modelsCmd(a),
		centsCmd(a),
		migrateCmd(a),
		putCmd(a),
		getCmd(a),
	)

	return rootCmd
}

func (a *app) init(cfg *config.Config, cmd *cobra.Command) error {
	a.cfg = cfg
	a.logger = logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: cmd.ErrOrStderr(),
	})

	registry, err := domain.NewRegistry(cfg.DefaultCurrency)
	if err != nil {
		return err
	}
	a.registry = registry

	promRegistry := prometheus.NewRegistry()
	a.metrics = metrics.New(promRegistry)
	a.gatherer = promRegistry

	opts := []monetize.ModelOption{
		monetize.WithLogger(a.logger),
		monetize.WithObserver(a.metrics),
	}
	if cfg.StrictAssignment {
		opts = append(opts, monetize.WithStrictAssignment())
	}

	a.catalog, err = catalog.New(registry, opts...)
	return err
}

func (a *app) store(ctx context.Context) (record.Store, error) {
	s, err := openStore(ctx, a)
	if err != nil {
		return nil, err
	}
	return a.metrics.InstrumentStore(a.storeKind, s), nil
}

func (a *app) finish() error {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil

	if a.cfg == nil || a.cfg.MetricsFile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(a.cfg.MetricsFile, a.gatherer); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	a.logger.Debug().Str("path", a.cfg.MetricsFile).Msg("metrics written")
	return nil
}
