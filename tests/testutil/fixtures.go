package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/iho/moneyfield/internal/catalog"
	"github.com/iho/moneyfield/internal/domain"
	"github.com/iho/moneyfield/internal/infrastructure/postgres"
)

// TestDB provides a migrated test database connection.
type TestDB struct {
	Pool *pgxpool.Pool
	t    *testing.T
}

// NewTestDB connects to DATABASE_URL and applies the embedded migrations.
// The test is skipped when DATABASE_URL is unset or -short is given.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL is not set")
	}

	if err := postgres.NewMigrator(dbURL, "", zerolog.Nop()).Up(); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{DatabaseURL: dbURL, MaxConns: 10})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	return &TestDB{Pool: pool, t: t}
}

// TruncateAll removes all rows from the catalog tables.
func (db *TestDB) TruncateAll(ctx context.Context) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx, `
		TRUNCATE TABLE products;
		TRUNCATE TABLE services;
		TRUNCATE TABLE transactions;
		TRUNCATE TABLE dummy_products;
	`)
	if err != nil {
		db.t.Fatalf("failed to truncate tables: %v", err)
	}
}

// NewCatalog builds the example catalog over a registry with defaultCode.
func NewCatalog(t *testing.T, defaultCode string) *catalog.Catalog {
	t.Helper()

	registry, err := domain.NewRegistry(defaultCode)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	c, err := catalog.New(registry)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return c
}
