//go:build integration

// Package integration runs the POS back office against a real PostgreSQL
// started with testcontainers.
package integration

import (
	"context"
	"testing"
	"time"

	"github.com/erp/pos/internal/infrastructure/config"
	"github.com/erp/pos/internal/infrastructure/migration"
	"github.com/erp/pos/internal/infrastructure/persistence"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// TestDB is a migrated PostgreSQL database in its own container
type TestDB struct {
	*persistence.Database
	Config    *config.DatabaseConfig
	Container testcontainers.Container
}

// NewTestDB starts a fresh PostgreSQL container and applies every migration.
// The container is terminated when the test finishes.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("pos_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := &config.DatabaseConfig{
		Driver:       config.DriverPostgres,
		Host:         host,
		Port:         port.Int(),
		User:         "postgres",
		Password:     "postgres",
		DBName:       "pos_test",
		SSLMode:      "disable",
		MaxOpenConns: 16,
		MaxIdleConns: 4,
	}

	migrator, err := migration.Open(cfg, zap.NewNop())
	require.NoError(t, err, "Failed to open migration connection")
	require.NoError(t, migrator.Up(), "Failed to apply migrations")
	require.NoError(t, migrator.Close())

	db, err := persistence.NewDatabase(cfg)
	require.NoError(t, err, "Failed to connect to database")
	t.Cleanup(func() {
		_ = db.Close()
	})

	return &TestDB{Database: db, Config: cfg, Container: container}
}
