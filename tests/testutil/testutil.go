// Package testutil opens throwaway databases and drives the HTTP surface in
// tests. Packages that testutil itself imports (persistence, migration) must
// use it from an external _test package.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/erp/pos/internal/infrastructure/config"
	"github.com/erp/pos/internal/infrastructure/migration"
	"github.com/erp/pos/internal/infrastructure/persistence"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// NewSQLiteDB migrates a fresh SQLite file under t.TempDir and opens it.
// Each test gets its own file so parallel tests never share a ledger.
func NewSQLiteDB(t *testing.T) *persistence.Database {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Driver:      config.DriverSQLite,
		Path:        filepath.Join(t.TempDir(), "pos.db"),
		BusyTimeout: 5000,
	}

	m, err := migration.Open(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, m.Up(), "migrations")
	require.NoError(t, m.Close())

	db, err := persistence.NewDatabase(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}
