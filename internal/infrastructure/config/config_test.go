package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// configEnvKeys lists every variable the tests touch
var configEnvKeys = []string{
	"POS_APP_NAME",
	"POS_APP_ENV",
	"POS_APP_PORT",
	"POS_DATABASE_DRIVER",
	"POS_DATABASE_PATH",
	"POS_DATABASE_HOST",
	"POS_DATABASE_PORT",
	"POS_DATABASE_USER",
	"POS_DATABASE_PASSWORD",
	"POS_DATABASE_DBNAME",
	"POS_DATABASE_SSLMODE",
	"POS_DATABASE_MAX_OPEN_CONNS",
	"POS_DATABASE_MAX_IDLE_CONNS",
	"POS_JWT_SECRET",
	"POS_JWT_REQUIRED",
	"POS_STORAGE_ENABLED",
	"POS_STORAGE_BUCKET",
	"POS_IDEMPOTENCY_BACKEND",
	"POS_IDEMPOTENCY_TTL",
	"POS_IDEMPOTENCY_STRICT",
	"POS_TELEMETRY_SAMPLING_RATIO",
}

// clearEnv unsets every config variable for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnvKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "pos-backoffice", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, DriverSQLite, cfg.Database.Driver)
		assert.Equal(t, "pos.db", cfg.Database.Path)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, 5000, cfg.Database.BusyTimeout)
		assert.Equal(t, "memory", cfg.Idempotency.Backend)
		assert.Equal(t, 24*time.Hour, cfg.Idempotency.TTL)
		assert.False(t, cfg.Storage.Enabled)
		assert.False(t, cfg.JWT.Required)
	})

	t.Run("loads values from environment variables with POS prefix", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("POS_APP_NAME", "test-app")
		t.Setenv("POS_APP_PORT", "9000")
		t.Setenv("POS_DATABASE_DRIVER", "postgres")
		t.Setenv("POS_DATABASE_HOST", "testdb.local")
		t.Setenv("POS_DATABASE_PORT", "5433")
		t.Setenv("POS_DATABASE_USER", "testuser")
		t.Setenv("POS_DATABASE_PASSWORD", "testpass")
		t.Setenv("POS_DATABASE_DBNAME", "testdb")
		t.Setenv("POS_DATABASE_MAX_OPEN_CONNS", "50")
		t.Setenv("POS_DATABASE_MAX_IDLE_CONNS", "10")
		t.Setenv("POS_IDEMPOTENCY_BACKEND", "redis")
		t.Setenv("POS_IDEMPOTENCY_TTL", "2h")
		t.Setenv("POS_IDEMPOTENCY_STRICT", "true")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, DriverPostgres, cfg.Database.Driver)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "testdb", cfg.Database.DBName)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, "redis", cfg.Idempotency.Backend)
		assert.Equal(t, 2*time.Hour, cfg.Idempotency.TTL)
		assert.True(t, cfg.Idempotency.Strict)
	})

	t.Run("rejects unknown database driver", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("POS_DATABASE_DRIVER", "mysql")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("POS_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("POS_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("zero MaxOpenConns uses default", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("POS_DATABASE_MAX_OPEN_CONNS", "0")

		cfg, err := Load()
		require.NoError(t, err)
		// 0 is treated as "not set", so default (25) is used
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	})

	t.Run("rejects unknown idempotency backend", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("POS_IDEMPOTENCY_BACKEND", "memcached")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "idempotency.backend")
	})

	t.Run("storage requires a bucket when enabled", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("POS_STORAGE_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.bucket")
	})

	t.Run("required jwt needs a secret", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("POS_JWT_REQUIRED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret is required")
	})

	t.Run("rejects sampling ratio above one", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("POS_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func(t *testing.T) {
		clearEnv(t)
		t.Setenv("POS_APP_ENV", "production")
		t.Setenv("POS_DATABASE_DRIVER", "postgres")
		t.Setenv("POS_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		t.Setenv("POS_DATABASE_PASSWORD", "secure-password")
		t.Setenv("POS_DATABASE_SSLMODE", "require")
	}

	t.Run("requires jwt.secret at least 32 characters in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("POS_JWT_SECRET", "short-secret")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret must be at least 32 characters")
	})

	t.Run("requires database.password in production", func(t *testing.T) {
		setValidProductionBase(t)
		os.Unsetenv("POS_DATABASE_PASSWORD")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("POS_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("sqlite production skips postgres checks", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("POS_APP_ENV", "production")

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Database.IsSQLite())
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		setValidProductionBase(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid postgres DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Driver:   DriverPostgres,
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost")
		assert.Contains(t, dsn, "5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Driver:   DriverPostgres,
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		// URL-encoded password should be in the DSN
		assert.Contains(t, dsn, "pass%40word%23123")
	})

	t.Run("sqlite DSN takes an immediate transaction lock", func(t *testing.T) {
		cfg := DatabaseConfig{Driver: DriverSQLite, Path: "/var/lib/pos/pos.db", BusyTimeout: 5000}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "/var/lib/pos/pos.db?")
		assert.Contains(t, dsn, "_txlock=immediate")
		assert.Contains(t, dsn, "_busy_timeout=5000")
		assert.Contains(t, dsn, "_foreign_keys=on")
	})

	t.Run("in-memory sqlite uses a shared cache", func(t *testing.T) {
		cfg := DatabaseConfig{Driver: DriverSQLite, Path: ":memory:", BusyTimeout: 100}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "file::memory:?")
		assert.Contains(t, dsn, "cache=shared")
	})
}
