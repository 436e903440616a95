//go:build integration

package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) config.RedisConfig {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "Failed to start Redis container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)
	portNum, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	return config.RedisConfig{Host: host, Port: portNum}
}

func TestRedisIdempotencyStore_Integration(t *testing.T) {
	cfg := startRedis(t)
	ctx := context.Background()

	store, err := NewRedisIdempotencyStore(ctx, cfg)
	require.NoError(t, err)
	defer store.Close()

	ok, err := store.Reserve(ctx, "sale-42", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Reserve(ctx, "sale-42", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	record, err := store.Lookup(ctx, "sale-42")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.False(t, record.Completed)

	require.NoError(t, store.Complete(ctx, "sale-42", shared.IdempotencyRecord{StatusCode: 201, Body: []byte(`{"id":1}`)}, time.Minute))

	record, err = store.Lookup(ctx, "sale-42")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.True(t, record.Completed)
	assert.Equal(t, 201, record.StatusCode)
	assert.JSONEq(t, `{"id":1}`, string(record.Body))

	require.NoError(t, store.Release(ctx, "sale-42"))
	record, err = store.Lookup(ctx, "sale-42")
	require.NoError(t, err)
	assert.Nil(t, record)
}
