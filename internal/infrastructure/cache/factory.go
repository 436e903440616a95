package cache

import (
	"context"
	"fmt"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// OpenIdempotencyStore picks the store named by cfg.Backend. An unreachable
// Redis degrades to the in-memory store unless cfg.Strict is set. A degraded
// store does not deduplicate retries that land on another instance.
func OpenIdempotencyStore(ctx context.Context, cfg config.IdempotencyConfig, redisCfg config.RedisConfig, log *zap.Logger) (shared.IdempotencyStore, error) {
	if log == nil {
		log = zap.NewNop()
	}

	switch cfg.Backend {
	case "", BackendMemory:
		log.Info("idempotency store ready", zap.String("backend", BackendMemory))
		return NewInMemoryIdempotencyStore(0), nil
	case BackendRedis:
		store, err := NewRedisIdempotencyStore(ctx, redisCfg)
		if err == nil {
			log.Info("idempotency store ready", zap.String("backend", BackendRedis), zap.String("addr", redisCfg.Addr()))
			return store, nil
		}
		if cfg.Strict {
			return nil, fmt.Errorf("idempotency: redis unavailable: %w", err)
		}
		log.Warn("redis unreachable, falling back to in-memory idempotency store", zap.Error(err))
		return NewInMemoryIdempotencyStore(0), nil
	default:
		return nil, fmt.Errorf("idempotency: unknown backend %q", cfg.Backend)
	}
}
