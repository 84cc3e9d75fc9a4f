package cache

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/shiprelay/backend/internal/domain/shared"
	"github.com/shiprelay/backend/internal/infrastructure/config"
)

// Backend names accepted by NewIdempotencyStore
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendAuto   = "auto"
)

// redisConnector is swapped in tests
type redisConnector func(ctx context.Context, opts RedisOptions) (shared.IdempotencyStore, error)

func connectRedis(ctx context.Context, opts RedisOptions) (shared.IdempotencyStore, error) {
	return NewRedisIdempotencyStore(ctx, opts)
}

// NewIdempotencyStore builds the store selected by idempotency.backend.
//
//   - memory: in-process map
//   - redis:  Redis, startup fails when it is unreachable
//   - auto:   Redis, falling back to memory with a warning
func NewIdempotencyStore(ctx context.Context, idem config.IdempotencyConfig, rc config.RedisConfig, log *zap.Logger) (shared.IdempotencyStore, error) {
	return newIdempotencyStore(ctx, idem, rc, log, connectRedis)
}

func newIdempotencyStore(ctx context.Context, idem config.IdempotencyConfig, rc config.RedisConfig, log *zap.Logger, connect redisConnector) (shared.IdempotencyStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	opts := RedisOptions{Addr: rc.Addr(), Password: rc.Password, DB: rc.DB}

	switch idem.Backend {
	case "", BackendMemory:
		log.Info("using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(), nil
	case BackendRedis:
		store, err := connect(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("redis required for idempotency but unavailable: %w", err)
		}
		log.Info("using Redis idempotency store", zap.String("addr", opts.Addr))
		return store, nil
	case BackendAuto:
		store, err := connect(ctx, opts)
		if err == nil {
			log.Info("using Redis idempotency store", zap.String("addr", opts.Addr))
			return store, nil
		}
		log.Warn("Redis unavailable, falling back to in-memory idempotency store; "+
			"duplicate deliveries to different instances will not be detected",
			zap.Error(err),
		)
		return NewInMemoryIdempotencyStore(), nil
	default:
		return nil, fmt.Errorf("unknown idempotency backend %q", idem.Backend)
	}
}
