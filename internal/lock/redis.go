package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/fekuna/omnipos-fulfillment-service/internal/apperror"
	"github.com/fekuna/omnipos-fulfillment-service/internal/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Retries  int
}

// RedisLocker holds the store lock in Redis so that the service and the CLI
// never write concurrently, even from different hosts.
type RedisLocker struct {
	client  *redis.Client
	locker  *redislock.Client
	ttl     time.Duration
	retries int
	logger  logger.ZapLogger
}

// NewRedisClient connects and pings Redis.
func NewRedisClient(ctx context.Context, cfg *RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect redis: %w", err)
	}
	return rdb, nil
}

func NewRedisLocker(client *redis.Client, cfg *RedisConfig, log logger.ZapLogger) *RedisLocker {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	retries := cfg.Retries
	if retries <= 0 {
		retries = 3
	}
	return &RedisLocker{
		client:  client,
		locker:  redislock.New(client),
		ttl:     ttl,
		retries: retries,
		logger:  log,
	}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	lk, err := l.locker.Obtain(ctx, key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), l.retries),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, apperror.Busy(key)
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}

	refreshCtx, stopRefresh := context.WithCancel(context.WithoutCancel(ctx))
	refreshed := make(chan struct{})
	go func() {
		defer close(refreshed)
		keepAlive(refreshCtx, l.ttl/2, func(ctx context.Context) error {
			return lk.Refresh(ctx, l.ttl, nil)
		}, func(err error) {
			l.logger.Error("failed to refresh redis lock", zap.String("key", key), zap.Error(err))
		})
	}()

	return func() {
		stopRefresh()
		<-refreshed
		if err := lk.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.logger.Warn("failed to release redis lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

// keepAlive calls refresh every interval until ctx is done. It stops early
// once the lock is lost, since another writer may now hold it.
func keepAlive(ctx context.Context, interval time.Duration, refresh func(ctx context.Context) error, onError func(error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := refresh(ctx)
			if err == nil {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			onError(err)
			if errors.Is(err, redislock.ErrNotObtained) {
				return
			}
		}
	}
}

func (l *RedisLocker) Close() error {
	return l.client.Close()
}
