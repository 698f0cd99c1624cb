package idempotency

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ricare/lending/pkg/tlsutil"
)

// DefaultTTL bounds how long a payment idempotency key is remembered.
const DefaultTTL = 24 * time.Hour

const keyPrefix = "lending:emi-idempotency:"

// inFlight marks a claimed key whose payment has not been recorded yet.
const inFlight = ""

// RedisConfig holds the connection settings for the idempotency store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// CAFile enables TLS when set.
	CAFile string
}

// NewRedisClient connects and pings Redis.
func NewRedisClient(ctx context.Context, cfg RedisConfig, logger *slog.Logger) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.CAFile != "" {
		tlsCfg, err := tlsutil.ClientConfig(cfg.CAFile, "")
		if err != nil {
			return nil, fmt.Errorf("redis tls: %w", err)
		}
		opts.TLSConfig = tlsCfg
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	logger.Info("connected to redis", "addr", cfg.Addr, "db", cfg.DB, "tls", cfg.CAFile != "")
	return client, nil
}

// RedisStore implements port.IdempotencyStore on Redis SETNX.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisStore creates a store; a non-positive ttl falls back to DefaultTTL.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Claim reserves key, or reports the transaction already recorded for it.
func (s *RedisStore) Claim(ctx context.Context, key string) (string, bool, error) {
	k := keyPrefix + key
	ok, err := s.client.SetNX(ctx, k, inFlight, s.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("claim idempotency key: %w", err)
	}
	if ok {
		return "", true, nil
	}

	txID, err := s.client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		// Expired between SETNX and GET; the caller may retry.
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read idempotency key: %w", err)
	}
	return txID, false, nil
}

// Complete records transactionID against a claimed key.
func (s *RedisStore) Complete(ctx context.Context, key, transactionID string) error {
	if err := s.client.Set(ctx, keyPrefix+key, transactionID, s.ttl).Err(); err != nil {
		return fmt.Errorf("complete idempotency key: %w", err)
	}
	return nil
}

// Release forgets a claim so the client can retry with the same key.
func (s *RedisStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}
