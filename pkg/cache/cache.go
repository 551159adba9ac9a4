// Package cache is a JSON-over-Redis cache. A nil *Store is valid and
// behaves as an always-missing cache, so callers never branch on whether
// Redis is configured.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// New wraps an existing client.
func New(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Connect dials REDIS_ADDR and pings it. It returns (nil, nil) when no
// address is configured.
func Connect(ctx context.Context) (*Store, error) {
	addr := config.RedisAddr()
	if addr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: config.RedisPassword(),
		DB:       0,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache: redis ping: %w", err)
	}
	return New(rdb, config.CacheTTL()), nil
}

// Get unmarshals the value under key into dest and reports a hit.
func (s *Store) Get(ctx context.Context, key string, dest interface{}) bool {
	if s == nil {
		return false
	}

	val, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil || json.Unmarshal(val, dest) != nil {
		metrics.CacheMisses.WithLabelValues(family(key)).Inc()
		return false
	}

	metrics.CacheHits.WithLabelValues(family(key)).Inc()
	return true
}

// Set stores value under key for the store's TTL.
func (s *Store) Set(ctx context.Context, key string, value interface{}) error {
	if s == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, data, s.ttl).Err()
}

// Del removes keys.
func (s *Store) Del(ctx context.Context, keys ...string) error {
	if s == nil || len(keys) == 0 {
		return nil
	}
	return s.rdb.Del(ctx, keys...).Err()
}

// Version returns the generation counter stored under key, 0 if unset.
// Callers embed it in their data keys so a Bump retires every entry
// written under an older generation, including ones still being filled.
func (s *Store) Version(ctx context.Context, key string) (int64, error) {
	if s == nil {
		return 0, nil
	}

	n, err := s.rdb.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Bump advances the generation counter under key.
func (s *Store) Bump(ctx context.Context, key string) error {
	if s == nil {
		return nil
	}
	return s.rdb.Incr(ctx, key).Err()
}

// Versioned formats the data key for key at generation gen.
func Versioned(key string, gen int64) string {
	return fmt.Sprintf("%s@%d", key, gen)
}

// family drops the generation suffix so metrics stay one series per listing.
func family(key string) string {
	name, _, _ := strings.Cut(key, "@")
	return name
}

// Close releases the Redis connection pool.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.rdb.Close()
}
