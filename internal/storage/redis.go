package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const processedKeyPrefix = "processed:"

// RedisVisited is a Redis-backed processed-homepage set for service mode,
// where dedup should survive across batches for a TTL. It satisfies
// pipeline.Visited.
type RedisVisited struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisVisited(addr string, ttl time.Duration) *RedisVisited {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return &RedisVisited{client: rdb, ttl: ttl}
}

func (r *RedisVisited) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisVisited) Close() error {
	return r.client.Close()
}

// LoadOrStore claims a homepage atomically: SETNX succeeds for exactly one
// caller, who then owns the fetch. The key expires after the configured TTL.
func (r *RedisVisited) LoadOrStore(ctx context.Context, homepage string) (bool, error) {
	key := processedKeyPrefix + hashKey(homepage)
	claimed, err := r.client.SetNX(ctx, key, "1", r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim homepage %s: %w", homepage, err)
	}
	return !claimed, nil
}

// hashKey keeps Redis keys fixed-length and free of URL characters.
func hashKey(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:])
}
