package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisBackend maps each profile key onto one Redis string key.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// ConnectRedis parses a redis:// URL and verifies the connection
func ConnectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisBackend namespaces keys as "blackshot:<profile>:<key>"
func NewRedisBackend(client *redis.Client, profile string) *RedisBackend {
	return &RedisBackend{
		client: client,
		prefix: "blackshot:" + profile + ":",
	}
}

func (b *RedisBackend) redisKey(key string) string {
	return b.prefix + key
}

// Get reads one value
func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := b.client.Get(ctx, b.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Set stores one value without expiry
func (b *RedisBackend) Set(ctx context.Context, key string, value []byte) error {
	return b.client.Set(ctx, b.redisKey(key), value, 0).Err()
}

// Delete removes one key
func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	return b.client.Del(ctx, b.redisKey(key)).Err()
}

// Keys scans the profile namespace
func (b *RedisBackend) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := b.client.Scan(ctx, 0, b.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), b.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

// Usage sums key and value lengths in bytes
func (b *RedisBackend) Usage(ctx context.Context) (int64, error) {
	keys, err := b.Keys(ctx)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, key := range keys {
		n, err := b.client.StrLen(ctx, b.redisKey(key)).Result()
		if err != nil {
			return 0, err
		}
		total += int64(len(key)) + n
	}
	return total, nil
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}
