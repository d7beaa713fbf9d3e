package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisEntryPrefix = "insights:cache:entry:"
	redisGenKey      = "insights:cache:generation"
	redisScanBatch   = 500
)

// Connect initializes a Redis client from URL or host:port input.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: redisURL})
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Redis stores entries as hashes {data, etag} with a key TTL. Entry keys
// embed the purge generation, so a value written for an old generation is
// unreachable even if it lands after the purge.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a Redis-backed cache.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Enabled always reports true; cmd/api picks Memory when caching is off.
func (c *Redis) Enabled() bool { return true }

func entryKey(gen uint64, key string) string {
	return redisEntryPrefix + strconv.FormatUint(gen, 10) + ":" + key
}

// Generation reads the shared purge counter. A missing counter is 0.
func (c *Redis) Generation(ctx context.Context) (uint64, error) {
	gen, err := c.client.Get(ctx, redisGenKey).Uint64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis generation: %w", err)
	}
	return gen, nil
}

// Get retrieves a cached value of the current generation.
func (c *Redis) Get(ctx context.Context, key string) ([]byte, string, bool, error) {
	gen, err := c.Generation(ctx)
	if err != nil {
		return nil, "", false, err
	}
	fields, err := c.client.HGetAll(ctx, entryKey(gen, key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, "", false, nil
		}
		return nil, "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	data, ok := fields["data"]
	if !ok {
		return nil, "", false, nil
	}
	return []byte(data), fields["etag"], true, nil
}

// Set stores a value with a TTL under generation gen.
func (c *Redis) Set(ctx context.Context, key string, gen uint64, data []byte, ttl time.Duration) (string, error) {
	etag := ComputeETag(data)
	redisKey := entryKey(gen, key)
	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, redisKey, "data", data, "etag", etag)
		p.Expire(ctx, redisKey, ttl)
		return nil
	})
	if err != nil {
		return etag, fmt.Errorf("redis set %s: %w", key, err)
	}
	return etag, nil
}

// Purge advances the generation, then deletes every entry key.
func (c *Redis) Purge(ctx context.Context) error {
	if err := c.client.Incr(ctx, redisGenKey).Err(); err != nil {
		return fmt.Errorf("redis purge: %w", err)
	}
	iter := c.client.Scan(ctx, 0, redisEntryPrefix+"*", redisScanBatch).Iterator()
	batch := make([]string, 0, redisScanBatch)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == redisScanBatch {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("redis purge: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(batch) > 0 {
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis purge: %w", err)
		}
	}
	return nil
}

// Stats counts entry keys and reports the generation.
func (c *Redis) Stats(ctx context.Context) (map[string]any, error) {
	gen, err := c.Generation(ctx)
	if err != nil {
		return nil, err
	}
	keys := 0
	iter := c.client.Scan(ctx, 0, redisEntryPrefix+"*", redisScanBatch).Iterator()
	for iter.Next(ctx) {
		keys++
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	return map[string]any{
		"backend":     "redis",
		"enabled":     true,
		"generation":  gen,
		"active_keys": keys,
	}, nil
}
