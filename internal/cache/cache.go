// Package cache provides the HTTP response cache with ETag support.
//
// Two backends implement Store: Memory, an in-process TTL map, and Redis,
// shared between API replicas. Both are purged whenever the change listener
// reports a write to the retail tables.
package cache

import (
	"context"
	"crypto/md5"
	"fmt"
	"time"
)

// Store is a TTL cache of serialized responses keyed by request path.
//
// Every Purge advances the store's generation. Callers read Generation before
// loading the data a value is computed from and hand it to Set; a value from
// an earlier generation is never served.
type Store interface {
	// Get retrieves a cached value. ok is false on a miss or expired entry.
	Get(ctx context.Context, key string) (data []byte, etag string, ok bool, err error)
	// Generation returns the current purge generation.
	Generation(ctx context.Context) (uint64, error)
	// Set stores a value computed at generation gen with a TTL and returns
	// its ETag. The value is dropped if gen is no longer current.
	Set(ctx context.Context, key string, gen uint64, data []byte, ttl time.Duration) (etag string, err error)
	// Purge drops every entry and advances the generation.
	Purge(ctx context.Context) error
	// Stats reports backend statistics for /health/cache.
	Stats(ctx context.Context) (map[string]any, error)
	// Enabled reports whether the store caches at all.
	Enabled() bool
}

// Key namespaces the analytics responses.
func Key(parts ...string) string {
	key := "analytics"
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

// ComputeETag generates a weak ETag from response data using MD5.
func ComputeETag(data []byte) string {
	hash := md5.Sum(data)
	return fmt.Sprintf(`W/"%x"`, hash[:8])
}

// CheckETagMatch checks if If-None-Match header matches the current ETag.
func CheckETagMatch(ifNoneMatch, etag string) bool {
	if ifNoneMatch == "" {
		return false
	}
	if ifNoneMatch == "*" {
		return true
	}
	// Exact match covers the common single-etag case
	return ifNoneMatch == etag
}
