package main

import (
	"testing"

	"github.com/albapepper/consumer-insights/internal/config"
)

func TestCacheBackend(t *testing.T) {
	tests := []struct {
		name     string
		enabled  bool
		redisURL string
		want     string
	}{
		{"enabled with redis", true, "redis://localhost:6379/0", backendRedis},
		{"enabled without redis", true, "", backendMemory},
		{"disabled with redis", false, "redis://localhost:6379/0", backendMemory},
		{"disabled without redis", false, "", backendMemory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{CacheEnabled: tt.enabled, RedisURL: tt.redisURL}
			if got := cacheBackend(cfg); got != tt.want {
				t.Fatalf("cacheBackend = %q, want %q", got, tt.want)
			}
		})
	}
}
