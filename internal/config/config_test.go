package config

import (
	"slices"
	"testing"
	"time"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/insights")
	for _, k := range []string{"API_PORT", "PORT", "CACHE_TTL_SECONDS", "REDIS_URL", "CORS_ALLOW_ORIGINS", "DEBUG"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIPort != 8000 {
		t.Errorf("APIPort = %d, want 8000", cfg.APIPort)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("CacheTTL = %v, want 5m", cfg.CacheTTL)
	}
	if cfg.RedisURL != "" {
		t.Errorf("RedisURL = %q, want empty", cfg.RedisURL)
	}
	if cfg.Debug {
		t.Error("Debug should default to false")
	}
	if len(cfg.CORSAllowOrigins) != 3 {
		t.Errorf("CORSAllowOrigins = %v", cfg.CORSAllowOrigins)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/insights")
	t.Setenv("API_PORT", "")
	t.Setenv("PORT", "9090")
	t.Setenv("RATE_LIMIT_WINDOW", "30")
	t.Setenv("RECONCILE_INTERVAL_MINUTES", "0")
	t.Setenv("CORS_ALLOW_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIPort != 9090 {
		t.Errorf("APIPort = %d, want PORT fallback 9090", cfg.APIPort)
	}
	if cfg.RateLimitWindow != 30*time.Second {
		t.Errorf("RateLimitWindow = %v", cfg.RateLimitWindow)
	}
	if cfg.ReconcileInterval != 0 {
		t.Errorf("ReconcileInterval = %v, want disabled", cfg.ReconcileInterval)
	}
	if want := []string{"https://a.example", "https://b.example"}; !slices.Equal(cfg.CORSAllowOrigins, want) {
		t.Errorf("CORSAllowOrigins = %v, want %v", cfg.CORSAllowOrigins, want)
	}
	if !cfg.Debug {
		t.Error("Debug should be true")
	}
}

func TestLoad_RejectsInvertedPool(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/insights")
	t.Setenv("DB_POOL_MIN_CONNS", "20")
	t.Setenv("DB_POOL_MAX_CONNS", "5")
	if _, err := Load(); err == nil {
		t.Fatal("expected error when min conns exceed max conns")
	}
}

func TestEnvHelpersIgnoreGarbage(t *testing.T) {
	t.Setenv("X_INT", "abc")
	t.Setenv("X_BOOL", "maybe")
	if got := envInt("X_INT", 7); got != 7 {
		t.Errorf("envInt = %d, want fallback 7", got)
	}
	if got := envBool("X_BOOL", true); !got {
		t.Error("envBool should fall back to true")
	}
}
