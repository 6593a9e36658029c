package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Server.Listen != ":8080" {
		t.Errorf("listen = %q, want :8080", cfg.Server.Listen)
	}
	if time.Duration(cfg.Cache.TTL) != 5*time.Minute {
		t.Errorf("cache ttl = %v, want 5m", time.Duration(cfg.Cache.TTL))
	}
	if time.Duration(cfg.Auth.TokenTTL) != 15*time.Minute {
		t.Errorf("token ttl = %v, want 15m", time.Duration(cfg.Auth.TokenTTL))
	}
	if cfg.RateLimit.PerMethod["DELETE"] != 15 {
		t.Errorf("DELETE limit = %d, want 15", cfg.RateLimit.PerMethod["DELETE"])
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  listen: ":9999"
  log_level: debug
postgres:
  dsn: postgres://localhost/anime
cache:
  ttl: 90s
auth:
  secret: file-secret
  token_ttl: 30m
rate_limit:
  enabled: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.Server.Listen != ":9999" {
		t.Errorf("listen = %q, want :9999", cfg.Server.Listen)
	}
	if time.Duration(cfg.Cache.TTL) != 90*time.Second {
		t.Errorf("cache ttl = %v, want 90s", time.Duration(cfg.Cache.TTL))
	}
	if time.Duration(cfg.Auth.TokenTTL) != 30*time.Minute {
		t.Errorf("token ttl = %v, want 30m", time.Duration(cfg.Auth.TokenTTL))
	}
	if cfg.RateLimit.Enabled {
		t.Error("rate limiting should be disabled by the file")
	}
	// Untouched sections keep their defaults.
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("redis addr = %q, want default", cfg.Redis.Addr)
	}
}

func TestLoadFromFile_BadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("cache:\n  ttl: five-minutes\n"), 0o644)
	if _, err := LoadFromFile(path); err == nil {
		t.Fatal("expected error for unparseable duration")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ANIME_LISTEN", ":7070")
	t.Setenv("ANIME_POSTGRES_DSN", "postgres://envhost/anime")
	t.Setenv("ANIME_REDIS_DB", "3")
	t.Setenv("ANIME_JWT_SECRET", "env-secret")

	cfg := Default()
	LoadFromEnv(cfg)

	if cfg.Server.Listen != ":7070" {
		t.Errorf("listen = %q, want :7070", cfg.Server.Listen)
	}
	if cfg.Postgres.DSN != "postgres://envhost/anime" {
		t.Errorf("dsn = %q", cfg.Postgres.DSN)
	}
	if cfg.Redis.DB != 3 {
		t.Errorf("redis db = %d, want 3", cfg.Redis.DB)
	}
	if cfg.Auth.Secret != "env-secret" {
		t.Errorf("secret = %q, want env-secret", cfg.Auth.Secret)
	}
}
