package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("JWT_TTL", "")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want development", cfg.Env)
	}
	if cfg.JWTTTL != 72*time.Hour {
		t.Errorf("JWTTTL = %v, want 72h", cfg.JWTTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")
	t.Setenv("JWT_TTL", "24h")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg := Load()
	if cfg.Port != "9000" {
		t.Errorf("Port = %q, want 9000", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Errorf("Env = %q, want production", cfg.Env)
	}
	if cfg.JWTTTL != 24*time.Hour {
		t.Errorf("JWTTTL = %v, want 24h", cfg.JWTTTL)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q", cfg.RedisAddr)
	}
}

func TestLoadBadTTLFallsBack(t *testing.T) {
	t.Setenv("JWT_TTL", "not-a-duration")

	cfg := Load()
	if cfg.JWTTTL != 72*time.Hour {
		t.Errorf("JWTTTL = %v, want 72h fallback", cfg.JWTTTL)
	}
}
