package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CATCHALL_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("REDIS_HOST", "")
	t.Setenv("REDIS_PORT", "")
	t.Setenv("REDIS_PASSWORD", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CatchAll.Poll.InitialDelay != 30*time.Second {
		t.Fatalf("expected 30s grace period default, got %v", cfg.CatchAll.Poll.InitialDelay)
	}
	if cfg.CatchAll.Poll.Interval != 60*time.Second {
		t.Fatalf("expected 60s interval default, got %v", cfg.CatchAll.Poll.Interval)
	}
	if cfg.CatchAll.Poll.MaxAttempts != 15 {
		t.Fatalf("expected 15 attempt budget default, got %d", cfg.CatchAll.Poll.MaxAttempts)
	}
	if cfg.LLM.Provider != "anthropic" {
		t.Fatalf("expected anthropic default provider, got %q", cfg.LLM.Provider)
	}
	if cfg.Session.Backend != "inmemory" {
		t.Fatalf("expected inmemory session default, got %q", cfg.Session.Backend)
	}
	if cfg.Reports.Dir != "reports" {
		t.Fatalf("expected reports dir default, got %q", cfg.Reports.Dir)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CATCHALL_API_KEY", "key-123")
	t.Setenv("ANTHROPIC_API_KEY", "ak-456")
	t.Setenv("REDIS_HOST", "redis.internal")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CatchAll.APIKey != "key-123" {
		t.Fatalf("expected CATCHALL_API_KEY override, got %q", cfg.CatchAll.APIKey)
	}
	if cfg.LLM.APIKey != "ak-456" {
		t.Fatalf("expected ANTHROPIC_API_KEY override, got %q", cfg.LLM.APIKey)
	}
	if cfg.Session.Redis.Addr() != "redis.internal:6380" {
		t.Fatalf("expected redis override, got %q", cfg.Session.Redis.Addr())
	}
}
