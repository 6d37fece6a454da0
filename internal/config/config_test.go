package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(envSigningKey, "0123456789abcdef0123456789abcdef")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("unexpected listen addr: %s", cfg.ListenAddr)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("unexpected ttl: %v", cfg.TokenTTL)
	}
	if cfg.RateBurst != 50 || cfg.RatePerSec != 25 {
		t.Fatalf("unexpected rate limits: %d/%d", cfg.RateBurst, cfg.RatePerSec)
	}
	if cfg.DatabaseDSN != "" || cfg.GRPCAddr != "" {
		t.Fatalf("expected optional settings empty: %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv(envSigningKey, "0123456789abcdef0123456789abcdef")
	t.Setenv(envListenAddr, ":9999")
	t.Setenv(envTokenTTL, "45m")
	t.Setenv(envRateBurst, "10")
	t.Setenv(envRatePerSec, "5")
	t.Setenv(envPGDSN, "postgres://localhost/classtrack")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":9999" {
		t.Fatalf("unexpected listen addr: %s", cfg.ListenAddr)
	}
	if cfg.TokenTTL != 45*time.Minute {
		t.Fatalf("unexpected ttl: %v", cfg.TokenTTL)
	}
	if cfg.RateBurst != 10 || cfg.RatePerSec != 5 {
		t.Fatalf("unexpected rate limits: %d/%d", cfg.RateBurst, cfg.RatePerSec)
	}
	if cfg.DatabaseDSN != "postgres://localhost/classtrack" {
		t.Fatalf("unexpected dsn: %s", cfg.DatabaseDSN)
	}
}

func TestLoadRequiresSigningKey(t *testing.T) {
	t.Setenv(envSigningKey, "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing signing key")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv(envSigningKey, "0123456789abcdef0123456789abcdef")

	t.Setenv(envTokenTTL, "not-a-duration")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for bad ttl")
	}
	t.Setenv(envTokenTTL, "-5m")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for negative ttl")
	}
	t.Setenv(envTokenTTL, "1h")

	t.Setenv(envRateBurst, "zero")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for bad rate burst")
	}
}
