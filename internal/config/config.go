// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	envListenAddr = "CLASSTRACK_LISTEN_ADDR"
	envGRPCAddr   = "CLASSTRACK_GRPC_ADDR"
	envSigningKey = "CLASSTRACK_AUTH_SECRET"
	envTokenTTL   = "CLASSTRACK_TOKEN_TTL"
	envPGDSN      = "CLASSTRACK_PG_DSN"
	envRateBurst  = "CLASSTRACK_RATE_BURST"
	envRatePerSec = "CLASSTRACK_RATE_PER_SEC"
)

// Config holds runtime settings for the classtrack API server.
//
// Fields:
//   - ListenAddr: bind address for the HTTP endpoint.
//   - GRPCAddr: optional bind address for the gRPC health endpoint.
//   - SigningKey: HMAC key for signing bearer tokens; at least 32 bytes.
//   - TokenTTL: lifetime of issued tokens.
//   - DatabaseDSN: optional PostgreSQL DSN (pgx); in-memory stores when empty.
//   - RateBurst / RatePerSec: per-IP request rate limits.
type Config struct {
	ListenAddr  string
	GRPCAddr    string
	SigningKey  string
	TokenTTL    time.Duration
	DatabaseDSN string
	RateBurst   int
	RatePerSec  int
}

// Load builds a Config from environment variables over development defaults.
// The signing key has no default and its length is enforced by auth.NewIssuer
// at startup.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr: ":8080",
		TokenTTL:   24 * time.Hour,
		RateBurst:  50,
		RatePerSec: 25,
	}

	if v := strings.TrimSpace(os.Getenv(envListenAddr)); v != "" {
		cfg.ListenAddr = v
	}
	cfg.GRPCAddr = strings.TrimSpace(os.Getenv(envGRPCAddr))
	cfg.SigningKey = strings.TrimSpace(os.Getenv(envSigningKey))
	cfg.DatabaseDSN = strings.TrimSpace(os.Getenv(envPGDSN))

	if v := strings.TrimSpace(os.Getenv(envTokenTTL)); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", envTokenTTL, err)
		}
		if ttl <= 0 {
			return nil, fmt.Errorf("%s must be positive", envTokenTTL)
		}
		cfg.TokenTTL = ttl
	}
	if v := strings.TrimSpace(os.Getenv(envRateBurst)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("parse %s: %q is not a positive integer", envRateBurst, v)
		}
		cfg.RateBurst = n
	}
	if v := strings.TrimSpace(os.Getenv(envRatePerSec)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("parse %s: %q is not a positive integer", envRatePerSec, v)
		}
		cfg.RatePerSec = n
	}

	if cfg.SigningKey == "" {
		return nil, errors.New(envSigningKey + " is required")
	}
	return cfg, nil
}
