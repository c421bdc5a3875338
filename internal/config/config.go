package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config captures runtime configuration sourced from environment variables.
type Config struct {
	Environment  string
	HTTPPort     string
	DatabasePath string
	JWTSecret    string

	// Rate limiting knobs. Each action class gets its own fixed window.
	InviteLimit     int
	InviteWindow    time.Duration
	OrgCreateLimit  int
	OrgCreateWindow time.Duration
}

// Load reads env vars and falls back to defaults so the server can boot with zero configuration.
func Load() (Config, error) {
	cfg := Config{
		Environment:     getEnv("GUARDRAIL_ENV", "development"),
		HTTPPort:        getEnv("GUARDRAIL_HTTP_PORT", "8080"),
		DatabasePath:    getEnv("GUARDRAIL_DB_PATH", filepath.Join("data", "guardrail.db")),
		JWTSecret:       getEnv("GUARDRAIL_JWT_SECRET", ""),
		InviteLimit:     getEnvInt("GUARDRAIL_INVITE_LIMIT", 5),
		InviteWindow:    getEnvDuration("GUARDRAIL_INVITE_WINDOW", 15*time.Minute),
		OrgCreateLimit:  getEnvInt("GUARDRAIL_ORG_CREATE_LIMIT", 3),
		OrgCreateWindow: getEnvDuration("GUARDRAIL_ORG_CREATE_WINDOW", time.Hour),
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return Config{}, fmt.Errorf("ensure data directory: %w", err)
	}

	// An unset secret gets a random one-off value. Sessions then do not
	// survive a restart, so deployments should always set it.
	if cfg.JWTSecret == "" {
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return Config{}, fmt.Errorf("generate jwt secret: %w", err)
		}
		cfg.JWTSecret = hex.EncodeToString(secret)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return n
		}
	}

	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			return d
		}
	}

	return fallback
}
