// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session store backends.
const (
	SessionBackendSQLite = "sqlite"
	SessionBackendRedis  = "redis"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	BackendURL     string
	APINamespace   string
	BackendTimeout time.Duration
	BackendRPS     float64

	ListenAddr    string
	SecureCookies bool

	SessionBackend string
	DBPath         string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	// SecretKey seals backend session cookies at rest. Nil when unset.
	SecretKey      []byte
	SessionIdleTTL time.Duration
	ViewIdleTTL    time.Duration
	SweepInterval  time.Duration

	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a validated Config.
//
// A .env file is read first when present (BESTCARS_ENV_FILE, default ".env");
// variables already set in the environment win over the file.
//
// Optional variables with defaults: BESTCARS_BACKEND_URL (http://localhost:8000),
// BESTCARS_API_NAMESPACE (djangoapp), BESTCARS_BACKEND_TIMEOUT (10s),
// BESTCARS_BACKEND_RPS (0, unlimited), BESTCARS_LISTEN_ADDR (127.0.0.1:8080),
// BESTCARS_SECURE_COOKIES (false), BESTCARS_SESSION_BACKEND (sqlite),
// BESTCARS_DB_PATH (bestcars.db), BESTCARS_REDIS_ADDR (127.0.0.1:6379),
// BESTCARS_REDIS_PASSWORD, BESTCARS_REDIS_DB (0), BESTCARS_SECRET_KEY (64 hex
// chars), BESTCARS_SESSION_IDLE_TTL (24h), BESTCARS_VIEW_IDLE_TTL (30m),
// BESTCARS_SWEEP_INTERVAL (5m), BESTCARS_LOG_LEVEL (info), BESTCARS_LOG_FORMAT (text).
func Load() (*Config, error) {
	envFile := ".env"
	if v, ok := os.LookupEnv("BESTCARS_ENV_FILE"); ok {
		envFile = v
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		BackendURL:     stringEnv("BESTCARS_BACKEND_URL", "http://localhost:8000"),
		APINamespace:   strings.Trim(stringEnv("BESTCARS_API_NAMESPACE", "djangoapp"), "/"),
		ListenAddr:     stringEnv("BESTCARS_LISTEN_ADDR", "127.0.0.1:8080"),
		SessionBackend: strings.ToLower(stringEnv("BESTCARS_SESSION_BACKEND", SessionBackendSQLite)),
		DBPath:         stringEnv("BESTCARS_DB_PATH", "bestcars.db"),
		RedisAddr:      stringEnv("BESTCARS_REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword:  os.Getenv("BESTCARS_REDIS_PASSWORD"),
		LogFormat:      strings.ToLower(stringEnv("BESTCARS_LOG_FORMAT", "text")),
	}

	u, err := url.Parse(cfg.BackendURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("BESTCARS_BACKEND_URL must be an absolute http(s) URL, got %q", cfg.BackendURL)
	}
	if cfg.APINamespace == "" {
		return nil, fmt.Errorf("BESTCARS_API_NAMESPACE must not be empty")
	}

	if cfg.BackendTimeout, err = durationEnv("BESTCARS_BACKEND_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.SessionIdleTTL, err = durationEnv("BESTCARS_SESSION_IDLE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ViewIdleTTL, err = durationEnv("BESTCARS_VIEW_IDLE_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.SweepInterval, err = durationEnv("BESTCARS_SWEEP_INTERVAL", 5*time.Minute); err != nil {
		return nil, err
	}

	if v, ok := os.LookupEnv("BESTCARS_BACKEND_RPS"); ok && v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil || rps < 0 {
			return nil, fmt.Errorf("BESTCARS_BACKEND_RPS must be a non-negative number, got %q", v)
		}
		cfg.BackendRPS = rps
	}

	if v, ok := os.LookupEnv("BESTCARS_SECURE_COOKIES"); ok && v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("BESTCARS_SECURE_COOKIES has invalid boolean %q: %w", v, err)
		}
		cfg.SecureCookies = secure
	}

	switch cfg.SessionBackend {
	case SessionBackendSQLite, SessionBackendRedis:
	default:
		return nil, fmt.Errorf("BESTCARS_SESSION_BACKEND must be %q or %q, got %q",
			SessionBackendSQLite, SessionBackendRedis, cfg.SessionBackend)
	}

	if v, ok := os.LookupEnv("BESTCARS_REDIS_DB"); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil || db < 0 {
			return nil, fmt.Errorf("BESTCARS_REDIS_DB must be a non-negative integer, got %q", v)
		}
		cfg.RedisDB = db
	}

	if v, ok := os.LookupEnv("BESTCARS_SECRET_KEY"); ok && v != "" {
		key, err := hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("BESTCARS_SECRET_KEY must be hex-encoded: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("BESTCARS_SECRET_KEY must be 64 hex chars (32 bytes), got %d bytes", len(key))
		}
		cfg.SecretKey = key
	}

	if v, ok := os.LookupEnv("BESTCARS_LOG_LEVEL"); ok && v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("BESTCARS_LOG_LEVEL has invalid level %q: %w", v, err)
		}
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("BESTCARS_LOG_FORMAT must be \"text\" or \"json\", got %q", cfg.LogFormat)
	}

	return cfg, nil
}

// NewLogger builds the process logger described by LogLevel and LogFormat.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func stringEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s has invalid duration %q: %w", key, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, d)
	}
	return d, nil
}
