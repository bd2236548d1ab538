package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

// Log selects the slog handler.
type Log struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// RedisConfig configures the optional normalized-suite cache. An empty URL
// disables Redis and the server falls back to an in-process cache.
type RedisConfig struct {
	URL           string
	PoolSize      int
	MinIdleConns  int
	DialTimeout   time.Duration
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	SuiteCacheTTL time.Duration
}

// Database selects where regression run history is kept.
type Database struct {
	Driver string // memory, sqlite, postgres
	DSN    string
}

// Suite locates the regression suite document.
type Suite struct {
	Path        string
	Parallelism int
}

type Config struct {
	Server   Server
	Log      Log
	Redis    RedisConfig
	Database Database
	Suite    Suite
}

// FromEnv builds the configuration from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var errs []string
	intVar := func(key string, def int) int {
		n, err := envInt(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return n
	}
	durationVar := func(key string, def time.Duration) time.Duration {
		d, err := envDuration(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return d
	}

	cfg := Config{
		Server: Server{
			Addr:            envOr("SLE_ADDR", ":8080"),
			AllowedOrigins:  envList("SLE_CORS_ORIGINS", []string{"*"}),
			ShutdownTimeout: durationVar("SLE_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Log: Log{
			Level:  strings.ToLower(envOr("LOG_LEVEL", "info")),
			Format: strings.ToLower(envOr("LOG_FORMAT", "json")),
		},
		Redis: RedisConfig{
			URL:           os.Getenv("REDIS_URL"),
			PoolSize:      intVar("REDIS_POOL_SIZE", 10),
			MinIdleConns:  intVar("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:   durationVar("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:   durationVar("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout:  durationVar("REDIS_WRITE_TIMEOUT", 3*time.Second),
			SuiteCacheTTL: durationVar("SUITE_CACHE_TTL", 10*time.Minute),
		},
		Database: Database{
			Driver: strings.ToLower(envOr("DB_DRIVER", "memory")),
			DSN:    os.Getenv("DB_DSN"),
		},
		Suite: Suite{
			Path:        envOr("TEST_CASES_PATH", "docs/test_cases.json"),
			Parallelism: intVar("RUN_PARALLELISM", 0),
		},
	}

	switch cfg.Database.Driver {
	case "memory", "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Sprintf("DB_DRIVER: unsupported driver %q", cfg.Database.Driver))
	}
	switch cfg.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Sprintf("LOG_FORMAT: unsupported format %q", cfg.Log.Format))
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def, fmt.Errorf("%s: want a non-negative integer, got %q", key, v)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return def, fmt.Errorf("%s: want a duration such as 30s, got %q", key, v)
	}
	return d, nil
}

// envList splits a comma separated value, dropping blanks.
func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
