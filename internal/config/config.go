// Package config reads the replica's environment, optionally seeded from a
// .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	PostgresDSN        string
	FeedWSURL          string
	ElasticURL         string
	BackendURL         string
	AdminAddr          string
	FeedPollInterval   time.Duration
	FeedBatchSize      int
	CORSOrigins        []string
	BackendTimeout     time.Duration
	DeadLetterCapacity int
}

var defaultOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv, applying defaults for unset keys.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		PostgresDSN: getenv("POSTGRES_DSN"),
		FeedWSURL:   getenv("FEED_WS_URL"),
		ElasticURL:  getenv("ELASTIC_URL"),
		BackendURL:  getenv("BACKEND_URL"),
		AdminAddr:   getenv("ADMIN_ADDR"),
		CORSOrigins: splitList(getenv("CORS_ORIGINS")),
	}
	if cfg.AdminAddr == "" {
		cfg.AdminAddr = ":8080"
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = defaultOrigins
	}

	var err error
	if cfg.FeedPollInterval, err = duration(getenv, "FEED_POLL_INTERVAL", time.Second); err != nil {
		return Config{}, err
	}
	if cfg.BackendTimeout, err = duration(getenv, "BACKEND_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.FeedBatchSize, err = positive(getenv, "FEED_BATCH_SIZE", 200); err != nil {
		return Config{}, err
	}
	if cfg.DeadLetterCapacity, err = positive(getenv, "DEAD_LETTER_CAPACITY", 500); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func duration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("config %s=%q: want a positive duration", key, v)
	}
	return d, nil
}

func positive(getenv func(string) string, key string, def int) (int, error) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("config %s=%q: want a positive integer", key, v)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
