package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr         string
	DatabaseURL  string
	TokenKey     string
	TLSCert      string
	TLSKey       string
	LogLevel     string
	LogFormat    string
	RateLimit    float64
	RateBurst    int
	BatchWorkers int
}

// Load reads .env (if present) and then the process environment. Values
// already set in the environment win over the file.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := Config{
		Addr:        getenv("ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		TokenKey:    os.Getenv("TOKEN_KEY"),
		TLSCert:     os.Getenv("TLS_CERT"),
		TLSKey:      os.Getenv("TLS_KEY"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		LogFormat:   getenv("LOG_FORMAT", "json"),
	}

	var err error
	if cfg.RateLimit, err = strconv.ParseFloat(getenv("RATE_LIMIT", "5"), 64); err != nil || cfg.RateLimit <= 0 {
		return Config{}, fmt.Errorf("RATE_LIMIT must be a positive number")
	}
	if cfg.RateBurst, err = strconv.Atoi(getenv("RATE_BURST", "10")); err != nil || cfg.RateBurst <= 0 {
		return Config{}, fmt.Errorf("RATE_BURST must be a positive integer")
	}
	if cfg.BatchWorkers, err = strconv.Atoi(getenv("BATCH_WORKERS", "4")); err != nil || cfg.BatchWorkers <= 0 {
		return Config{}, fmt.Errorf("BATCH_WORKERS must be a positive integer")
	}
	if (cfg.TLSCert == "") != (cfg.TLSKey == "") {
		return Config{}, fmt.Errorf("TLS_CERT and TLS_KEY must be set together")
	}
	if cfg.DatabaseURL != "" && cfg.TokenKey == "" {
		return Config{}, fmt.Errorf("TOKEN_KEY environment variable is not set")
	}
	return cfg, nil
}

// Persistence reports whether the design store and user accounts are enabled.
func (c Config) Persistence() bool { return c.DatabaseURL != "" }

func (c Config) TLS() bool { return c.TLSCert != "" }

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
