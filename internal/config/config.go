// Package config loads bootstrap configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvDBURI      = "WC_DB_URI"
	EnvDBName     = "WC_DB_NAME"
	EnvCleanStart = "WC_DB_CLEAN_START"
	EnvLanguages  = "WC_LANGUAGES"
	EnvLogLevel   = "WC_LOG_LEVEL"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultDBName         = "wexcommerce"
	DefaultLanguages      = "en,fr"
	DefaultConnectTimeout = 10 * time.Second
	DefaultQueryTimeout   = 30 * time.Second
)

// Config holds everything the database bootstrap needs.
type Config struct {
	DBURI          string
	DBName         string
	CleanStart     bool // drop the database on Close (test/reset runs)
	Languages      []string
	LogLevel       string
	ConnectTimeout time.Duration
	QueryTimeout   time.Duration
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first when present; missing files are
// not an error.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		DBURI:          os.Getenv(EnvDBURI),
		DBName:         getEnv(EnvDBName, DefaultDBName),
		Languages:      ParseLanguages(getEnv(EnvLanguages, DefaultLanguages)),
		LogLevel:       getEnv(EnvLogLevel, "info"),
		ConnectTimeout: DefaultConnectTimeout,
		QueryTimeout:   DefaultQueryTimeout,
	}

	if v := os.Getenv(EnvCleanStart); v != "" {
		cleanStart, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s value %q: %w", EnvCleanStart, v, err)
		}
		cfg.CleanStart = cleanStart
	}

	if cfg.DBURI == "" {
		return Config{}, fmt.Errorf("%s is not set", EnvDBURI)
	}

	return cfg, nil
}

// ParseLanguages splits a comma-separated language list, trimming
// whitespace and dropping empty entries.
func ParseLanguages(raw string) []string {
	var langs []string
	for _, part := range strings.Split(raw, ",") {
		if lang := strings.TrimSpace(part); lang != "" {
			langs = append(langs, lang)
		}
	}
	return langs
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
