// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/reservesd/reservesd/internal/log"
)

// ParseString reads a string from an environment variable or returns defaultValue.
func ParseString(key, defaultValue string) string {
	logger := log.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		logger.Debug().Str("key", key).Str("source", "default").Msg("using default value")
		return defaultValue
	}
	logger.Debug().Str("key", key).Str("source", "environment").Msg("using environment variable")
	return v
}

// ParseDuration reads a duration (Go duration syntax, e.g. "10m") from an
// environment variable or returns defaultValue on absence or parse error.
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	logger := log.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.Warn().Str("key", key).Str("value", v).Err(err).Msg("invalid duration, using default")
		return defaultValue
	}
	return d
}

// ParseInt reads an integer from an environment variable or returns defaultValue.
func ParseInt(key string, defaultValue int) int {
	logger := log.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn().Str("key", key).Str("value", v).Err(err).Msg("invalid integer, using default")
		return defaultValue
	}
	return i
}

// EnvOverrides captures the environment variables this module understands.
// All of them are optional; an empty/unset variable leaves the existing
// value (defaults merged with file config) untouched.
type EnvOverrides struct {
	DataDir      string
	ReservesPath string
	RulesPath    string
	LogLevel     string
	HealthAddr   string

	CatalogueBaseURL  string
	CatalogueCacheDir string
	RuleStorePath     string
	RedisAddr         string
}

// LoadEnvOverrides reads the supported RESERVES_* environment variables.
func LoadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		DataDir:      ParseString("RESERVES_DATA_DIR", ""),
		ReservesPath: ParseString("RESERVES_RESERVES_PATH", ""),
		RulesPath:    ParseString("RESERVES_RULES_PATH", ""),
		LogLevel:     ParseString("RESERVES_LOG_LEVEL", ""),
		HealthAddr:   ParseString("RESERVES_HEALTH_ADDR", ""),

		CatalogueBaseURL:  ParseString("RESERVES_CATALOGUE_BASE_URL", ""),
		CatalogueCacheDir: ParseString("RESERVES_CATALOGUE_CACHE_DIR", ""),
		RuleStorePath:     ParseString("RESERVES_RULE_STORE_PATH", ""),
		RedisAddr:         ParseString("RESERVES_REDIS_ADDR", ""),
	}
}
