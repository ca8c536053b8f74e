// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/reservesd/reservesd/internal/fsutil"
	"github.com/reservesd/reservesd/internal/log"
)

// Load resolves the final Config by merging, in increasing precedence:
// built-in defaults, the YAML file at configPath (if any), then the
// RESERVES_* environment variables.
func Load(configPath string) (Config, error) {
	cfg := Defaults()

	fc, err := LoadFileConfig(configPath)
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fc)

	env := LoadEnvOverrides()
	mergeEnv(&cfg, env)

	resolvePaths(&cfg)

	if err := confineUnderDataDir(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	logger := log.WithComponent("config")
	logger.Info().
		Str("data_dir", cfg.DataDir).
		Str("reserves_path", cfg.ReservesPath).
		Str("rules_path", cfg.RulesPath).
		Str("log_level", cfg.LogLevel).
		Msg("configuration resolved")

	return cfg, nil
}

func mergeFile(dst *Config, src *FileConfig) {
	if src == nil {
		return
	}
	if src.DataDir != "" {
		dst.DataDir = src.DataDir
	}
	if src.ReservesPath != "" {
		dst.ReservesPath = src.ReservesPath
	}
	if src.RulesPath != "" {
		dst.RulesPath = src.RulesPath
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.LogService != "" {
		dst.LogService = src.LogService
	}
	if src.HealthAddr != "" {
		dst.HealthAddr = src.HealthAddr
	}
	if len(src.Tuners) > 0 {
		dst.Tuners = src.Tuners
	}
	if src.Scheduler.BaseInterval > 0 {
		dst.Scheduler.BaseInterval = src.Scheduler.BaseInterval
	}
	if src.Scheduler.MaxInterval > 0 {
		dst.Scheduler.MaxInterval = src.Scheduler.MaxInterval
	}
	if src.Scheduler.Jitter > 0 {
		dst.Scheduler.Jitter = src.Scheduler.Jitter
	}
	if src.Scheduler.StartupDelay > 0 {
		dst.Scheduler.StartupDelay = src.Scheduler.StartupDelay
	}
	if src.CatalogueBaseURL != "" {
		dst.CatalogueBaseURL = src.CatalogueBaseURL
	}
	if src.CatalogueCacheDir != "" {
		dst.CatalogueCacheDir = src.CatalogueCacheDir
	}
	if src.CatalogueCacheTTL > 0 {
		dst.CatalogueCacheTTL = src.CatalogueCacheTTL
	}
	if src.RuleStorePath != "" {
		dst.RuleStorePath = src.RuleStorePath
	}
	if src.RedisAddr != "" {
		dst.RedisAddr = src.RedisAddr
	}
	if src.TracingEnabled {
		dst.TracingEnabled = true
	}
	if src.TracingExporter != "" {
		dst.TracingExporter = src.TracingExporter
	}
	if src.TracingEndpoint != "" {
		dst.TracingEndpoint = src.TracingEndpoint
	}
}

func mergeEnv(dst *Config, env EnvOverrides) {
	if env.DataDir != "" {
		dst.DataDir = env.DataDir
	}
	if env.ReservesPath != "" {
		dst.ReservesPath = env.ReservesPath
	}
	if env.RulesPath != "" {
		dst.RulesPath = env.RulesPath
	}
	if env.LogLevel != "" {
		dst.LogLevel = env.LogLevel
	}
	if env.HealthAddr != "" {
		dst.HealthAddr = env.HealthAddr
	}
	if env.CatalogueBaseURL != "" {
		dst.CatalogueBaseURL = env.CatalogueBaseURL
	}
	if env.CatalogueCacheDir != "" {
		dst.CatalogueCacheDir = env.CatalogueCacheDir
	}
	if env.RuleStorePath != "" {
		dst.RuleStorePath = env.RuleStorePath
	}
	if env.RedisAddr != "" {
		dst.RedisAddr = env.RedisAddr
	}
}

// resolvePaths fills in ReservesPath/RulesPath relative to DataDir when the
// caller did not specify an explicit location for either document.
func resolvePaths(cfg *Config) {
	if cfg.ReservesPath == "" {
		cfg.ReservesPath = filepath.Join(cfg.DataDir, DefaultReservesName)
	}
	if cfg.RulesPath == "" {
		cfg.RulesPath = filepath.Join(cfg.DataDir, DefaultRulesName)
	}
}

// confineUnderDataDir resolves RuleStorePath and CatalogueCacheDir that were
// given as relative paths to a location physically underneath DataDir,
// rejecting symlink escapes and ".." traversal via fsutil.ConfineRelPath.
// Absolute paths are left as the operator's explicit choice and are not
// confined.
func confineUnderDataDir(cfg *Config) error {
	if cfg.DataDir == "" {
		return nil
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	if cfg.RuleStorePath != "" && !filepath.IsAbs(cfg.RuleStorePath) {
		resolved, err := fsutil.ConfineRelPath(cfg.DataDir, cfg.RuleStorePath)
		if err != nil {
			return fmt.Errorf("rule_store_path escapes data_dir: %w", err)
		}
		cfg.RuleStorePath = resolved
	}
	if cfg.CatalogueCacheDir != "" && !filepath.IsAbs(cfg.CatalogueCacheDir) {
		resolved, err := fsutil.ConfineRelPath(cfg.DataDir, cfg.CatalogueCacheDir)
		if err != nil {
			return fmt.Errorf("catalogue_cache_dir escapes data_dir: %w", err)
		}
		cfg.CatalogueCacheDir = resolved
	}
	return nil
}
