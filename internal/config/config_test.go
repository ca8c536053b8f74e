// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != DefaultDataDir {
		t.Errorf("expected default data dir, got %s", cfg.DataDir)
	}
	if cfg.ReservesPath != filepath.Join(DefaultDataDir, DefaultReservesName) {
		t.Errorf("unexpected reserves path: %s", cfg.ReservesPath)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "dataDir: " + dir + "\nlogLevel: debug\ntuners:\n  - index: 0\n    types: [\"GR\"]\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != dir {
		t.Errorf("expected data dir %s, got %s", dir, cfg.DataDir)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.LogLevel)
	}
	if len(cfg.Tuners) != 1 || cfg.Tuners[0].Index != 0 {
		t.Errorf("expected one tuner with index 0, got %+v", cfg.Tuners)
	}
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RESERVES_DATA_DIR", dir)
	t.Setenv("RESERVES_LOG_LEVEL", "warn")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != dir {
		t.Errorf("expected env override for data dir, got %s", cfg.DataDir)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("expected env override for log level, got %s", cfg.LogLevel)
	}
}
