// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

const (
	DefaultDataDir      = "./data"
	DefaultReservesName = "reserves.json"
	DefaultRulesName    = "rules.json"
	DefaultLogLevel     = "info"
	DefaultLogService   = "reserves"
	DefaultHealthAddr   = ":9090"
	DefaultCacheTTL     = 15 * time.Minute
	DefaultTracingType  = "noop"
)

// Defaults returns a Config populated with the built-in fallback values.
// Every other loading stage (file, env) only needs to set the fields it
// actually wants to override.
func Defaults() Config {
	return Config{
		DataDir:           DefaultDataDir,
		LogLevel:          DefaultLogLevel,
		LogService:        DefaultLogService,
		HealthAddr:        DefaultHealthAddr,
		CatalogueCacheTTL: DefaultCacheTTL,
		TracingExporter:   DefaultTracingType,
		Scheduler: SchedulerConfig{
			BaseInterval: 10 * time.Minute,
			MaxInterval:  60 * time.Minute,
			Jitter:       60 * time.Second,
			StartupDelay: 10 * time.Second,
		},
	}
}
