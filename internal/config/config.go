// Package config loads the engine's environment configuration via
// viper + mapstructure, grounded on spigell-hh-responder's
// viper/mapstructure config loader.
package config

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	appbatch "github.com/mohammadpnp/resumebatch/internal/application/batch"
)

// Config is the process-wide configuration, bound from environment
// variables per spec.md §6.
type Config struct {
	DatabaseURL   string `mapstructure:"database_url"`
	Port          string `mapstructure:"port"`
	GeminiAPIKey  string `mapstructure:"gemini_api_key"`
	GeminiModel   string `mapstructure:"gemini_model"`
	StorageBucket string `mapstructure:"storage_bucket"`
	S3Endpoint    string `mapstructure:"s3_endpoint"`
	S3Region      string `mapstructure:"s3_region"`

	LeaseSeconds        int `mapstructure:"lease_seconds"`
	MaxRetries          int `mapstructure:"max_retries"`
	WorkerBackoffBaseMS int `mapstructure:"worker_backoff_base_ms"`
	WatchdogIntervalMS  int `mapstructure:"watchdog_interval_ms"`
}

// Load reads LEASE_SECONDS, MAX_RETRIES, WORKER_BACKOFF_BASE_MS,
// STORAGE_BUCKET, WATCHDOG_INTERVAL_MS, DATABASE_URL, PORT,
// GEMINI_API_KEY, GEMINI_MODEL from the environment, defaulting
// unset numeric fields to the spec's reference values.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := appbatch.DefaultEngineConfig()
	v.SetDefault("lease_seconds", defaults.LeaseSeconds)
	v.SetDefault("max_retries", defaults.MaxRetries)
	v.SetDefault("worker_backoff_base_ms", defaults.WorkerBackoffBaseMS)
	v.SetDefault("watchdog_interval_ms", defaults.WatchdogIntervalMS)
	v.SetDefault("port", "8080")
	v.SetDefault("gemini_model", "gemini-2.5-pro")

	for _, key := range []string{
		"database_url", "port", "gemini_api_key", "gemini_model", "storage_bucket",
		"s3_endpoint", "s3_region", "lease_seconds", "max_retries",
		"worker_backoff_base_ms", "watchdog_interval_ms",
	} {
		_ = v.BindEnv(key, strings.ToUpper(key))
	}

	var cfg Config
	decodeHook := mapstructure.ComposeDecodeHookFunc(mapstructure.StringToTimeDurationHookFunc())
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHook)); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// EngineConfig projects the subset of Config the batch engine needs
// into an appbatch.EngineConfig.
func (c Config) EngineConfig() appbatch.EngineConfig {
	return appbatch.EngineConfig{
		LeaseSeconds:        c.LeaseSeconds,
		MaxRetries:          c.MaxRetries,
		WorkerBackoffBaseMS: c.WorkerBackoffBaseMS,
		WatchdogIntervalMS:  c.WatchdogIntervalMS,
		StorageBucket:       c.StorageBucket,
	}
}
