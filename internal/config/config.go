// Package config holds process-level deployment configuration: provider
// credentials/defaults, the durable store DSNs, and output locations. This
// is distinct from the per-run Experiment/Arena payloads (cmd/evalengine),
// which are request data validated with their own hand-written Validate()
// methods rather than routed through koanf.
package config

import (
	"fmt"
	"time"
)

// Config is the complete deployment configuration for the evaluation engine.
type Config struct {
	Run       RunConfig                 `yaml:"run" koanf:"run"`
	Providers map[string]ProviderConfig `yaml:"providers" koanf:"providers"`
	Judge     JudgeConfig               `yaml:"judge" koanf:"judge"`
	Store     StoreConfig               `yaml:"store" koanf:"store"`
	Artifacts ArtifactsConfig           `yaml:"artifacts" koanf:"artifacts"`
}

// RunConfig contains orchestrator/arena execution defaults.
type RunConfig struct {
	Concurrency   int    `yaml:"concurrency" koanf:"concurrency" validate:"gte=0"`
	SampleTimeout string `yaml:"sample_timeout,omitempty" koanf:"sample_timeout"`
	Timeout       string `yaml:"timeout,omitempty" koanf:"timeout"`
}

// ProviderConfig contains per-provider deployment settings (base URL
// override, rate limit). Per-run API keys come through the Experiment/Arena
// config payload (see internal/orchestrator). This section is loaded and
// validated; provider construction does not read it.
type ProviderConfig struct {
	BaseURL   string  `yaml:"base_url,omitempty" koanf:"base_url"`
	RateLimit float64 `yaml:"rate_limit,omitempty" koanf:"rate_limit" validate:"gte=0"`
}

// JudgeConfig mirrors the G_EVAL_* environment variables as deployment
// settings. It is loaded and validated; runs take their judge from the
// judgeLlm block of their own payload and do not fall back to this section.
type JudgeConfig struct {
	Provider    string  `yaml:"provider" koanf:"provider"`
	Model       string  `yaml:"model" koanf:"model"`
	MaxTokens   int     `yaml:"max_tokens" koanf:"max_tokens" validate:"gte=0"`
	Temperature float64 `yaml:"temperature" koanf:"temperature" validate:"gte=0,lte=1"`
}

// StoreConfig configures the durable Postgres store and the ephemeral Redis
// job-status mirror.
type StoreConfig struct {
	PostgresDSN  string `yaml:"postgres_dsn" koanf:"postgres_dsn"`
	RedisAddr    string `yaml:"redis_addr" koanf:"redis_addr"`
	RedisDB      int    `yaml:"redis_db,omitempty" koanf:"redis_db"`
	JobStatusTTL string `yaml:"job_status_ttl,omitempty" koanf:"job_status_ttl"`
}

// ArtifactsConfig controls where per-run reports (results.json and
// detailed_results.csv) are written. Format is validated but the artifacts
// writer does not read it.
type ArtifactsConfig struct {
	Dir    string `yaml:"dir" koanf:"dir"`
	Format string `yaml:"format" koanf:"format" validate:"omitempty,oneof=json jsonl"`
}

// DefaultConfig returns a Config with sensible defaults for local use.
func DefaultConfig() Config {
	return Config{
		Run: RunConfig{
			Concurrency:   5,
			SampleTimeout: "2m",
			Timeout:       "30m",
		},
		Judge: JudgeConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			MaxTokens:   512,
			Temperature: 0,
		},
		Store: StoreConfig{
			RedisAddr:    "127.0.0.1:6379",
			JobStatusTTL: "1h",
		},
		Artifacts: ArtifactsConfig{
			Dir:    "artifacts/deepeval_results",
			Format: "json",
		},
	}
}

// Validate checks cross-field invariants that validator struct tags can't
// express on their own.
func (c *Config) Validate() error {
	if c.Run.Concurrency < 0 {
		return fmt.Errorf("run.concurrency must be non-negative, got: %d", c.Run.Concurrency)
	}
	if c.Run.SampleTimeout != "" {
		if _, err := time.ParseDuration(c.Run.SampleTimeout); err != nil {
			return fmt.Errorf("invalid run.sample_timeout: %w", err)
		}
	}
	if c.Run.Timeout != "" {
		if _, err := time.ParseDuration(c.Run.Timeout); err != nil {
			return fmt.Errorf("invalid run.timeout: %w", err)
		}
	}
	if c.Store.JobStatusTTL != "" {
		if _, err := time.ParseDuration(c.Store.JobStatusTTL); err != nil {
			return fmt.Errorf("invalid store.job_status_ttl: %w", err)
		}
	}
	for name, p := range c.Providers {
		if p.RateLimit < 0 {
			return fmt.Errorf("providers.%s.rate_limit must be non-negative, got: %f", name, p.RateLimit)
		}
	}
	validFormats := map[string]bool{"json": true, "jsonl": true}
	if c.Artifacts.Format != "" && !validFormats[c.Artifacts.Format] {
		return fmt.Errorf("invalid artifacts.format: %s (valid: json, jsonl)", c.Artifacts.Format)
	}
	return nil
}
