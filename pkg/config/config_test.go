package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Grok.BaseURL != "https://api.x.ai/v1" {
		t.Errorf("Unexpected base URL: %s", cfg.Grok.BaseURL)
	}
	if cfg.Grok.Model != "grok-4-fast" {
		t.Errorf("Unexpected model: %s", cfg.Grok.Model)
	}
	if cfg.Batch.Limit != 0 {
		t.Errorf("Expected unlimited batch by default, got %d", cfg.Batch.Limit)
	}
	if cfg.Batch.Concurrency != 5 {
		t.Errorf("Expected concurrency 5, got %d", cfg.Batch.Concurrency)
	}
	if cfg.Batch.CheckpointInterval != 10 {
		t.Errorf("Expected checkpoint interval 10, got %d", cfg.Batch.CheckpointInterval)
	}
	if cfg.RateLimit.RequestsPerMinute != 50 {
		t.Errorf("Expected 50 requests per minute, got %d", cfg.RateLimit.RequestsPerMinute)
	}
	if !cfg.Checkpoint.Resume {
		t.Error("Expected resume to default to true")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected default config to validate, got %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("XAI_API_KEY", "env-key")
	t.Setenv("WALLETSCOUT_MODEL", "grok-3")
	t.Setenv("WALLETSCOUT_BATCH_LIMIT", "25")
	t.Setenv("WALLETSCOUT_CONCURRENCY", "7")
	t.Setenv("WALLETSCOUT_REQUESTS_PER_MINUTE", "30")
	t.Setenv("WALLETSCOUT_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}

	if cfg.Grok.APIKey != "env-key" {
		t.Errorf("Expected API key from env, got %s", cfg.Grok.APIKey)
	}
	if cfg.Grok.Model != "grok-3" {
		t.Errorf("Expected model from env, got %s", cfg.Grok.Model)
	}
	if cfg.Batch.Limit != 25 {
		t.Errorf("Expected batch limit 25, got %d", cfg.Batch.Limit)
	}
	if cfg.Batch.Concurrency != 7 {
		t.Errorf("Expected concurrency 7, got %d", cfg.Batch.Concurrency)
	}
	if cfg.RateLimit.RequestsPerMinute != 30 {
		t.Errorf("Expected 30 requests per minute, got %d", cfg.RateLimit.RequestsPerMinute)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected debug log level, got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `grok:
  model: "grok-custom"
  request_timeout: 90s
batch:
  limit: 100
  concurrency: 3
rate_limit:
  requests_per_minute: 20
output:
  directory: "/tmp/results"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg := DefaultConfig()
	if err := cfg.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if cfg.Grok.Model != "grok-custom" {
		t.Errorf("Expected model from file, got %s", cfg.Grok.Model)
	}
	if cfg.Grok.RequestTimeout.Std() != 90*time.Second {
		t.Errorf("Expected 90s timeout, got %v", cfg.Grok.RequestTimeout.Std())
	}
	if cfg.Batch.Limit != 100 {
		t.Errorf("Expected batch limit 100, got %d", cfg.Batch.Limit)
	}
	if cfg.Output.Directory != "/tmp/results" {
		t.Errorf("Expected output directory from file, got %s", cfg.Output.Directory)
	}

	// Values the file does not mention keep their defaults
	if cfg.Batch.CheckpointInterval != 10 {
		t.Errorf("Expected default checkpoint interval, got %d", cfg.Batch.CheckpointInterval)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing explicit config file")
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()

	cfg.MergeCommandLineFlags(map[string]interface{}{
		"api-key":     "flag-key",
		"model":       "grok-flag",
		"batch-limit": 5,
		"concurrency": 2,
		"max-retries": 9,
		"output":      "/tmp/out",
		"log-level":   "warn",
	})

	if cfg.Grok.APIKey != "flag-key" {
		t.Errorf("Expected API key from flag, got %s", cfg.Grok.APIKey)
	}
	if cfg.Grok.Model != "grok-flag" {
		t.Errorf("Expected model from flag, got %s", cfg.Grok.Model)
	}
	if cfg.Batch.Limit != 5 {
		t.Errorf("Expected batch limit 5, got %d", cfg.Batch.Limit)
	}
	if cfg.RateLimit.MaxRetries != 9 {
		t.Errorf("Expected max retries 9, got %d", cfg.RateLimit.MaxRetries)
	}
	if cfg.Output.Directory != "/tmp/out" {
		t.Errorf("Expected output from flag, got %s", cfg.Output.Directory)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Expected warn log level, got %s", cfg.Logging.Level)
	}
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Setenv("WALLETSCOUT_MODEL", "env-model")

	cfg, err := Load("", map[string]interface{}{"model": "flag-model", "api-key": "k"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Grok.Model != "flag-model" {
		t.Errorf("Expected flag to win over env, got %s", cfg.Grok.Model)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"negative batch limit", func(c *Config) { c.Batch.Limit = -1 }, false},
		{"zero concurrency", func(c *Config) { c.Batch.Concurrency = 0 }, false},
		{"excessive concurrency", func(c *Config) { c.Batch.Concurrency = 50 }, false},
		{"zero checkpoint interval", func(c *Config) { c.Batch.CheckpointInterval = 0 }, false},
		{"zero requests per minute", func(c *Config) { c.RateLimit.RequestsPerMinute = 0 }, false},
		{"negative max retries", func(c *Config) { c.RateLimit.MaxRetries = -1 }, false},
		{"missing model", func(c *Config) { c.Grok.Model = "" }, false},
		{"missing output directory", func(c *Config) { c.Output.Directory = "" }, false},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := DefaultConfig()
			test.mutate(cfg)

			err := cfg.Validate()
			if test.valid && err != nil {
				t.Errorf("Expected valid config, got %v", err)
			}
			if !test.valid && err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")

	cfg := DefaultConfig()
	cfg.Grok.Model = "grok-saved"
	cfg.Batch.Limit = 42

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded := DefaultConfig()
	if err := loaded.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if loaded.Grok.Model != "grok-saved" {
		t.Errorf("Expected saved model, got %s", loaded.Grok.Model)
	}
	if loaded.Batch.Limit != 42 {
		t.Errorf("Expected saved batch limit, got %d", loaded.Batch.Limit)
	}
}
