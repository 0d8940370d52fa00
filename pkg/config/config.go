package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the wallet search tool
type Config struct {
	// Grok API settings
	Grok GrokConfig `yaml:"grok" json:"grok"`

	// Batch processing settings
	Batch BatchConfig `yaml:"batch" json:"batch"`

	// Rate limiting and retry configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Checkpoint settings
	Checkpoint CheckpointConfig `yaml:"checkpoint" json:"checkpoint"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// Duration wraps time.Duration so config files can use values like
// "90s" or "5m".
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// MarshalYAML renders the duration in its string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML accepts duration strings and raw nanosecond integers.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw interface{}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
	case int:
		*d = Duration(v)
	case int64:
		*d = Duration(v)
	case float64:
		*d = Duration(int64(v))
	default:
		return fmt.Errorf("invalid duration value %v", raw)
	}
	return nil
}

// GrokConfig holds xAI API configuration
type GrokConfig struct {
	APIKey         string   `yaml:"api_key" json:"api_key"`
	BaseURL        string   `yaml:"base_url" json:"base_url"`
	Model          string   `yaml:"model" json:"model"`
	RequestTimeout Duration `yaml:"request_timeout" json:"request_timeout"`
}

// BatchConfig holds batch processing configuration
type BatchConfig struct {
	// Limit is the maximum number of addresses processed per invocation.
	// Zero means process all remaining addresses.
	Limit int `yaml:"limit" json:"limit"`
	// Concurrency caps the number of in-flight lookups.
	Concurrency int `yaml:"concurrency" json:"concurrency"`
	// CheckpointInterval is how many completed addresses trigger a
	// checkpoint save.
	CheckpointInterval int `yaml:"checkpoint_interval" json:"checkpoint_interval"`
}

// RateLimitConfig holds rate limiting and retry configuration
type RateLimitConfig struct {
	RequestsPerMinute int      `yaml:"requests_per_minute" json:"requests_per_minute"`
	MaxRetries        int      `yaml:"max_retries" json:"max_retries"`
	RetryBaseDelay    Duration `yaml:"retry_base_delay" json:"retry_base_delay"`
	RetryMaxDelay     Duration `yaml:"retry_max_delay" json:"retry_max_delay"`
}

// CheckpointConfig holds checkpoint persistence configuration
type CheckpointConfig struct {
	// Directory overrides the platform data directory when set.
	Directory string `yaml:"directory" json:"directory"`
	// SaveRetries bounds persistence retries before degrading to
	// in-memory-only checkpointing.
	SaveRetries int `yaml:"save_retries" json:"save_retries"`
	Resume      bool `yaml:"resume" json:"resume"`
}

// OutputConfig holds result dataset configuration
type OutputConfig struct {
	Directory   string `yaml:"directory" json:"directory"`
	DatasetFile string `yaml:"dataset_file" json:"dataset_file"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Grok: GrokConfig{
			BaseURL:        "https://api.x.ai/v1",
			Model:          "grok-4-fast",
			RequestTimeout: Duration(120 * time.Second),
		},
		Batch: BatchConfig{
			Limit:              0, // process all remaining
			Concurrency:        5,
			CheckpointInterval: 10,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 50,
			MaxRetries:        3,
			RetryBaseDelay:    Duration(2 * time.Second),
			RetryMaxDelay:     Duration(5 * time.Minute),
		},
		Checkpoint: CheckpointConfig{
			SaveRetries: 3,
			Resume:      true,
		},
		Output: OutputConfig{
			Directory:   "./results",
			DatasetFile: "results.jsonl",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if apiKey := os.Getenv("XAI_API_KEY"); apiKey != "" {
		c.Grok.APIKey = apiKey
	}
	if model := os.Getenv("WALLETSCOUT_MODEL"); model != "" {
		c.Grok.Model = model
	}
	if baseURL := os.Getenv("WALLETSCOUT_API_BASE_URL"); baseURL != "" {
		c.Grok.BaseURL = baseURL
	}

	if limit := os.Getenv("WALLETSCOUT_BATCH_LIMIT"); limit != "" {
		var val int
		fmt.Sscanf(limit, "%d", &val)
		if val >= 0 {
			c.Batch.Limit = val
		}
	}
	if concurrent := os.Getenv("WALLETSCOUT_CONCURRENCY"); concurrent != "" {
		var val int
		fmt.Sscanf(concurrent, "%d", &val)
		if val > 0 {
			c.Batch.Concurrency = val
		}
	}
	if rpm := os.Getenv("WALLETSCOUT_REQUESTS_PER_MINUTE"); rpm != "" {
		var val int
		fmt.Sscanf(rpm, "%d", &val)
		if val > 0 {
			c.RateLimit.RequestsPerMinute = val
		}
	}

	if outputDir := os.Getenv("WALLETSCOUT_OUTPUT_DIR"); outputDir != "" {
		c.Output.Directory = outputDir
	}
	if checkpointDir := os.Getenv("WALLETSCOUT_CHECKPOINT_DIR"); checkpointDir != "" {
		c.Checkpoint.Directory = checkpointDir
	}
	if logLevel := os.Getenv("WALLETSCOUT_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	// Check in order of precedence
	locations := []string{
		".walletscout.yaml",
		".walletscout.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "walletscout", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "walletscout", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".walletscout.yaml"),
		filepath.Join(os.Getenv("HOME"), ".walletscout.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Grok.BaseURL == "" {
		errs = append(errs, errors.New("grok base URL is required"))
	}
	if c.Grok.Model == "" {
		errs = append(errs, errors.New("grok model is required"))
	}
	if c.Grok.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}

	if c.Batch.Limit < 0 {
		errs = append(errs, errors.New("batch limit cannot be negative"))
	}
	if c.Batch.Concurrency <= 0 {
		errs = append(errs, errors.New("concurrency must be positive"))
	}
	if c.Batch.Concurrency > 20 {
		errs = append(errs, errors.New("concurrency should not exceed 20"))
	}
	if c.Batch.CheckpointInterval <= 0 {
		errs = append(errs, errors.New("checkpoint interval must be positive"))
	}

	if c.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}
	if c.RateLimit.MaxRetries < 0 {
		errs = append(errs, errors.New("max retries cannot be negative"))
	}

	if c.Checkpoint.SaveRetries < 0 {
		errs = append(errs, errors.New("checkpoint save retries cannot be negative"))
	}

	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if c.Output.DatasetFile == "" {
		errs = append(errs, errors.New("dataset file name is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if apiKey, ok := flags["api-key"].(string); ok && apiKey != "" {
		c.Grok.APIKey = apiKey
	}
	if model, ok := flags["model"].(string); ok && model != "" {
		c.Grok.Model = model
	}
	if limit, ok := flags["batch-limit"].(int); ok && limit >= 0 {
		c.Batch.Limit = limit
	}
	if concurrent, ok := flags["concurrency"].(int); ok && concurrent > 0 {
		c.Batch.Concurrency = concurrent
	}
	if retries, ok := flags["max-retries"].(int); ok && retries >= 0 {
		c.RateLimit.MaxRetries = retries
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.Directory = outputDir
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".env"))
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".walletscout.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
