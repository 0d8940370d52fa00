package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"walletscout/pkg/config"
	"walletscout/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage Wallet Scout configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables
  - Configuration file
  - Default values (lowest priority)`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as '.walletscout.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the current configuration including values from all sources.

Sensitive values like the API key are masked.`,
	Run: runConfigShow,
}

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Value types and ranges`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = ".walletscout.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	exampleConfig := `# Wallet Scout Configuration File
#
# This file contains all available configuration options.
# You can also use environment variables, for example:
# XAI_API_KEY, WALLETSCOUT_BATCH_LIMIT, WALLETSCOUT_CONCURRENCY

# xAI API settings
grok:
  # API key (prefer 'walletscout auth login' or XAI_API_KEY)
  api_key: ""

  # API base URL
  base_url: "https://api.x.ai/v1"

  # Model used for lookups
  model: "grok-4-fast"

  # Per-request timeout
  request_timeout: 120s

# Batch processing settings
batch:
  # Max addresses processed per invocation (0 = all remaining)
  limit: 0

  # Number of concurrent lookups
  # Range: 1-20
  concurrency: 5

  # Completed addresses between checkpoint saves
  checkpoint_interval: 10

# Rate limiting and retry
rate_limit:
  # API request budget per minute
  requests_per_minute: 50

  # Retry attempts per address before a degraded result is recorded
  max_retries: 3

  retry_base_delay: 2s
  retry_max_delay: 5m

# Checkpoint persistence
checkpoint:
  # Override the platform data directory (empty = default)
  directory: ""

  # Save attempts before degrading to in-memory progress tracking
  save_retries: 3

  # Resume from a matching checkpoint
  resume: true

# Result dataset
output:
  directory: "./results"
  dataset_file: "results.jsonl"

# Logging
logging:
  # debug, info, warn, error
  level: "info"

  # Optional log file (empty = console only)
  file: ""
`

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0600); err != nil {
		ui.PrintError("Failed to write configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nEdit the file to customize your settings, then validate it with:")
	fmt.Printf("  walletscout config validate --config %s\n", configPath)
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	// Mask the key before printing
	if cfg.Grok.APIKey != "" {
		cfg.Grok.APIKey = maskKey(cfg.Grok.APIKey)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		ui.PrintError("Failed to render configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("[CURRENT CONFIGURATION]")
	fmt.Print(string(data))
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	cfg := config.DefaultConfig()
	if err := cfg.LoadFromFile(configFile); err != nil {
		ui.PrintError("Configuration file is invalid", err.Error())
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration is valid")
}
