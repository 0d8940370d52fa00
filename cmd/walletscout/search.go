package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"walletscout/pkg/auth"
	"walletscout/pkg/config"
	"walletscout/pkg/input"
	"walletscout/pkg/logger"
	"walletscout/pkg/models"
	"walletscout/pkg/searcher"
	"walletscout/pkg/ui"
)

var (
	// Search command flags
	addresses    []string
	addressText  string
	inputFileURL string
	outputDir    string
	batchLimit   int
	concurrency  int
	maxRetries   int
	model        string
	apiKey       string
	resume       bool
	forceRestart bool
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Look up X accounts for a batch of wallet addresses",
	Long: `Search X (Twitter) for public posts containing each wallet address and
identify the account most likely to own it.

Addresses can come from repeated --address flags, a free-form --text blob
(newline, comma, or semicolon separated), or a remote --input-file URL
pointing at a CSV, JSON, or plain text document.

Progress is checkpointed as the batch runs. An interrupted or
batch-limited run resumes from where it left off on the next invocation
with the same input set.`,
	Example: `  # Look up two addresses
  walletscout search --address 0xabc... --address 0xdef...

  # Paste a blob of addresses
  walletscout search --text "0xabc...,0xdef..."

  # Process a remote CSV in windows of 100
  walletscout search --input-file https://example.com/wallets.csv --batch-limit 100

  # Start over, discarding any previous checkpoint
  walletscout search --text "0xabc..." --force-restart`,
	RunE: func(cmd *cobra.Command, args []string) error {
		runSearch(cmd, args)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringArrayVarP(&addresses, "address", "a", nil, "wallet address to look up (repeatable)")
	searchCmd.Flags().StringVarP(&addressText, "text", "t", "", "free-form text containing wallet addresses")
	searchCmd.Flags().StringVar(&inputFileURL, "input-file", "", "URL of a CSV, JSON, or text file of addresses")
	searchCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory for the results dataset")
	searchCmd.Flags().IntVar(&batchLimit, "batch-limit", 0, "max addresses to process this run (0 = all)")
	searchCmd.Flags().IntVar(&concurrency, "concurrency", 5, "number of concurrent lookups")
	searchCmd.Flags().IntVar(&maxRetries, "max-retries", 3, "maximum number of retry attempts per address")
	searchCmd.Flags().StringVar(&model, "model", "", "xAI model to use for lookups")
	searchCmd.Flags().StringVar(&apiKey, "api-key", "", "xAI API key (prefer 'walletscout auth login')")
	searchCmd.Flags().BoolVar(&resume, "resume", true, "resume from last checkpoint when input matches")
	searchCmd.Flags().BoolVar(&forceRestart, "force-restart", false, "discard any existing checkpoint and start over")
}

func runSearch(cmd *cobra.Command, args []string) {
	// Build flags map from command line
	flags := make(map[string]interface{})
	if apiKey != "" {
		flags["api-key"] = apiKey
	}
	if model != "" {
		flags["model"] = model
	}
	if batchLimit > 0 {
		flags["batch-limit"] = batchLimit
	}
	if concurrency != 5 {
		flags["concurrency"] = concurrency
	}
	if maxRetries != 3 {
		flags["max-retries"] = maxRetries
	}
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	// Load configuration
	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}
	if !resume {
		cfg.Checkpoint.Resume = false
	}

	// Initialize logger
	logger.Initialize(&cfg.Logging)
	logger.WithField("version", version).Info("Wallet Scout starting")

	// Fall back to stored credentials when the key came from neither
	// flags, env, nor config file
	if cfg.Grok.APIKey == "" {
		if manager, err := auth.NewManager(); err == nil {
			if cred, err := manager.Retrieve(auth.DefaultProvider); err == nil {
				cfg.Grok.APIKey = cred.APIKey
				logger.Info("Using stored API key")
			}
		}
	}

	if cfg.Grok.APIKey == "" {
		logger.Error("No xAI API key found")
		ui.PrintError("No xAI API key found", "")
		fmt.Println("\nTo store a key securely, run:")
		fmt.Println("  walletscout auth login")
		fmt.Println("\nOr set an environment variable:")
		fmt.Println("  export XAI_API_KEY=your_api_key")
		os.Exit(1)
	}

	sources := input.Sources{
		Addresses: addresses,
		Text:      addressText,
		FileURL:   inputFileURL,
	}

	// Cancel the run cleanly on Ctrl-C; progress up to the last
	// checkpoint save is preserved
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ui.PrintHighlight("[INITIATING WALLET LOOKUP SEQUENCE]")

	runner, err := searcher.New(cfg)
	if err != nil {
		ui.PrintError("Failed to initialize searcher", err.Error())
		os.Exit(1)
	}
	runner.SetProgress(&lookupProgress{})

	summary, err := runner.Run(ctx, sources, forceRestart)
	if err != nil {
		logger.WithError(err).Error("Lookup run failed")
		ui.PrintError("LOOKUP RUN FAILED", err.Error())
		os.Exit(1)
	}

	printSummary(summary)
	logger.WithField("run_id", summary.RunID).Info("Lookup run completed")
}

// lookupProgress bridges runner progress to the terminal status line.
type lookupProgress struct {
	tracker *ui.StatusTracker
}

func (p *lookupProgress) Begin(total int) {
	p.tracker = ui.NewStatusTracker(total)
}

func (p *lookupProgress) Update(record models.WalletRecord) {
	p.tracker.RecordResult(record.PostExists, record.TwitterHandle != "", record.Degraded())
	p.tracker.PrintProgress()
}

func (p *lookupProgress) End() {
	if p.tracker != nil {
		p.tracker.PrintSummary()
	}
}

func printSummary(summary *searcher.Summary) {
	ui.PrintSuccess("[LOOKUP RUN COMPLETED]")
	ui.PrintInfo("Processed this run", fmt.Sprintf("%d", summary.ProcessedThisRun))
	ui.PrintInfo("Total processed", fmt.Sprintf("%d/%d", summary.TotalProcessed, summary.TotalAddresses))
	ui.PrintInfo("Posts found", fmt.Sprintf("%d", summary.Stats.PostsFound))
	ui.PrintInfo("Handles identified", fmt.Sprintf("%d", summary.Stats.HandlesIdentified))
	ui.PrintInfo("Errors", fmt.Sprintf("%d", summary.Stats.Errors))
	ui.PrintInfo("Dataset", summary.DatasetPath)

	if !summary.Completed {
		ui.PrintWarning(fmt.Sprintf("%d addresses remaining, run again to continue", summary.Remaining))
	}
}
