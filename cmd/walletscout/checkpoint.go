package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"walletscout/pkg/checkpoint"
	"walletscout/pkg/config"
	"walletscout/pkg/ui"
)

// checkpointCmd represents the checkpoint command
var checkpointCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Inspect and manage the saved batch checkpoint",
	Long: `Inspect and manage the checkpoint that tracks batch progress.

A checkpoint is written while a search runs and lets an interrupted or
batch-limited run resume where it left off. It is cleared automatically
when every address in the input set has been processed.`,
}

// checkpointInfoCmd represents the checkpoint info command
var checkpointInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show details of the saved checkpoint",
	Run:   runCheckpointInfo,
}

// checkpointClearCmd represents the checkpoint clear command
var checkpointClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the saved checkpoint",
	Long: `Delete the saved checkpoint.

The next search run will start from scratch even if the input set
matches a previous partial run.`,
	Run: runCheckpointClear,
}

func init() {
	rootCmd.AddCommand(checkpointCmd)
	checkpointCmd.AddCommand(checkpointInfoCmd)
	checkpointCmd.AddCommand(checkpointClearCmd)
}

func newCheckpointManager() *checkpoint.Manager {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	manager, err := checkpoint.NewManager(cfg.Checkpoint.Directory, cfg.Checkpoint.SaveRetries)
	if err != nil {
		ui.PrintError("Failed to open checkpoint store", err.Error())
		os.Exit(1)
	}
	return manager
}

func runCheckpointInfo(cmd *cobra.Command, args []string) {
	manager := newCheckpointManager()

	if !manager.Exists() {
		ui.PrintWarning("No checkpoint found")
		return
	}

	info, err := manager.Info()
	if err != nil {
		ui.PrintError("Failed to read checkpoint", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("[CHECKPOINT]")
	for _, key := range []string{"fingerprint", "run_id", "processed", "total", "created_at", "updated_at", "age"} {
		if value, ok := info[key]; ok {
			ui.PrintInfo(key, fmt.Sprintf("%v", value))
		}
	}
}

func runCheckpointClear(cmd *cobra.Command, args []string) {
	manager := newCheckpointManager()

	if !manager.Exists() {
		ui.PrintWarning("No checkpoint found")
		return
	}

	if err := manager.Delete(); err != nil {
		ui.PrintError("Failed to delete checkpoint", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Checkpoint cleared")
}
