package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"walletscout/pkg/config"
	"walletscout/pkg/sink"
	"walletscout/pkg/ui"
)

var exportOutput string

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the results dataset as CSV",
	Long: `Export the JSONL results dataset produced by search runs as CSV.

Reads the dataset from the configured output directory and writes CSV to
the given file, or to stdout when no file is specified.`,
	Example: `  # Print CSV to stdout
  walletscout export

  # Write CSV to a file
  walletscout export --out results.csv`,
	Run: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportOutput, "out", "", "destination CSV file (default: stdout)")
}

func runExport(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	datasetPath := filepath.Join(cfg.Output.Directory, cfg.Output.DatasetFile)
	records, err := sink.ReadAll(datasetPath)
	if err != nil {
		ui.PrintError("Failed to read dataset", err.Error())
		os.Exit(1)
	}
	if len(records) == 0 {
		ui.PrintWarning("Dataset is empty", datasetPath)
		return
	}

	if exportOutput == "" {
		if err := sink.ExportCSV(os.Stdout, records); err != nil {
			ui.PrintError("Failed to write CSV", err.Error())
			os.Exit(1)
		}
		return
	}

	f, err := os.Create(exportOutput)
	if err != nil {
		ui.PrintError("Failed to create output file", err.Error())
		os.Exit(1)
	}
	defer f.Close()

	if err := sink.ExportCSV(f, records); err != nil {
		ui.PrintError("Failed to write CSV", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Exported " + exportOutput)
}
