package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/kozaktomas/staff-clock/internal/devicelog"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a fingerprint terminal log (CSV or XLSX)",
	Long: `Apply the clock events exported by an offline fingerprint terminal.
Records are processed in timestamp order and each one succeeds or fails on
its own. Timestamps without a zone are read in the attendance time zone.

Example:
  staff-clock import export-2026-03-02.csv --device-id gate-1`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().String("device-id", "", "Identifier of the terminal that produced the log")
	importCmd.Flags().Bool("dry-run", false, "Parse the file and report problems without recording anything")
}

func runImport(cmd *cobra.Command, args []string) error {
	deviceID := mustGetString(cmd, "device-id")
	dryRun := mustGetBool(cmd, "dry-run")
	if deviceID == "" {
		return errors.New("--device-id is required")
	}

	ctx := context.Background()
	b, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer b.Close()

	loc := b.service.CurrentPolicy(ctx).Location
	parsed, err := devicelog.ParseFile(args[0], loc)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}

	if !jsonOutput {
		fmt.Printf("Parsed %d records (%d unreadable rows)\n", len(parsed.Records), len(parsed.Errors))
		for _, e := range parsed.Errors {
			fmt.Printf("  %s\n", e)
		}
	}
	if dryRun {
		if jsonOutput {
			return outputJSON(parsed)
		}
		return nil
	}

	bar := newProgressBar(len(parsed.Records), "Importing", "records")
	result := b.service.SyncDevice(ctx, deviceID, parsed.Records, progressFunc(bar))
	result.Failed += len(parsed.Errors)
	result.Errors = append(result.Errors, parsed.Errors...)

	if jsonOutput {
		return outputJSON(result)
	}
	fmt.Printf("Batch %s: %d recorded, %d failed\n", result.BatchID, result.Success, result.Failed)
	for _, e := range result.Errors {
		fmt.Printf("  %s\n", e)
	}
	return nil
}
