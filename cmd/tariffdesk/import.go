package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/marhaven/tariffdesk/internal/catalog"
	"github.com/marhaven/tariffdesk/internal/cli"
	"github.com/marhaven/tariffdesk/internal/common"
	"github.com/marhaven/tariffdesk/internal/config"
)

const importBatchSize = 500

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <catalog.jsonl>",
		Short: "Import an embedded tariff catalog into the database",
		Long: `Load a precomputed catalog file (one JSON record per line, each with
its embedding vector) into the local database. Records without an
embedding are skipped; re-importing a code replaces it.

Examples:
  tariffdesk import htsdata_with_embeddings.jsonl`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := config.ExpandPath(args[0])

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("Failed to close catalog file", "error", closeErr)
		}
	}()

	records, err := catalog.ReadJSONL(f)
	if err != nil {
		return fmt.Errorf("failed to read catalog file: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("no usable records in %s", path)
	}

	// Validate before touching the database
	if _, err := catalog.New(records); err != nil {
		return fmt.Errorf("catalog validation failed: %w", err)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
	}()

	bar := progressbar.NewOptions(len(records),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Importing catalog...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)

	for start := 0; start < len(records); start += importBatchSize {
		end := start + importBatchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		if err := store.SaveRecords(ctx, batch); err != nil {
			return fmt.Errorf("failed to save records: %w", err)
		}
		if err := bar.Add(len(batch)); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	}

	count, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count records: %w", err)
	}

	common.LogInfo("Catalog import complete", common.Fields{
		"imported": len(records),
		"total":    count,
	})

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Imported %d records (%d total in catalog)", len(records), count)))
	return nil
}
