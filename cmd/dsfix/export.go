package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/doomscrollingfix/dsfix/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export [FILE]",
	Short: "Export all settings and stats to a JSON backup",
	Long: `Export the entire store (settings, stats and the per-domain counters)
to a single JSON file. Without an argument the file is named
doomscrollingfix-settings-<date>.json in the current directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import a JSON backup, replacing the stored records",
	Long: `Import a backup produced by export. The payload must be a single JSON
object; anything else is rejected without touching the store.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	store, err := openStore(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer store.Close()

	path := export.Filename(time.Now())
	if len(args) == 1 {
		path = args[0]
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := export.Export(ctx, store, f); err != nil {
		return err
	}

	fmt.Printf("Exported to %s\n", path)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	store, err := openStore(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer store.Close()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer f.Close()

	if err := export.Import(ctx, store, f); err != nil {
		return err
	}

	fmt.Printf("Imported %s\n", args[0])
	return nil
}
