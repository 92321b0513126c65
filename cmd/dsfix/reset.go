package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doomscrollingfix/dsfix/internal/storage"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear stored statistics or the whole store",
}

var resetStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Clear statistics and per-domain counters, keeping settings",
	Args:  cobra.NoArgs,
	RunE:  runResetStats,
}

var resetAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Clear everything, including settings",
	Args:  cobra.NoArgs,
	RunE:  runResetAll,
}

func init() {
	resetCmd.AddCommand(resetStatsCmd)
	resetCmd.AddCommand(resetAllCmd)
	rootCmd.AddCommand(resetCmd)
}

func runResetStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	store, err := openConfiguredStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := clearStats(ctx, store); err != nil {
		return err
	}

	fmt.Println("Statistics cleared")
	return nil
}

func runResetAll(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	store, err := openConfiguredStore()
	if err != nil {
		return err
	}
	defer store.Close()

	// Clear the per-domain counters while the monitored list is still known.
	if err := clearStats(ctx, store); err != nil {
		return err
	}
	if err := store.Settings().Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset settings: %w", err)
	}

	fmt.Println("All stored data cleared")
	return nil
}

// clearStats zeroes the counters and removes the per-domain keys for every
// configured domain.
func clearStats(ctx context.Context, store storage.Store) error {
	settings, err := store.Settings().Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}

	if err := store.Stats().Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset stats: %w", err)
	}
	if err := store.Domains().Clear(ctx, settings.MonitoredDomains); err != nil {
		return fmt.Errorf("failed to clear domain counters: %w", err)
	}
	return nil
}

func openConfiguredStore() (storage.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	store, err := openStore(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	return store, nil
}
