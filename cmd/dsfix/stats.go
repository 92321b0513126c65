package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/doomscrollingfix/dsfix/internal/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show intervention statistics",
	Long: `Show the aggregated intervention statistics: session counts, the
turnaround rate, the current streak, estimated time saved, sessions per
app, and the most recent intentions.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
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

	record, err := store.Stats().Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}

	now := time.Now()
	summary := stats.Summarize(record, now)

	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen, color.Bold)
	yellow := color.New(color.FgYellow)

	fmt.Println()
	cyan.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	cyan.Println("DOOMSCROLLINGFIX STATS")
	cyan.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	fmt.Printf("Interventions:   %d\n", summary.InterventionCount)
	fmt.Printf("Turnarounds:     %d (%d%%)\n", summary.TurnaroundCount, summary.TurnaroundRatePercent)
	fmt.Printf("Breathing time:  %s\n", (time.Duration(summary.TotalBreathingSeconds) * time.Second).String())
	fmt.Printf("Today / week:    %d / %d sessions\n", summary.TodaySessions, summary.WeekSessions)
	green.Printf("Current streak:  %d day(s)\n", summary.CurrentStreak)
	green.Printf("Time saved:      ~%d minutes\n", summary.EstimatedTimeSavedMinutes)
	fmt.Println()

	if counts := stats.AppCounts(record.Sessions); len(counts) > 0 {
		cyan.Println("Sessions by app")
		for _, c := range counts {
			fmt.Printf("  %-12s %d\n", c.App, c.Count)
		}
		fmt.Println()
	}

	if recent := stats.RecentIntentions(record.IntentionLog); len(recent) > 0 {
		cyan.Println("Recent intentions")
		for _, entry := range recent {
			marker := "→"
			if !entry.Proceeded {
				marker = "↩"
			}
			when := time.UnixMilli(entry.Timestamp).Format("Jan 2 15:04")
			yellow.Printf("  %s %s", marker, entry.Intention)
			fmt.Printf("  (%s, %s)\n", entry.App, when)
		}
		fmt.Println()
	}

	cyan.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()
	return nil
}
