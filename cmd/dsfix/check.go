package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/doomscrollingfix/dsfix/internal/clock"
	"github.com/doomscrollingfix/dsfix/internal/policy"
	"github.com/doomscrollingfix/dsfix/internal/storage"
)

var checkCmd = &cobra.Command{
	Use:   "check DOMAIN",
	Short: "Check whether the overlay would show for a domain right now",
	Long: `Check what DoomScrollingFix would do for a domain at this moment:
whether the domain is monitored, whether the reprompt interval has elapsed,
and how much time has been spent there.`,
	Example: `  dsfix check reddit.com
  dsfix --config dsfix.yaml check news.ycombinator.com`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	domain := args[0]
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := quietLogger()

	store, err := openStore(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer store.Close()

	settings, err := store.Settings().Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}

	monitored := settings.MonitorsDomain(domain)

	var due bool
	if monitored {
		pol := policy.New(store, clock.RealClock{}, logger)
		due, err = pol.ShouldShowOverlay(ctx, domain)
		if err != nil {
			return fmt.Errorf("failed to evaluate reprompt policy: %w", err)
		}
	}

	spent, err := store.Domains().TimeSpent(ctx, domain)
	if err != nil {
		return fmt.Errorf("failed to read time spent: %w", err)
	}

	lastUnlock, err := store.Domains().LastUnlock(ctx, domain)
	hasUnlock := err == nil
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to read last unlock: %w", err)
	}

	printCheckResult(domain, settings, monitored, due, spent, lastUnlock, hasUnlock)
	return nil
}

// printCheckResult prints the check verdict with colors
func printCheckResult(domain string, settings storage.Settings, monitored, due bool, spent int64, lastUnlock time.Time, hasUnlock bool) {
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)

	fmt.Println()
	cyan.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	cyan.Println("OVERLAY CHECK")
	cyan.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	fmt.Printf("Domain:      %s\n", domain)
	fmt.Printf("Interval:    %s\n", settings.RepromptInterval())
	if hasUnlock {
		fmt.Printf("Last unlock: %s\n", lastUnlock.Format("2006-01-02 15:04:05"))
	} else {
		fmt.Printf("Last unlock: (never)\n")
	}
	fmt.Printf("Time spent:  %s\n", clock.FormatElapsed(spent))
	fmt.Println()

	cyan.Print("Decision:    ")
	switch {
	case !monitored:
		green.Println("NOT MONITORED")
		fmt.Println("             → Domain is not in the monitored list")
		fmt.Println("             → No overlay will ever show here")
	case due:
		yellow.Println("SHOW OVERLAY")
		fmt.Println("             → The reprompt interval has elapsed")
		fmt.Println("             → Opening this site starts the breathing phase")
	default:
		green.Println("PASS")
		fmt.Println("             → Unlocked within the reprompt interval")
		fmt.Println("             → The site opens without an overlay")
	}

	fmt.Println()
	cyan.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()
}
