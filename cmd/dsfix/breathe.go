package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/doomscrollingfix/dsfix/internal/clock"
	"github.com/doomscrollingfix/dsfix/internal/intervention"
	"github.com/doomscrollingfix/dsfix/internal/policy"
	"github.com/doomscrollingfix/dsfix/internal/session"
	"github.com/doomscrollingfix/dsfix/internal/tui"
)

var breatheCmd = &cobra.Command{
	Use:   "breathe DOMAIN",
	Short: "Run the intervention flow for a domain",
	Long: `Run the full intervention flow for a monitored domain: a breathing
pause, an intention prompt, and (if you continue) a session timer with
periodic reprompts.`,
	Example: `  dsfix breathe reddit.com
  dsfix --config dsfix.yaml breathe x.com`,
	Args: cobra.ExactArgs(1),
	RunE: runBreathe,
}

func init() {
	rootCmd.AddCommand(breatheCmd)
}

func runBreathe(cmd *cobra.Command, args []string) error {
	domain := args[0]
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// The terminal belongs to the TUI; only errors may leak to stderr.
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
	if !settings.MonitorsDomain(domain) {
		fmt.Printf("%s is not a monitored domain, nothing to do\n", domain)
		return nil
	}

	metricsServer := startMetrics(cfg, logger)
	defer stopMetrics(metricsServer, logger)

	clk := clock.RealClock{}
	pol := policy.New(store, clk, logger)
	recorder := session.NewRecorder(store, clk, logger)
	renderer := tui.NewRenderer()
	ctrl := intervention.NewController(domain, store, pol, recorder, renderer, intervention.NewScheduler(), logger)

	model := tui.NewModel(ctrl, domain, settings.Password != "")
	program := tea.NewProgram(model, tea.WithAltScreen())
	renderer.Attach(program)

	_, err = program.Run()
	ctrl.Teardown()
	if err != nil {
		return fmt.Errorf("intervention flow failed: %w", err)
	}
	return nil
}
