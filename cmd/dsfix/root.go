package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/doomscrollingfix/dsfix/internal/config"
	"github.com/doomscrollingfix/dsfix/internal/metrics"
	"github.com/doomscrollingfix/dsfix/internal/storage"
	"github.com/doomscrollingfix/dsfix/internal/storage/bolt"
	"github.com/doomscrollingfix/dsfix/internal/storage/redis"
)

var (
	version     = "dev"
	configPath  string
	metricsAddr string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dsfix",
	Short: "DoomScrollingFix - mindful friction for doomscrolling sites",
	Long: `DoomScrollingFix interrupts autopilot scrolling with a short breathing
pause and an intention prompt before a monitored site opens, and keeps
local statistics about how often you turn around.`,
	Version: version,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "Serve prometheus metrics on this address")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

// setupLogger configures the logger based on configuration
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Format == "text" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// quietLogger suppresses everything below error level, for commands whose
// stdout is the product.
func quietLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.ErrorLevel).With().Timestamp().Logger()
}

// openStore opens the configured storage backend.
func openStore(cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Type {
	case "redis":
		return redis.Open(cfg.Redis)
	default:
		return bolt.Open(cfg.Path)
	}
}

// startMetrics starts the metrics listener when enabled by config or the
// --metrics-addr flag. Returns nil when metrics are off.
func startMetrics(cfg *config.Config, logger zerolog.Logger) *metrics.Server {
	addr := ""
	if cfg.Metrics.Enabled {
		addr = cfg.Metrics.Addr
	}
	if metricsAddr != "" {
		addr = metricsAddr
	}
	if addr == "" {
		return nil
	}

	server := metrics.NewServer(addr, logger)
	if err := server.Start(); err != nil {
		logger.Error().Err(err).Str("addr", addr).Msg("Failed to start metrics server")
		return nil
	}
	return server
}

func stopMetrics(server *metrics.Server, logger zerolog.Logger) {
	if server == nil {
		return
	}
	if err := server.Stop(); err != nil {
		logger.Error().Err(err).Msg("Error stopping metrics server")
	}
}
