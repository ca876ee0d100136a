package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Alias1177/TrendScanner/internal/config"
)

var (
	settingsPath string
	logLevel     string

	cfg *config.Config
)

// rootCmd is the base command of the scanner CLI
var rootCmd = &cobra.Command{
	Use:   "trendscanner",
	Short: "Multi-timeframe crypto trend scanner",
	Long: `trendscanner ranks a universe of crypto assets by how well their trends line up
across quote pairs (USDT, BTC, ETH) and timeframes, using live Binance data or a
synthetic generator when the exchange cannot be reached.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		if settingsPath != "" {
			cfg.SettingsFile = settingsPath
		}

		setupLogging(cfg.LogLevel)
		printConfig(cfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "YAML file with scan settings and universe (overrides SETTINGS_FILE)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides LOG_LEVEL)")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	setupSignalHandling(cancel)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupSignalHandling cancels the root context on SIGINT/SIGTERM
func setupSignalHandling(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Info().Msg("Shutdown signal received, stopping...")
		cancel()
	}()
}

// setupLogging configures the logger
func setupLogging(logLevel string) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Logger.Level(level)
}

// printConfig outputs the current configuration
func printConfig(cfg *config.Config) {
	log.Debug().
		Str("BinanceBaseURL", cfg.BinanceBaseURL).
		Dur("RequestTimeout", cfg.RequestTimeout).
		Int("RequestsPerSec", cfg.RequestsPerSec).
		Int("MaxRetries", cfg.MaxRetries).
		Int("BatchSize", cfg.BatchSize).
		Dur("BatchPause", cfg.BatchPause).
		Dur("SyntheticPause", cfg.SyntheticPause).
		Bool("ForceSynthetic", cfg.ForceSynthetic).
		Bool("Cache", cfg.RedisAddr != "").
		Bool("Telegram", cfg.TelegramEnabled()).
		Str("SettingsFile", cfg.SettingsFile).
		Msg("Configuration loaded")
}
