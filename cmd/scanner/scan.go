package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Alias1177/TrendScanner/internal/report"
	"github.com/Alias1177/TrendScanner/internal/scan"
)

var (
	scanSynthetic   bool
	scanSort        string
	scanFilter      string
	scanTimeframes  string
	scanSensitivity string
	scanAssets      string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one scan and print the ranked results",
	Long: `Run a single scan over the asset universe and print a ranked table.

Example usage:
  trendscanner scan                                # default universe and settings
  trendscanner scan --assets=BTC,ETH,SOL --sort=volume
  trendscanner scan --timeframes=15m,1h --sensitivity=high
  trendscanner scan --synthetic                    # offline run on generated data`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanSynthetic, "synthetic", false, "Use generated data instead of Binance")
	scanCmd.Flags().StringVar(&scanSort, "sort", "roiScore", "Sort by roiScore, volume or symbol")
	scanCmd.Flags().StringVar(&scanFilter, "filter", "", "Only show symbols containing this text")
	scanCmd.Flags().StringVar(&scanTimeframes, "timeframes", "", "Comma separated timeframes (15m,1h,4h,1d,1w)")
	scanCmd.Flags().StringVar(&scanSensitivity, "sensitivity", "", "Trend sensitivity: low, medium, high")
	scanCmd.Flags().StringVar(&scanAssets, "assets", "", "Comma separated asset symbols")
}

func runScan(cmd *cobra.Command, args []string) error {
	settings, universe, err := resolveSettings(cfg, scanTimeframes, scanSensitivity, scanAssets)
	if err != nil {
		return err
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	total := len(universe)
	scanner := a.scanner(cfg, scan.Options{
		ForceSynthetic: scanSynthetic,
		OnBatch: func(s scan.Snapshot) {
			fmt.Fprintf(os.Stderr, "batch %d: %d assets kept of %d\n", s.Batches, len(s.Results), total)
		},
	})

	final, err := scanner.Run(cmd.Context(), settings, universe)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if final.Advisory != "" {
		log.Warn().Msg(final.Advisory)
	}

	results := report.Sort(report.Filter(final.Results, scanFilter), report.ParseSortKey(scanSort))
	if err := report.WriteTable(os.Stdout, results, settings.Timeframes); err != nil {
		return err
	}

	log.Info().
		Int("results", len(final.Results)).
		Int("shown", len(results)).
		Dur("elapsed", final.FinishedAt.Sub(final.StartedAt)).
		Msg("Scan finished")
	return nil
}
