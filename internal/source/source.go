// Package source defines the market data contract shared by the live exchange client,
// the synthetic generator and the cache decorator.
package source

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/Alias1177/TrendScanner/internal/model"
)

// ErrNoData is returned when a source has nothing for the requested symbol
var ErrNoData = errors.New("no data")

// Source provides candles and 24h statistics for a base/quote pair
type Source interface {
	// Candles returns up to limit candles, oldest first
	Candles(ctx context.Context, base, quote, interval string, limit int) ([]model.Candle, error)
	// Ticker returns the 24h quote volume and price change
	Ticker(ctx context.Context, base, quote string) (model.Ticker, error)
	// Name identifies the source in logs
	Name() string
}

// Pinger is implemented by sources that can probe their reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// FallbackAdvisory is surfaced when a scan runs on synthetic data
const FallbackAdvisory = "Network unavailable - running with synthetic sample data"

const pingTimeout = 5 * time.Second

// Selection is the source chosen for one scan
type Selection struct {
	Source    Source
	Synthetic bool
	Advisory  string
}

// Select probes the live source and falls back to the synthetic one for the whole scan when
// the probe fails. A nil live source or force selects synthetic data without an advisory.
func Select(ctx context.Context, live, synthetic Source, force bool, logger zerolog.Logger) Selection {
	if force || live == nil {
		return Selection{Source: synthetic, Synthetic: true}
	}

	pinger, ok := live.(Pinger)
	if !ok {
		return Selection{Source: live}
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := pinger.Ping(pingCtx); err != nil {
		logger.Warn().Err(err).Str("source", live.Name()).Msg("Live source unreachable, switching to synthetic data")
		return Selection{Source: synthetic, Synthetic: true, Advisory: FallbackAdvisory}
	}

	return Selection{Source: live}
}
