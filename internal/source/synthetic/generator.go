// Package synthetic generates plausible market data when the live exchange is unreachable.
package synthetic

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/Alias1177/TrendScanner/internal/model"
)

// Profile shapes the generated series of one asset
type Profile struct {
	Trend      model.Trend
	Volatility float64
	BasePrice  float64
	Volume     float64
	Change     float64
}

// Profiles are the built-in asset shapes; other symbols get DefaultProfile
var Profiles = map[string]Profile{
	"BTC":   {Trend: model.TrendBullish, Volatility: 0.01, BasePrice: 45000, Volume: 25_000_000_000, Change: 3.5},
	"ETH":   {Trend: model.TrendBullish, Volatility: 0.015, BasePrice: 2400, Volume: 12_000_000_000, Change: 4.2},
	"LINK":  {Trend: model.TrendNeutral, Volatility: 0.005, BasePrice: 14.5, Volume: 180_000_000, Change: 0.8},
	"SOL":   {Trend: model.TrendBullish, Volatility: 0.02, BasePrice: 110, Volume: 2_500_000_000, Change: 5.1},
	"MATIC": {Trend: model.TrendBearish, Volatility: 0.015, BasePrice: 0.85, Volume: 450_000_000, Change: -2.3},
	"DOGE":  {Trend: model.TrendNeutral, Volatility: 0.02, BasePrice: 0.09, Volume: 800_000_000, Change: 1.1},
	"XRP":   {Trend: model.TrendBullish, Volatility: 0.012, BasePrice: 0.62, Volume: 1_500_000_000, Change: 2.8},
	"ADA":   {Trend: model.TrendNeutral, Volatility: 0.01, BasePrice: 0.58, Volume: 380_000_000, Change: -0.5},
	"AVAX":  {Trend: model.TrendBullish, Volatility: 0.018, BasePrice: 38, Volume: 620_000_000, Change: 3.9},
	"DOT":   {Trend: model.TrendBearish, Volatility: 0.013, BasePrice: 7.2, Volume: 280_000_000, Change: -1.8},
}

// DefaultProfile is used for symbols without a built-in profile
var DefaultProfile = Profile{
	Trend:      model.TrendNeutral,
	Volatility: 0.01,
	BasePrice:  100,
	Volume:     1_000_000,
	Change:     0,
}

// Generator satisfies source.Source with pseudo-random data.
// The quote symbol does not influence the output.
type Generator struct {
	mu       sync.Mutex
	rng      *rand.Rand
	profiles map[string]Profile
	now      func() time.Time
}

// New creates a generator drawing from rng. Seed it for reproducible output.
func New(rng *rand.Rand) *Generator {
	return &Generator{
		rng:      rng,
		profiles: Profiles,
		now:      time.Now,
	}
}

// NewSeeded creates a generator; seed 0 means time-based
func NewSeeded(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return New(rand.New(rand.NewSource(seed)))
}

// WithProfiles replaces the profile table
func (g *Generator) WithProfiles(profiles map[string]Profile) *Generator {
	g.profiles = profiles
	return g
}

// Name implements source.Source
func (g *Generator) Name() string { return "synthetic" }

// Ping always succeeds
func (g *Generator) Ping(context.Context) error { return nil }

// Candles implements source.Source
func (g *Generator) Candles(ctx context.Context, base, quote, interval string, limit int) ([]model.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p := g.profile(base)
	step := model.IntervalDuration(interval)
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	candles := make([]model.Candle, 0, limit)
	price := p.BasePrice

	for i := 0; i < limit; i++ {
		price *= 1 + g.trendChange(p.Trend) + (g.rng.Float64()-0.5)*p.Volatility

		open := price * (1 + (g.rng.Float64()-0.5)*0.005)
		closePrice := price * (1 + (g.rng.Float64()-0.5)*0.005)
		high := math.Max(open, closePrice) * (1 + g.rng.Float64()*0.01)
		low := math.Min(open, closePrice) * (1 - g.rng.Float64()*0.01)
		volume := 1_000_000 + g.rng.Float64()*5_000_000

		openTime := now.Add(-time.Duration(limit-i) * step)
		candles = append(candles, model.Candle{
			OpenTime:    openTime,
			Open:        open,
			High:        high,
			Low:         low,
			Close:       closePrice,
			Volume:      volume,
			CloseTime:   openTime.Add(step),
			QuoteVolume: volume * price,
		})
	}

	return candles, nil
}

// Ticker implements source.Source
func (g *Generator) Ticker(ctx context.Context, base, quote string) (model.Ticker, error) {
	if err := ctx.Err(); err != nil {
		return model.Ticker{}, err
	}

	p := g.profile(base)

	g.mu.Lock()
	defer g.mu.Unlock()

	return model.Ticker{
		QuoteVolume:        p.Volume * (0.8 + g.rng.Float64()*0.4),
		PriceChangePercent: p.Change + (g.rng.Float64()-0.5)*2,
	}, nil
}

func (g *Generator) trendChange(trend model.Trend) float64 {
	switch trend {
	case model.TrendBullish:
		return g.rng.Float64() * 0.02
	case model.TrendBearish:
		return -g.rng.Float64() * 0.02
	default:
		return (g.rng.Float64() - 0.5) * 0.01
	}
}

func (g *Generator) profile(symbol string) Profile {
	if p, ok := g.profiles[symbol]; ok {
		return p
	}
	return DefaultProfile
}
