// Package alignment classifies one asset against every quote pair of a timeframe and
// reduces the pair verdicts into a single alignment label.
package alignment

import (
	"context"
	"math"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Alias1177/TrendScanner/internal/analyze"
	"github.com/Alias1177/TrendScanner/internal/metrics"
	"github.com/Alias1177/TrendScanner/internal/model"
	"github.com/Alias1177/TrendScanner/internal/source"
)

// Aggregator fetches and classifies the quote pairs of one asset
type Aggregator struct {
	source  source.Source
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewAggregator creates an aggregator over src. m may be nil.
func NewAggregator(src source.Source, m *metrics.Metrics, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		source:  src,
		metrics: m,
		logger:  logger.With().Str("component", "aligner").Logger(),
	}
}

// Analyze classifies base against every quote pair concurrently. A pair whose fetch fails or
// comes back empty is left out of the result; it is never retried. A panic in any pair is
// re-raised on the calling goroutine once all pairs have finished.
func (a *Aggregator) Analyze(ctx context.Context, base string, tf model.Timeframe, settings model.Settings) model.TimeframeResult {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		pairs  = make(map[string]model.TrendVerdict, len(model.QuotePairs))
		panics []interface{}
	)

	for _, quote := range model.QuotePairs {
		wg.Add(1)
		go func(quote string) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					mu.Lock()
					panics = append(panics, r)
					mu.Unlock()
				}
			}()

			candles, err := a.source.Candles(ctx, base, quote, tf.Interval, tf.Limit)
			if err != nil || len(candles) == 0 {
				a.metrics.PairFetched(false)
				a.logger.Debug().Err(err).
					Str("pair", base+quote).
					Str("timeframe", tf.Code).
					Msg("Pair unavailable, skipping")
				return
			}
			a.metrics.PairFetched(true)

			verdict := analyze.ClassifyTrend(candles, tf.Code, settings)
			verdict.Pair = base + quote
			verdict.Quote = quote

			mu.Lock()
			pairs[quote] = verdict
			mu.Unlock()
		}(quote)
	}
	wg.Wait()

	// surface pair panics on the caller's goroutine
	if len(panics) > 0 {
		panic(panics[0])
	}

	alignment, confidence := Align(pairs)
	return model.TimeframeResult{
		Timeframe:  tf.Code,
		Alignment:  alignment,
		Confidence: confidence,
		Pairs:      pairs,
	}
}

// Align reduces pair verdicts keyed by quote symbol. Full alignment needs every quote pair
// to agree, so a timeframe with a missing pair can at best be mostly aligned.
func Align(pairs map[string]model.TrendVerdict) (model.Alignment, int) {
	if len(pairs) == 0 {
		return model.AlignmentMixed, 0
	}

	var bullish, bearish, confidenceSum int
	for _, v := range pairs {
		switch v.Trend {
		case model.TrendBullish:
			bullish++
		case model.TrendBearish:
			bearish++
		}
		confidenceSum += v.Confidence
	}

	confidence := int(math.Round(float64(confidenceSum) / float64(len(pairs))))

	switch {
	case bullish == len(model.QuotePairs):
		return model.AlignmentBullish, confidence
	case bearish == len(model.QuotePairs):
		return model.AlignmentBearish, confidence
	case bullish >= 2:
		return model.AlignmentMostlyBullish, confidence
	case bearish >= 2:
		return model.AlignmentMostlyBearish, confidence
	default:
		return model.AlignmentMixed, confidence
	}
}
