// Package roi folds the timeframe results of one asset into a single opportunity score.
package roi

import (
	"math"

	"github.com/Alias1177/TrendScanner/internal/model"
)

const (
	alignmentWeight  = 40.0
	confidenceWeight = 30.0

	breakoutBonus    = 20
	directionalBonus = 10

	highVolumeBonus = 10
	baseVolumeBonus = 5
)

// Result is the scored summary of one asset
type Result struct {
	Score          int
	AlignmentCount int
	DominantTrend  model.Trend
}

// Score combines alignment, confidence, chart patterns and liquidity. selected lists the
// timeframe codes of the scan; a selected timeframe missing from timeframes counts as
// unaligned with zero confidence.
func Score(volume24h float64, timeframes map[string]model.TimeframeResult, selected []string, settings model.Settings) Result {
	var (
		aligned         int
		confidenceSum   int
		bullishFamilies int
		bearishFamilies int
		patterns        []model.Pattern
	)

	for _, code := range selected {
		tf, ok := timeframes[code]
		if !ok {
			continue
		}

		if tf.Alignment.IsFull() {
			aligned++
		}
		switch {
		case tf.Alignment.IsBullish():
			bullishFamilies++
		case tf.Alignment.IsBearish():
			bearishFamilies++
		}
		confidenceSum += tf.Confidence

		if p, ok := referencePattern(tf); ok {
			patterns = append(patterns, p)
		}
	}

	var alignmentScore, confidenceScore float64
	if n := float64(len(selected)); n > 0 {
		alignmentScore = float64(aligned) / n * alignmentWeight
		confidenceScore = float64(confidenceSum) / n / 100 * confidenceWeight
	}

	total := alignmentScore + confidenceScore +
		float64(patternBonus(patterns)) +
		float64(volumeBonus(volume24h, settings.MinVolume))

	return Result{
		Score:          int(math.Round(total)),
		AlignmentCount: aligned,
		DominantTrend:  dominant(bullishFamilies, bearishFamilies),
	}
}

// referencePattern reads the pattern of the USDT pair, or of the first quote pair that
// returned data when USDT is missing. A pair without indicators has no pattern.
func referencePattern(tf model.TimeframeResult) (model.Pattern, bool) {
	for _, quote := range model.QuotePairs {
		v, ok := tf.Pairs[quote]
		if !ok {
			continue
		}
		if v.Indicators == nil {
			return "", false
		}
		return v.Indicators.Pattern, true
	}
	return "", false
}

func patternBonus(patterns []model.Pattern) int {
	for _, p := range patterns {
		if p.IsBreakout() {
			return breakoutBonus
		}
	}
	for _, p := range patterns {
		if p.IsDirectional() {
			return directionalBonus
		}
	}
	return 0
}

func volumeBonus(volume, floor float64) int {
	if volume > 2*floor {
		return highVolumeBonus
	}
	return baseVolumeBonus
}

func dominant(bullish, bearish int) model.Trend {
	switch {
	case bullish > bearish:
		return model.TrendBullish
	case bearish > bullish:
		return model.TrendBearish
	default:
		return model.TrendNeutral
	}
}
