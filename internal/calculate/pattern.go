package calculate

import "github.com/Alias1177/TrendScanner/internal/model"

const (
	patternWindow          = 10
	breakoutWindow         = 20
	consolidationThreshold = 5.0
)

// DetectPattern labels the recent price structure. Checks run in priority order and
// the first match wins: consolidation, breakout, half-window trend, ranging.
// Short series use whatever part of each window is available.
func DetectPattern(candles []model.Candle) model.PatternResult {
	if len(candles) == 0 {
		return model.PatternResult{Pattern: model.PatternRanging, Confidence: "medium"}
	}

	closes := model.Closes(candles)
	recentCloses := lastN(closes, patternWindow)

	avgPrice := calculateAverage(recentCloses)
	volatilityPercent := 0.0
	if avgPrice != 0 {
		volatilityPercent = (maxOf(recentCloses) - minOf(recentCloses)) / avgPrice * 100
	}
	if volatilityPercent < consolidationThreshold {
		return model.PatternResult{Pattern: model.PatternConsolidation, Confidence: "high"}
	}

	// Range of the previous candles, the latest one excluded
	start := len(candles) - breakoutWindow
	if start < 0 {
		start = 0
	}
	previous := candles[start : len(candles)-1]
	recentHigh := maxOf(model.Highs(previous))
	recentLow := minOf(model.Lows(previous))
	currentPrice := closes[len(closes)-1]

	if currentPrice > recentHigh*1.02 {
		return model.PatternResult{Pattern: model.PatternBreakoutBullish, Confidence: "high"}
	}
	if currentPrice < recentLow*0.98 {
		return model.PatternResult{Pattern: model.PatternBreakoutBearish, Confidence: "high"}
	}

	mid := len(recentCloses) / 2
	firstAvg := calculateAverage(recentCloses[:mid])
	secondAvg := calculateAverage(recentCloses[mid:])

	if secondAvg > firstAvg*1.03 {
		return model.PatternResult{Pattern: model.PatternUptrend, Confidence: "medium"}
	}
	if secondAvg < firstAvg*0.97 {
		return model.PatternResult{Pattern: model.PatternDowntrend, Confidence: "medium"}
	}

	return model.PatternResult{Pattern: model.PatternRanging, Confidence: "medium"}
}
