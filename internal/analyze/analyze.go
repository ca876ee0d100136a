package analyze

import (
	"math"

	"github.com/Alias1177/TrendScanner/internal/calculate"
	"github.com/Alias1177/TrendScanner/internal/model"
)

const (
	// MinCandles is the shortest series that yields a non-trivial verdict
	MinCandles = 20

	neutralConfidence = 30
)

// ClassifyTrend computes the indicators of one series and turns the signal tally into a
// trend verdict. The result depends only on the candles and the settings.
func ClassifyTrend(candles []model.Candle, timeframe string, settings model.Settings) model.TrendVerdict {
	if len(candles) < MinCandles {
		return model.TrendVerdict{
			Timeframe: timeframe,
			Trend:     model.TrendNeutral,
			Signals:   []string{},
		}
	}

	indicators := calculate.CalculateAllIndicators(candles)
	tally := scoreSignals(indicators, settings)
	trend, confidence := decideTrend(tally.bullish, tally.bearish, settings.TrendSensitivity.Threshold())

	return model.TrendVerdict{
		Timeframe:    timeframe,
		Trend:        trend,
		Confidence:   confidence,
		Signals:      tally.signals,
		BullishScore: tally.bullish,
		BearishScore: tally.bearish,
		Indicators:   indicators,
	}
}

// decideTrend picks the winning side. A side wins when it leads and reaches the threshold;
// otherwise any fired signal gives a neutral verdict with fixed confidence.
func decideTrend(bullish, bearish int, threshold float64) (model.Trend, int) {
	total := float64(bullish + bearish)

	switch {
	case bullish > bearish && float64(bullish) >= threshold:
		return model.TrendBullish, confidencePct(float64(bullish), total)
	case bearish > bullish && float64(bearish) >= threshold:
		return model.TrendBearish, confidencePct(float64(bearish), total)
	case total > 0:
		return model.TrendNeutral, neutralConfidence
	default:
		return model.TrendNeutral, 0
	}
}

func confidencePct(side, total float64) int {
	return int(math.Round(math.Min(side/total*100, 100)))
}
