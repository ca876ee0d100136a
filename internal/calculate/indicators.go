package calculate

import "github.com/Alias1177/TrendScanner/internal/model"

// CalculateAllIndicators computes the full indicator bundle for one candle series.
// Every indicator degrades to its neutral default when the series is too short.
func CalculateAllIndicators(candles []model.Candle) *model.IndicatorBundle {
	if len(candles) == 0 {
		return &model.IndicatorBundle{
			RSI:               50,
			Pattern:           model.PatternRanging,
			PatternConfidence: "medium",
		}
	}

	closes := model.Closes(candles)
	volumes := model.Volumes(candles)

	macd := CalculateMACD(closes)
	pattern := DetectPattern(candles)

	return &model.IndicatorBundle{
		CurrentPrice:      closes[len(closes)-1],
		PriceChange:       CalculatePriceChange(closes),
		RSI:               CalculateRSI(closes, RSIPeriod),
		MACD:              macd.Line,
		MACDSignal:        macd.Signal,
		MACDHist:          macd.Histogram,
		MA5:               CalculateMA(closes, 5),
		MA10:              CalculateMA(closes, 10),
		MA20:              CalculateMA(closes, 20),
		EMA9:              CalculateEMA(closes, 9),
		EMA21:             CalculateEMA(closes, 21),
		VolumeChange:      CalculateVolumeChange(volumes),
		Pattern:           pattern.Pattern,
		PatternConfidence: pattern.Confidence,
		Levels:            IdentifySupportResistance(candles),
	}
}
