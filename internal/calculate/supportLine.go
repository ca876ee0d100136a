package calculate

import "github.com/Alias1177/TrendScanner/internal/model"

const (
	levelsLookback = 10
	nearLevelPct   = 2.0
)

// IdentifySupportResistance takes the range of the last ten candles as the active
// support and resistance and measures the distance of the latest close to both.
func IdentifySupportResistance(candles []model.Candle) model.SupportResistance {
	if len(candles) == 0 {
		return model.SupportResistance{}
	}

	highs := lastN(model.Highs(candles), levelsLookback)
	lows := lastN(model.Lows(candles), levelsLookback)
	currentPrice := candles[len(candles)-1].Close

	levels := model.SupportResistance{
		Resistance: maxOf(highs),
		Support:    minOf(lows),
	}
	if currentPrice == 0 {
		return levels
	}

	levels.DistanceFromResistance = (levels.Resistance - currentPrice) / currentPrice * 100
	levels.DistanceFromSupport = (currentPrice - levels.Support) / currentPrice * 100
	levels.NearResistance = levels.DistanceFromResistance < nearLevelPct
	levels.NearSupport = levels.DistanceFromSupport < nearLevelPct

	return levels
}
