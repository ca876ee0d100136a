package analyze

import "github.com/Alias1177/TrendScanner/internal/model"

const volumeConfirmationPct = 20.0

// signalTally accumulates points per side and the names of the signals that fired
type signalTally struct {
	bullish int
	bearish int
	signals []string
}

func (t *signalTally) bull(points int, name string) {
	t.bullish += points
	t.signals = append(t.signals, name)
}

func (t *signalTally) bear(points int, name string) {
	t.bearish += points
	t.signals = append(t.signals, name)
}

// scoreSignals tests every signal condition independently against the indicator bundle
func scoreSignals(ind *model.IndicatorBundle, settings model.Settings) signalTally {
	tally := signalTally{signals: []string{}}
	price := ind.CurrentPrice

	// Moving average stack
	if price > ind.MA5 && ind.MA5 > ind.MA10 && ind.MA10 > ind.MA20 {
		tally.bull(2, "MA alignment bullish")
	} else if price < ind.MA5 && ind.MA5 < ind.MA10 && ind.MA10 < ind.MA20 {
		tally.bear(2, "MA alignment bearish")
	}

	// EMA cross
	if ind.EMA9 > ind.EMA21 {
		tally.bull(1, "EMA cross bullish")
	} else if ind.EMA9 < ind.EMA21 {
		tally.bear(1, "EMA cross bearish")
	}

	// RSI momentum inside the non-extreme zone
	if ind.RSI > 50 && ind.RSI < settings.RSIOverbought {
		tally.bull(1, "RSI bullish momentum")
	} else if ind.RSI < 50 && ind.RSI > settings.RSIOversold {
		tally.bear(1, "RSI bearish momentum")
	}

	// Period return
	if ind.PriceChange > settings.MinChangePercent {
		tally.bull(1, "Price momentum up")
	} else if ind.PriceChange < -settings.MinChangePercent {
		tally.bear(1, "Price momentum down")
	}

	// MACD
	if ind.MACDHist > 0 && ind.MACD > ind.MACDSignal {
		tally.bull(1, "MACD bullish")
	} else if ind.MACDHist < 0 && ind.MACD < ind.MACDSignal {
		tally.bear(1, "MACD bearish")
	}

	// Volume confirms the direction of the period return
	if settings.IncludeVolume && ind.VolumeChange > volumeConfirmationPct {
		if ind.PriceChange > 0 {
			tally.bull(1, "Volume confirms up")
		} else if ind.PriceChange < 0 {
			tally.bear(1, "Volume confirms down")
		}
	}

	if settings.IncludePatterns {
		switch ind.Pattern {
		case model.PatternBreakoutBullish:
			tally.bull(2, "Bullish breakout")
		case model.PatternBreakoutBearish:
			tally.bear(2, "Bearish breakout")
		case model.PatternUptrend:
			tally.bull(1, "Uptrend structure")
		case model.PatternDowntrend:
			tally.bear(1, "Downtrend structure")
		}
	}

	return tally
}
