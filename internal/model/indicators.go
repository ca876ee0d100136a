package model

// Pattern is the chart pattern label produced by the indicator engine
type Pattern string

const (
	PatternConsolidation   Pattern = "consolidation"
	PatternBreakoutBullish Pattern = "breakout-bullish"
	PatternBreakoutBearish Pattern = "breakout-bearish"
	PatternUptrend         Pattern = "uptrend"
	PatternDowntrend       Pattern = "downtrend"
	PatternRanging         Pattern = "ranging"
)

// IsBreakout reports whether the pattern is one of the breakout labels
func (p Pattern) IsBreakout() bool {
	return p == PatternBreakoutBullish || p == PatternBreakoutBearish
}

// IsDirectional reports whether the pattern is a trend structure
func (p Pattern) IsDirectional() bool {
	return p == PatternUptrend || p == PatternDowntrend
}

// PatternResult pairs a pattern with its qualitative confidence (high, medium)
type PatternResult struct {
	Pattern    Pattern `json:"pattern"`
	Confidence string  `json:"confidence"`
}

// SupportResistance holds the recent range levels and how close price sits to them
type SupportResistance struct {
	Resistance             float64 `json:"resistance"`
	Support                float64 `json:"support"`
	DistanceFromResistance float64 `json:"distance_from_resistance_pct"`
	DistanceFromSupport    float64 `json:"distance_from_support_pct"`
	NearResistance         bool    `json:"near_resistance"`
	NearSupport            bool    `json:"near_support"`
}

// IndicatorBundle holds every indicator computed for one (asset, pair, timeframe) series
type IndicatorBundle struct {
	CurrentPrice      float64           `json:"current_price"`
	PriceChange       float64           `json:"price_change_pct"` // first to last close of the series
	RSI               float64           `json:"rsi"`
	MACD              float64           `json:"macd"`
	MACDSignal        float64           `json:"macd_signal"`
	MACDHist          float64           `json:"macd_hist"`
	MA5               float64           `json:"ma5"`
	MA10              float64           `json:"ma10"`
	MA20              float64           `json:"ma20"`
	EMA9              float64           `json:"ema9"`
	EMA21             float64           `json:"ema21"`
	VolumeChange      float64           `json:"volume_change_pct"` // last 3 candles vs series mean
	Pattern           Pattern           `json:"pattern"`
	PatternConfidence string            `json:"pattern_confidence"`
	Levels            SupportResistance `json:"levels"`
}
