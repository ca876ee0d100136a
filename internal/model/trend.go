package model

// Trend is the direction verdict of a single series
type Trend string

const (
	TrendBullish Trend = "bullish"
	TrendBearish Trend = "bearish"
	TrendNeutral Trend = "neutral"
)

// Alignment describes how the quote pairs of one timeframe agree
type Alignment string

const (
	AlignmentBullish       Alignment = "bullish"
	AlignmentBearish       Alignment = "bearish"
	AlignmentMostlyBullish Alignment = "mostly-bullish"
	AlignmentMostlyBearish Alignment = "mostly-bearish"
	AlignmentMixed         Alignment = "mixed"
)

// IsFull reports whether every pair agreed
func (a Alignment) IsFull() bool {
	return a == AlignmentBullish || a == AlignmentBearish
}

// IsBullish reports membership in the bullish family
func (a Alignment) IsBullish() bool {
	return a == AlignmentBullish || a == AlignmentMostlyBullish
}

// IsBearish reports membership in the bearish family
func (a Alignment) IsBearish() bool {
	return a == AlignmentBearish || a == AlignmentMostlyBearish
}

// TrendVerdict is the classifier output for one pair on one timeframe
type TrendVerdict struct {
	Pair         string           `json:"pair"`
	Quote        string           `json:"quote"`
	Timeframe    string           `json:"timeframe"`
	Trend        Trend            `json:"trend"`
	Confidence   int              `json:"confidence"`
	Signals      []string         `json:"signals"`
	BullishScore int              `json:"bullish_score"`
	BearishScore int              `json:"bearish_score"`
	Indicators   *IndicatorBundle `json:"indicators,omitempty"`
}

// TimeframeResult aggregates the pair verdicts of one timeframe
type TimeframeResult struct {
	Timeframe  string                  `json:"timeframe"`
	Alignment  Alignment               `json:"alignment"`
	Confidence int                     `json:"confidence"`
	Pairs      map[string]TrendVerdict `json:"pairs"`
}

// AssetResult is the cross-timeframe outcome for one asset
type AssetResult struct {
	Symbol         string                     `json:"symbol"`
	Volume24h      float64                    `json:"volume_24h"`
	PriceChange24h float64                    `json:"price_change_24h"`
	Timeframes     map[string]TimeframeResult `json:"timeframes"`
	ROIScore       int                        `json:"roi_score"`
	AlignmentCount int                        `json:"alignment_count"`
	DominantTrend  Trend                      `json:"dominant_trend"`
}
