package roi

import (
	"testing"

	"github.com/Alias1177/TrendScanner/internal/model"
)

func timeframe(code string, alignment model.Alignment, confidence int, usdt model.Pattern) model.TimeframeResult {
	tf := model.TimeframeResult{
		Timeframe:  code,
		Alignment:  alignment,
		Confidence: confidence,
		Pairs:      map[string]model.TrendVerdict{},
	}
	if usdt != "" {
		tf.Pairs["USDT"] = model.TrendVerdict{Quote: "USDT", Indicators: &model.IndicatorBundle{Pattern: usdt}}
	}
	return tf
}

func uniform(alignment model.Alignment, confidence int, pattern model.Pattern) map[string]model.TimeframeResult {
	out := map[string]model.TimeframeResult{}
	for _, code := range model.DefaultTimeframes {
		out[code] = timeframe(code, alignment, confidence, pattern)
	}
	return out
}

func TestScoreVolumeBonusOnly(t *testing.T) {
	settings := model.DefaultSettings()
	tfs := uniform(model.AlignmentMixed, 0, model.PatternRanging)

	got := Score(settings.MinVolume, tfs, model.DefaultTimeframes, settings)
	if got.Score != 5 {
		t.Errorf("Score() = %d, want 5", got.Score)
	}
	if got.AlignmentCount != 0 {
		t.Errorf("AlignmentCount = %d, want 0", got.AlignmentCount)
	}
	if got.DominantTrend != model.TrendNeutral {
		t.Errorf("DominantTrend = %v, want neutral", got.DominantTrend)
	}
}

func TestScorePerfectAsset(t *testing.T) {
	settings := model.DefaultSettings()
	tfs := uniform(model.AlignmentBullish, 100, model.PatternBreakoutBullish)

	got := Score(3*settings.MinVolume, tfs, model.DefaultTimeframes, settings)
	if got.Score != 100 {
		t.Errorf("Score() = %d, want 100", got.Score)
	}
	if got.AlignmentCount != 4 {
		t.Errorf("AlignmentCount = %d, want 4", got.AlignmentCount)
	}
	if got.DominantTrend != model.TrendBullish {
		t.Errorf("DominantTrend = %v, want bullish", got.DominantTrend)
	}
}

func TestScoreComponents(t *testing.T) {
	settings := model.DefaultSettings()
	selected := []string{"1h", "4h"}

	tests := []struct {
		name      string
		tfs       map[string]model.TimeframeResult
		volume    float64
		score     int
		aligned   int
		dominance model.Trend
	}{
		{
			name: "one aligned with directional pattern",
			tfs: map[string]model.TimeframeResult{
				"1h": timeframe("1h", model.AlignmentBearish, 80, model.PatternDowntrend),
				"4h": timeframe("4h", model.AlignmentMixed, 40, model.PatternRanging),
			},
			volume: 0,
			// 20 + 18 + 10 + 5
			score:     53,
			aligned:   1,
			dominance: model.TrendBearish,
		},
		{
			name: "breakout beats directional",
			tfs: map[string]model.TimeframeResult{
				"1h": timeframe("1h", model.AlignmentMostlyBullish, 50, model.PatternUptrend),
				"4h": timeframe("4h", model.AlignmentMostlyBearish, 50, model.PatternBreakoutBearish),
			},
			volume: 2*settings.MinVolume + 1,
			// 0 + 15 + 20 + 10
			score:     45,
			aligned:   0,
			dominance: model.TrendNeutral,
		},
		{
			name: "missing timeframe counts as zero",
			tfs: map[string]model.TimeframeResult{
				"1h": timeframe("1h", model.AlignmentBullish, 80, ""),
			},
			volume: 2 * settings.MinVolume,
			// 20 + 12 + 0 + 5
			score:     37,
			aligned:   1,
			dominance: model.TrendBullish,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.volume, tt.tfs, selected, settings)
			if got.Score != tt.score {
				t.Errorf("Score() = %d, want %d", got.Score, tt.score)
			}
			if got.AlignmentCount != tt.aligned {
				t.Errorf("AlignmentCount = %d, want %d", got.AlignmentCount, tt.aligned)
			}
			if got.DominantTrend != tt.dominance {
				t.Errorf("DominantTrend = %v, want %v", got.DominantTrend, tt.dominance)
			}
		})
	}
}

func TestReferencePatternFallsBackToNextQuote(t *testing.T) {
	tf := model.TimeframeResult{
		Pairs: map[string]model.TrendVerdict{
			"ETH": {Quote: "ETH", Indicators: &model.IndicatorBundle{Pattern: model.PatternDowntrend}},
			"BTC": {Quote: "BTC", Indicators: &model.IndicatorBundle{Pattern: model.PatternBreakoutBullish}},
		},
	}

	p, ok := referencePattern(tf)
	if !ok || p != model.PatternBreakoutBullish {
		t.Errorf("referencePattern() = %v, %v; want BTC pair pattern", p, ok)
	}
}

func TestShortUSDTSeriesGivesNoPattern(t *testing.T) {
	settings := model.DefaultSettings()
	tf := model.TimeframeResult{
		Timeframe: "1h",
		Alignment: model.AlignmentMixed,
		Pairs: map[string]model.TrendVerdict{
			"USDT": {Quote: "USDT", Trend: model.TrendNeutral},
			"BTC":  {Quote: "BTC", Indicators: &model.IndicatorBundle{Pattern: model.PatternBreakoutBullish}},
		},
	}

	if p, ok := referencePattern(tf); ok {
		t.Errorf("referencePattern() = %v, want none when USDT has no indicators", p)
	}

	got := Score(settings.MinVolume, map[string]model.TimeframeResult{"1h": tf}, []string{"1h"}, settings)
	if got.Score != 5 {
		t.Errorf("Score() = %d, want 5", got.Score)
	}
}

func TestScoreNoTimeframes(t *testing.T) {
	got := Score(0, nil, nil, model.DefaultSettings())
	if got.Score != 5 {
		t.Errorf("Score() = %d, want 5", got.Score)
	}
}
