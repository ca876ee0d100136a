// Package report orders, filters and renders scan results for people.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/Alias1177/TrendScanner/internal/model"
)

// SortKey selects the result ordering
type SortKey string

const (
	SortROI    SortKey = "roiScore"
	SortVolume SortKey = "volume"
	SortSymbol SortKey = "symbol"
)

// ParseSortKey accepts the key names used by the CLI and the API; unknown keys sort by ROI
func ParseSortKey(s string) SortKey {
	switch strings.ToLower(s) {
	case "volume":
		return SortVolume
	case "symbol", "name":
		return SortSymbol
	default:
		return SortROI
	}
}

// Sort returns a sorted copy; ties keep the scan order
func Sort(results []model.AssetResult, key SortKey) []model.AssetResult {
	out := append([]model.AssetResult(nil), results...)

	var less func(a, b model.AssetResult) bool
	switch key {
	case SortVolume:
		less = func(a, b model.AssetResult) bool { return a.Volume24h > b.Volume24h }
	case SortSymbol:
		less = func(a, b model.AssetResult) bool { return a.Symbol < b.Symbol }
	default:
		less = func(a, b model.AssetResult) bool { return a.ROIScore > b.ROIScore }
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// Filter keeps results whose symbol contains query, case-insensitively
func Filter(results []model.AssetResult, query string) []model.AssetResult {
	query = strings.TrimSpace(strings.ToUpper(query))
	if query == "" {
		return append([]model.AssetResult(nil), results...)
	}

	out := make([]model.AssetResult, 0, len(results))
	for _, r := range results {
		if strings.Contains(strings.ToUpper(r.Symbol), query) {
			out = append(out, r)
		}
	}
	return out
}

// Top returns at most n results ordered by ROI score
func Top(results []model.AssetResult, n int) []model.AssetResult {
	sorted := Sort(results, SortROI)
	if n >= 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

var alignmentArrows = map[model.Alignment]string{
	model.AlignmentBullish:       "⬆⬆",
	model.AlignmentMostlyBullish: "⬆",
	model.AlignmentBearish:       "⬇⬇",
	model.AlignmentMostlyBearish: "⬇",
	model.AlignmentMixed:         "↔",
}

var trendArrows = map[model.Trend]string{
	model.TrendBullish: "⬆",
	model.TrendBearish: "⬇",
	model.TrendNeutral: "→",
}

var patternBadges = map[model.Pattern]string{
	model.PatternBreakoutBullish: "BREAKOUT ⬆",
	model.PatternBreakoutBearish: "BREAKOUT ⬇",
	model.PatternUptrend:         "UPTREND",
	model.PatternDowntrend:       "DOWNTREND",
	model.PatternConsolidation:   "SQUEEZE",
	model.PatternRanging:         "RANGE",
}

// AlignmentArrow maps an alignment label to its arrow
func AlignmentArrow(a model.Alignment) string {
	if s, ok := alignmentArrows[a]; ok {
		return s
	}
	return "?"
}

// TrendArrow maps a trend to its arrow
func TrendArrow(t model.Trend) string {
	if s, ok := trendArrows[t]; ok {
		return s
	}
	return "?"
}

// PatternBadge maps a pattern to its short badge
func PatternBadge(p model.Pattern) string {
	if s, ok := patternBadges[p]; ok {
		return s
	}
	return "-"
}

// ScoreTier buckets a ROI score
func ScoreTier(score int) string {
	switch {
	case score >= 75:
		return "strong"
	case score >= 60:
		return "good"
	case score >= 40:
		return "fair"
	default:
		return "weak"
	}
}

// FormatVolume abbreviates a currency amount
func FormatVolume(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.2fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("$%.2fK", v/1e3)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}

// WriteTable renders results with one column per timeframe
func WriteTable(w io.Writer, results []model.AssetResult, timeframes []string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	header := []string{"SYMBOL", "ROI", "TIER", "TREND", "ALIGNED", "VOLUME 24H", "CHANGE 24H"}
	for _, tf := range timeframes {
		header = append(header, strings.ToUpper(tf))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, r := range results {
		row := []string{
			r.Symbol,
			fmt.Sprintf("%d", r.ROIScore),
			ScoreTier(r.ROIScore),
			TrendArrow(r.DominantTrend) + " " + string(r.DominantTrend),
			fmt.Sprintf("%d/%d", r.AlignmentCount, len(timeframes)),
			FormatVolume(r.Volume24h),
			fmt.Sprintf("%+.2f%%", r.PriceChange24h),
		}
		for _, code := range timeframes {
			row = append(row, timeframeCell(r.Timeframes[code]))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	return tw.Flush()
}

func timeframeCell(tf model.TimeframeResult) string {
	if tf.Alignment == "" {
		return "-"
	}
	cell := fmt.Sprintf("%s %d%%", AlignmentArrow(tf.Alignment), tf.Confidence)
	if v, ok := tf.Pairs[model.PrimaryQuote]; ok && v.Indicators != nil {
		if p := v.Indicators.Pattern; p.IsBreakout() {
			cell += " " + PatternBadge(p)
		}
	}
	return cell
}
