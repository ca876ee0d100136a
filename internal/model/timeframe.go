package model

import (
	"strings"
	"time"
)

// Timeframe is one analysis resolution: a candle interval and how many candles to fetch.
type Timeframe struct {
	Code     string        `json:"code"`
	Label    string        `json:"label"`
	Interval string        `json:"interval"`
	Limit    int           `json:"limit"`
	Duration time.Duration `json:"-"`
}

// Timeframes lists every supported resolution. Interval and limit are fixed per timeframe.
var Timeframes = []Timeframe{
	{Code: "15m", Label: "15 Min", Interval: "15m", Limit: 96, Duration: 15 * time.Minute},
	{Code: "1h", Label: "1 Hour", Interval: "1h", Limit: 48, Duration: time.Hour},
	{Code: "4h", Label: "4 Hours", Interval: "4h", Limit: 42, Duration: 4 * time.Hour},
	{Code: "1d", Label: "1 Day", Interval: "1d", Limit: 30, Duration: 24 * time.Hour},
	{Code: "1w", Label: "1 Week", Interval: "1w", Limit: 20, Duration: 7 * 24 * time.Hour},
}

// DefaultTimeframes are active unless settings say otherwise
var DefaultTimeframes = []string{"1h", "4h", "1d", "1w"}

// LookupTimeframe finds a timeframe by its code
func LookupTimeframe(code string) (Timeframe, bool) {
	for _, tf := range Timeframes {
		if tf.Code == code {
			return tf, true
		}
	}
	return Timeframe{}, false
}

// IntervalDuration returns the candle duration for an interval code, one hour if unknown.
func IntervalDuration(interval string) time.Duration {
	for _, tf := range Timeframes {
		if tf.Interval == interval {
			return tf.Duration
		}
	}
	return time.Hour
}

// PrimaryQuote is the pair used for 24h statistics and for the ROI pattern bonus.
const PrimaryQuote = "USDT"

// QuotePairs is the fixed, ordered set of quote assets analyzed per timeframe.
var QuotePairs = []string{"USDT", "BTC", "ETH"}

// DefaultUniverse is the asset list scanned when nothing else is configured
var DefaultUniverse = []string{
	"BTC", "ETH", "BNB", "XRP", "ADA", "DOGE", "SOL", "MATIC", "DOT", "AVAX",
	"LINK", "UNI", "ATOM", "LTC", "BCH", "XLM", "ALGO", "VET", "FIL", "TRX",
	"NEAR", "APT", "ARB", "OP", "SUI",
}

// NormalizeSymbols upper-cases and trims symbols, dropping blanks and duplicates
func NormalizeSymbols(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
