package model

import "time"

// Candle represents a single OHLCV observation. Series are ordered oldest first.
type Candle struct {
	OpenTime    time.Time `json:"open_time"`
	Open        float64   `json:"open"`
	High        float64   `json:"high"`
	Low         float64   `json:"low"`
	Close       float64   `json:"close"`
	Volume      float64   `json:"volume"`
	CloseTime   time.Time `json:"close_time,omitempty"`
	QuoteVolume float64   `json:"quote_volume,omitempty"`
}

// Ticker holds the 24h statistics used by the volume pre-filter
type Ticker struct {
	QuoteVolume        float64 `json:"quote_volume"`
	PriceChangePercent float64 `json:"price_change_percent"`
}

// Closes extracts close prices
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// Highs extracts high prices
func Highs(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.High
	}
	return out
}

// Lows extracts low prices
func Lows(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Low
	}
	return out
}

// Volumes extracts base volumes
func Volumes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Volume
	}
	return out
}
