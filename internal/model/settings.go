package model

import (
	"errors"
	"fmt"
)

// ErrInvalidSettings is returned by Settings.Validate
var ErrInvalidSettings = errors.New("invalid settings")

// Sensitivity controls how many signal points a side needs to win
type Sensitivity string

const (
	SensitivityLow    Sensitivity = "low"
	SensitivityMedium Sensitivity = "medium"
	SensitivityHigh   Sensitivity = "high"
)

// Threshold maps the sensitivity to the minimum winning score
func (s Sensitivity) Threshold() float64 {
	switch s {
	case SensitivityLow:
		return 3
	case SensitivityHigh:
		return 1.5
	default:
		return 2
	}
}

// Settings is the immutable snapshot of user configuration for one scan.
// It is passed by value and never mutated by the engine.
type Settings struct {
	TrendSensitivity Sensitivity `json:"trend_sensitivity" yaml:"trend_sensitivity"`
	MinVolume        float64     `json:"min_volume" yaml:"min_volume"`
	RSIOverbought    float64     `json:"rsi_overbought" yaml:"rsi_overbought"`
	RSIOversold      float64     `json:"rsi_oversold" yaml:"rsi_oversold"`
	MinChangePercent float64     `json:"min_change_percent" yaml:"min_change_percent"`
	IncludePatterns  bool        `json:"include_patterns" yaml:"include_patterns"`
	IncludeVolume    bool        `json:"include_volume" yaml:"include_volume"`
	Timeframes       []string    `json:"timeframes" yaml:"timeframes"`
}

// DefaultSettings returns the stock scanner configuration
func DefaultSettings() Settings {
	return Settings{
		TrendSensitivity: SensitivityMedium,
		MinVolume:        1_000_000,
		RSIOverbought:    70,
		RSIOversold:      30,
		MinChangePercent: 1.5,
		IncludePatterns:  true,
		IncludeVolume:    true,
		Timeframes:       append([]string(nil), DefaultTimeframes...),
	}
}

// Validate checks value ranges and timeframe codes
func (s Settings) Validate() error {
	switch s.TrendSensitivity {
	case SensitivityLow, SensitivityMedium, SensitivityHigh:
	default:
		return fmt.Errorf("%w: unknown trend sensitivity %q", ErrInvalidSettings, s.TrendSensitivity)
	}
	if s.RSIOverbought < 0 || s.RSIOverbought > 100 || s.RSIOversold < 0 || s.RSIOversold > 100 {
		return fmt.Errorf("%w: RSI thresholds must be within 0-100", ErrInvalidSettings)
	}
	if s.RSIOversold >= s.RSIOverbought {
		return fmt.Errorf("%w: RSI oversold %.0f must be below overbought %.0f",
			ErrInvalidSettings, s.RSIOversold, s.RSIOverbought)
	}
	if s.MinVolume < 0 || s.MinChangePercent < 0 {
		return fmt.Errorf("%w: volume floor and change threshold cannot be negative", ErrInvalidSettings)
	}
	if len(s.Timeframes) == 0 {
		return fmt.Errorf("%w: at least one timeframe must be active", ErrInvalidSettings)
	}
	seen := make(map[string]bool, len(s.Timeframes))
	for _, code := range s.Timeframes {
		if _, ok := LookupTimeframe(code); !ok {
			return fmt.Errorf("%w: unknown timeframe %q", ErrInvalidSettings, code)
		}
		if seen[code] {
			return fmt.Errorf("%w: duplicate timeframe %q", ErrInvalidSettings, code)
		}
		seen[code] = true
	}
	return nil
}
