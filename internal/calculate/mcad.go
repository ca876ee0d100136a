package calculate

const (
	macdFastPeriod   = 12
	macdSlowPeriod   = 26
	macdSignalWindow = 9
)

// MACD holds the oscillator line, its signal and the histogram
type MACD struct {
	Line      float64
	Signal    float64
	Histogram float64
}

// CalculateMACD computes EMA(12) - EMA(26). The signal line is the mean of the last
// nine closes, not an EMA of the MACD series; downstream thresholds depend on it.
func CalculateMACD(prices []float64) MACD {
	if len(prices) < macdSlowPeriod {
		return MACD{}
	}

	fastEMA := CalculateEMA(prices, macdFastPeriod)
	slowEMA := CalculateEMA(prices, macdSlowPeriod)
	line := fastEMA - slowEMA

	signal := calculateAverage(prices[len(prices)-macdSignalWindow:])

	return MACD{
		Line:      line,
		Signal:    signal,
		Histogram: line - signal,
	}
}
