package calculate

// RSIPeriod is the lookback used by the classifier
const RSIPeriod = 14

// CalculateRSI computes the Relative Strength Index over the first period deltas of the series.
// The averages are taken once and are not smoothed forward over the rest of the series.
func CalculateRSI(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period+1 {
		return 50.0 // Default value if not enough data
	}

	var gains, losses float64
	for i := 1; i <= period; i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	if avgLoss == 0 {
		return 100.0
	}

	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}
