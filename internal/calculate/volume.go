package calculate

const recentVolumeWindow = 3

// CalculateVolumeChange compares the mean of the last three volumes with the mean of
// the whole series, as a percent.
func CalculateVolumeChange(volumes []float64) float64 {
	avgVolume := calculateAverage(volumes)
	if avgVolume == 0 {
		return 0
	}
	recentVolume := calculateAverage(lastN(volumes, recentVolumeWindow))
	return (recentVolume - avgVolume) / avgVolume * 100
}

// CalculatePriceChange is the percent return from the first to the last price
func CalculatePriceChange(prices []float64) float64 {
	if len(prices) == 0 || prices[0] == 0 {
		return 0
	}
	first := prices[0]
	last := prices[len(prices)-1]
	return (last - first) / first * 100
}
