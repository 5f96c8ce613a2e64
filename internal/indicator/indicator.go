package indicator

import "math"

// Price series are ordered oldest to newest. All functions are pure and
// never fail on short input: they degrade to documented fallback values so
// the analysis pipeline keeps running with sparse history.

// SMA returns the arithmetic mean of the last period values.
// With fewer than period samples it returns the mean of whatever is
// available, and 0 for an empty series.
func SMA(series []float64, period int) float64 {
	if len(series) == 0 || period <= 0 {
		return 0
	}
	if len(series) < period {
		period = len(series)
	}
	sum := 0.0
	for _, v := range series[len(series)-period:] {
		sum += v
	}
	return sum / float64(period)
}

// EMA seeds with the SMA of the first period samples and applies
// exponential smoothing (multiplier 2/(period+1)) over the rest.
// A series shorter than the period degrades to SMA of the whole series.
func EMA(series []float64, period int) float64 {
	if len(series) == 0 {
		return 0
	}
	if len(series) < period {
		return SMA(series, len(series))
	}

	multiplier := 2.0 / float64(period+1)
	ema := SMA(series[:period], period)
	for _, v := range series[period:] {
		ema = (v-ema)*multiplier + ema
	}
	return ema
}

// RSI computes the Relative Strength Index over the trailing period window.
// Gains and losses are averaged with a plain SMA rather than Wilder
// smoothing. Returns 50 (neutral) with fewer than period+1 samples and
// exactly 100 when the window contains no losses.
func RSI(series []float64, period int) float64 {
	if len(series) < period+1 {
		return 50
	}

	gains := make([]float64, 0, len(series)-1)
	losses := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		change := series[i] - series[i-1]
		if change > 0 {
			gains = append(gains, change)
			losses = append(losses, 0)
		} else {
			gains = append(gains, 0)
			losses = append(losses, -change)
		}
	}

	avgGain := SMA(gains[len(gains)-period:], period)
	avgLoss := SMA(losses[len(losses)-period:], period)

	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// MACDResult holds the MACD line, signal line and histogram.
type MACDResult struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// MACD returns EMA(12) - EMA(26). The signal line is approximated as
// 0.9 x MACD because no MACD history is tracked; the histogram is the
// difference. Downstream consumers are tuned to this approximation.
func MACD(series []float64) MACDResult {
	macd := EMA(series, 12) - EMA(series, 26)
	signal := macd * 0.9
	return MACDResult{
		MACD:      macd,
		Signal:    signal,
		Histogram: macd - signal,
	}
}

// Volatility returns the population standard deviation of percentage
// returns over the trailing period window, or 0 with fewer than period+1
// samples.
func Volatility(series []float64, period int) float64 {
	if len(series) < period+1 {
		return 0
	}

	returns := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		returns = append(returns, (series[i]-series[i-1])/series[i-1])
	}
	window := returns[len(returns)-period:]

	mean := 0.0
	for _, r := range window {
		mean += r
	}
	mean /= float64(len(window))

	variance := 0.0
	for _, r := range window {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(window))

	return math.Sqrt(variance)
}
