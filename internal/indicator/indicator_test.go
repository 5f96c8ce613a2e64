package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSMA(t *testing.T) {
	testCases := []struct {
		name     string
		series   []float64
		period   int
		expected float64
	}{
		{
			name:     "Full period",
			series:   []float64{1, 2, 3, 4, 5},
			period:   5,
			expected: 3,
		},
		{
			name:     "Trailing window",
			series:   []float64{10, 20, 1, 2, 3},
			period:   3,
			expected: 2,
		},
		{
			name:     "Short series falls back to mean of available",
			series:   []float64{2, 4},
			period:   5,
			expected: 3,
		},
		{
			name:     "Empty series",
			series:   nil,
			period:   5,
			expected: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, SMA(tc.series, tc.period), 1e-9)
		})
	}
}

func TestEMA(t *testing.T) {
	t.Run("Degrades to SMA when period covers the series", func(t *testing.T) {
		series := []float64{1, 2, 3, 4}
		assert.InDelta(t, SMA(series, 4), EMA(series, 10), 1e-9)
	})

	t.Run("Empty series", func(t *testing.T) {
		assert.Equal(t, 0.0, EMA(nil, 10))
	})

	t.Run("Smoothing follows the latest samples", func(t *testing.T) {
		// A long flat stretch followed by a jump: the EMA should sit
		// between the flat level and the new price.
		series := make([]float64, 30)
		for i := range series {
			series[i] = 100
		}
		series = append(series, 110)

		ema := EMA(series, 10)
		assert.Greater(t, ema, 100.0)
		assert.Less(t, ema, 110.0)
	})

	t.Run("Exact seed plus one step", func(t *testing.T) {
		// Seed SMA([1..5]) = 3, multiplier 2/6, next sample 9:
		// ema = (9-3)*1/3 + 3 = 5
		series := []float64{1, 2, 3, 4, 5, 9}
		assert.InDelta(t, 5.0, EMA(series, 5), 1e-9)
	})
}

func TestRSI(t *testing.T) {
	t.Run("Neutral value on short input", func(t *testing.T) {
		assert.Equal(t, 50.0, RSI([]float64{1, 2, 3}, 14))
	})

	t.Run("Monotonically rising series returns 100", func(t *testing.T) {
		series := make([]float64, 20)
		for i := range series {
			series[i] = float64(i + 1)
		}
		assert.Equal(t, 100.0, RSI(series, 14))
	})

	t.Run("Monotonically falling series approaches 0", func(t *testing.T) {
		series := make([]float64, 20)
		for i := range series {
			series[i] = float64(100 - i)
		}
		assert.InDelta(t, 0.0, RSI(series, 14), 1e-9)
	})

	t.Run("Always within 0 and 100", func(t *testing.T) {
		series := []float64{5, 9, 2, 7, 3, 8, 1, 6, 4, 9, 2, 8, 3, 7, 5, 6}
		for period := 2; period <= 14; period++ {
			rsi := RSI(series, period)
			assert.GreaterOrEqual(t, rsi, 0.0, "period %d", period)
			assert.LessOrEqual(t, rsi, 100.0, "period %d", period)
		}
	})
}

func TestMACD(t *testing.T) {
	series := make([]float64, 60)
	for i := range series {
		series[i] = 100 + float64(i)
	}

	result := MACD(series)

	assert.InDelta(t, EMA(series, 12)-EMA(series, 26), result.MACD, 1e-9)
	assert.InDelta(t, result.MACD*0.9, result.Signal, 1e-9)
	assert.InDelta(t, result.MACD-result.Signal, result.Histogram, 1e-9)
}

func TestVolatility(t *testing.T) {
	t.Run("Zero on short input", func(t *testing.T) {
		assert.Equal(t, 0.0, Volatility([]float64{1, 2, 3}, 20))
	})

	t.Run("Zero for a constant series", func(t *testing.T) {
		series := make([]float64, 30)
		for i := range series {
			series[i] = 42
		}
		assert.Equal(t, 0.0, Volatility(series, 20))
	})

	t.Run("Positive for a varying series", func(t *testing.T) {
		series := make([]float64, 30)
		for i := range series {
			if i%2 == 0 {
				series[i] = 100
			} else {
				series[i] = 110
			}
		}
		assert.Greater(t, Volatility(series, 20), 0.0)
	})
}
