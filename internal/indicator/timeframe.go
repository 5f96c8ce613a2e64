package indicator

import "math"

// Timeframe is a logical candle width used for multi-horizon analysis.
type Timeframe string

const (
	Timeframe1m  Timeframe = "1m"
	Timeframe5m  Timeframe = "5m"
	Timeframe15m Timeframe = "15m"
	Timeframe1h  Timeframe = "1h"
	Timeframe4h  Timeframe = "4h"
	Timeframe1d  Timeframe = "1d"
)

// Trend classifies the direction of a price series.
type Trend string

const (
	TrendBullish  Trend = "bullish"
	TrendBearish  Trend = "bearish"
	TrendSideways Trend = "sideways"
)

// timeframeMinutes maps each timeframe to its width in minutes.
var timeframeMinutes = map[Timeframe]int{
	Timeframe1m:  1,
	Timeframe5m:  5,
	Timeframe15m: 15,
	Timeframe1h:  60,
	Timeframe4h:  240,
	Timeframe1d:  1440,
}

// analysisTimeframes are the horizons evaluated by MultiTimeframe.
var analysisTimeframes = []Timeframe{Timeframe5m, Timeframe15m, Timeframe1h, Timeframe4h, Timeframe1d}

// minResampledPoints is the minimum series length a timeframe needs before
// its indicators are considered meaningful.
const minResampledPoints = 50

// TimeframeIndicators is the indicator set computed for one timeframe.
type TimeframeIndicators struct {
	RSI7          float64 `json:"rsi7"`
	RSI14         float64 `json:"rsi14"`
	EMA20         float64 `json:"ema20"`
	EMA50         float64 `json:"ema50"`
	MACD          float64 `json:"macd"`
	MACDSignal    float64 `json:"macdSignal"`
	MACDHistogram float64 `json:"macdHistogram"`
	Trend         Trend   `json:"trend"`
	Strength      float64 `json:"strength"` // 0-100
}

// MultiTimeframeSet maps a timeframe to its computed indicators. Timeframes
// without enough resampled history are absent, not zero-filled.
type MultiTimeframeSet map[Timeframe]TimeframeIndicators

// Resample compresses a fine-grained series into coarser buckets by
// averaging each compression-factor-sized chunk. A compression factor of 1
// or less returns the input unchanged.
func Resample(series []float64, originalIntervalMinutes int, target Timeframe) []float64 {
	targetMinutes, ok := timeframeMinutes[target]
	if !ok || originalIntervalMinutes <= 0 {
		return series
	}
	compression := targetMinutes / originalIntervalMinutes
	if compression <= 1 {
		return series
	}

	resampled := make([]float64, 0, len(series)/compression+1)
	for i := 0; i < len(series); i += compression {
		end := i + compression
		if end > len(series) {
			end = len(series)
		}
		sum := 0.0
		for _, v := range series[i:end] {
			sum += v
		}
		resampled = append(resampled, sum/float64(end-i))
	}
	return resampled
}

// MultiTimeframe resamples the series to each analysis timeframe and, where
// at least 50 resampled points exist, computes short/long RSI, two EMAs,
// MACD, a trend classification and a 0-100 trend strength score.
func MultiTimeframe(series []float64, originalIntervalMinutes int) MultiTimeframeSet {
	result := make(MultiTimeframeSet)

	for _, tf := range analysisTimeframes {
		resampled := Resample(series, originalIntervalMinutes, tf)
		if len(resampled) < minResampledPoints {
			continue
		}

		ema20 := EMA(resampled, 20)
		ema50 := EMA(resampled, 50)
		macd := MACD(resampled)
		last := resampled[len(resampled)-1]

		trend := TrendSideways
		if ema20 > ema50 && last > ema20 {
			trend = TrendBullish
		} else if ema20 < ema50 && last < ema20 {
			trend = TrendBearish
		}

		result[tf] = TimeframeIndicators{
			RSI7:          RSI(resampled, 7),
			RSI14:         RSI(resampled, 14),
			EMA20:         ema20,
			EMA50:         ema50,
			MACD:          macd.MACD,
			MACDSignal:    macd.Signal,
			MACDHistogram: macd.Histogram,
			Trend:         trend,
			Strength:      trendStrength(resampled),
		}
	}

	return result
}

// trendStrength scores how decisively a series moved relative to its
// volatility: min(100, |priceChange|/volatility * 50). A flat series scores
// 0; any move on zero volatility saturates at 100.
func trendStrength(series []float64) float64 {
	priceChange := (series[len(series)-1] - series[0]) / series[0]
	vol := Volatility(series, 20)

	if vol == 0 {
		if priceChange == 0 {
			return 0
		}
		return 100
	}

	strength := math.Abs(priceChange) / vol * 50
	return math.Min(100, math.Max(0, strength))
}

// Consensus summarizes trend agreement across timeframes.
type Consensus struct {
	OverallTrend Trend   `json:"overallTrend"`
	Strength     float64 `json:"strength"`  // mean strength, 0-100
	Consensus    float64 `json:"consensus"` // percentage of timeframes agreeing
}

// TrendConsensus takes the majority vote of per-timeframe trend
// classifications. Consensus is max(bullish, bearish) over the total number
// of timeframes, as a percentage.
func TrendConsensus(set MultiTimeframeSet) Consensus {
	if len(set) == 0 {
		return Consensus{OverallTrend: TrendSideways}
	}

	bullish, bearish := 0, 0
	totalStrength := 0.0
	for _, tf := range set {
		switch tf.Trend {
		case TrendBullish:
			bullish++
		case TrendBearish:
			bearish++
		}
		totalStrength += tf.Strength
	}

	total := float64(len(set))
	overall := TrendSideways
	if bullish > bearish {
		overall = TrendBullish
	} else if bearish > bullish {
		overall = TrendBearish
	}

	return Consensus{
		OverallTrend: overall,
		Strength:     totalStrength / total,
		Consensus:    float64(max(bullish, bearish)) / total * 100,
	}
}
