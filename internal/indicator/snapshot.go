package indicator

// Snapshot is the per-symbol indicator summary handed to the decision
// provider alongside the current price.
type Snapshot struct {
	RSI7          float64           `json:"rsi7"`
	RSI14         float64           `json:"rsi14"`
	EMA20         float64           `json:"ema20"`
	EMA50         float64           `json:"ema50"`
	MACD          float64           `json:"macd"`
	MACDSignal    float64           `json:"macdSignal"`
	MACDHistogram float64           `json:"macdHistogram"`
	Volatility    float64           `json:"volatility"`
	Timeframes    MultiTimeframeSet `json:"timeframes,omitempty"`
	Consensus     Consensus         `json:"consensus"`
}

// NewSnapshot computes the full indicator set for a price series sampled at
// the given candle interval.
func NewSnapshot(series []float64, intervalMinutes int) Snapshot {
	macd := MACD(series)
	timeframes := MultiTimeframe(series, intervalMinutes)

	return Snapshot{
		RSI7:          RSI(series, 7),
		RSI14:         RSI(series, 14),
		EMA20:         EMA(series, 20),
		EMA50:         EMA(series, 50),
		MACD:          macd.MACD,
		MACDSignal:    macd.Signal,
		MACDHistogram: macd.Histogram,
		Volatility:    Volatility(series, 20),
		Timeframes:    timeframes,
		Consensus:     TrendConsensus(timeframes),
	}
}
