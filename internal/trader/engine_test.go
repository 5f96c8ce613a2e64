package trader

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ai-trade-assistant-go/internal/ai"
	"ai-trade-assistant-go/internal/config"
	"ai-trade-assistant-go/internal/portfolio"
)

// fakeSource serves canned prices and history.
type fakeSource struct {
	prices  map[string]float64
	history map[string][]float64
	err     error
}

func (f *fakeSource) GetTickerPrices() (map[string]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.prices, nil
}

func (f *fakeSource) GetPriceHistory(symbol string, _, _ int) ([]float64, error) {
	history, ok := f.history[symbol]
	if !ok {
		return nil, errors.New("unknown symbol")
	}
	return history, nil
}

// fakeProvider returns a fixed decision per symbol and fails for symbols
// listed in failSymbols.
type fakeProvider struct {
	decisions   map[string]portfolio.Decision
	failSymbols map[string]bool
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Decide(_ context.Context, market ai.MarketContext) (portfolio.Decision, error) {
	if f.failSymbols[market.Symbol] {
		return portfolio.Decision{}, errors.New("provider down")
	}
	if d, ok := f.decisions[market.Symbol]; ok {
		return d, nil
	}
	return portfolio.Decision{Symbol: market.Symbol, Action: portfolio.ActionHold, Confidence: 0.5}, nil
}

// memorySink records everything it is asked to persist.
type memorySink struct {
	trades    []portfolio.Trade
	snapshots []portfolio.Portfolio
	decisions []recordedDecision
}

type recordedDecision struct {
	decision portfolio.Decision
	price    float64
	provider string
	executed bool
}

func (s *memorySink) SaveTrade(trade portfolio.Trade) error {
	s.trades = append(s.trades, trade)
	return nil
}

func (s *memorySink) SaveSnapshot(p portfolio.Portfolio) error {
	s.snapshots = append(s.snapshots, p)
	return nil
}

func (s *memorySink) SaveDecision(d portfolio.Decision, price float64, provider string, executed bool) error {
	s.decisions = append(s.decisions, recordedDecision{d, price, provider, executed})
	return nil
}

func steadyHistory(n int, price float64) []float64 {
	history := make([]float64, n)
	for i := range history {
		history[i] = price
	}
	return history
}

func testConfig(symbols ...string) *config.Config {
	return &config.Config{
		Trading: config.Trading{
			Symbols:          symbols,
			InitialBalance:   10000,
			TickInterval:     1,
			CandleInterval:   60,
			HistoryLimit:     100,
			CooldownSeconds:  0,
			MinActConfidence: 0.6,
		},
	}
}

func newTestEngine(cfg *config.Config, source *fakeSource, provider *fakeProvider, sink *memorySink) *Engine {
	manager := portfolio.NewManager(zap.NewNop(), portfolio.TradingStrategy{
		RiskPerTrade: 10, MaxPositions: 5, MinConfidence: 0.6, MaxLeverage: 10, Diversification: true,
	}, 10000)
	return NewEngine(zap.NewNop(), cfg, source, provider, manager, sink)
}

func TestRunCycleExecutesConfidentBuy(t *testing.T) {
	source := &fakeSource{
		prices:  map[string]float64{"BTCUSDT": 100},
		history: map[string][]float64{"BTCUSDT": steadyHistory(60, 100)},
	}
	provider := &fakeProvider{decisions: map[string]portfolio.Decision{
		"BTCUSDT": {Symbol: "BTCUSDT", Action: portfolio.ActionBuy, Confidence: 0.9, Reasoning: "test"},
	}}
	sink := &memorySink{}
	engine := newTestEngine(testConfig("BTCUSDT"), source, provider, sink)

	require.NoError(t, engine.runCycle(context.Background()))

	require.Len(t, sink.trades, 1)
	assert.Equal(t, portfolio.ActionBuy, sink.trades[0].Side)
	// 10% of 10000 cash at price 100.
	assert.InDelta(t, 10.0, sink.trades[0].Quantity, 1e-9)

	require.Len(t, sink.decisions, 1)
	assert.True(t, sink.decisions[0].executed)
	assert.Equal(t, "fake", sink.decisions[0].provider)

	require.Len(t, sink.snapshots, 1)
	assert.InDelta(t, 9000.0, sink.snapshots[0].Cash, 1e-9)
	assert.InDelta(t, 10000.0, sink.snapshots[0].TotalValue, 1e-9)
}

func TestRunCycleLowConfidenceIsRecordedNotExecuted(t *testing.T) {
	source := &fakeSource{
		prices:  map[string]float64{"BTCUSDT": 100},
		history: map[string][]float64{"BTCUSDT": steadyHistory(60, 100)},
	}
	provider := &fakeProvider{decisions: map[string]portfolio.Decision{
		"BTCUSDT": {Symbol: "BTCUSDT", Action: portfolio.ActionBuy, Confidence: 0.4},
	}}
	sink := &memorySink{}
	engine := newTestEngine(testConfig("BTCUSDT"), source, provider, sink)

	require.NoError(t, engine.runCycle(context.Background()))

	assert.Empty(t, sink.trades)
	require.Len(t, sink.decisions, 1)
	assert.False(t, sink.decisions[0].executed)
	assert.Empty(t, engine.Manager().Portfolio().Positions)
}

func TestRunCycleProviderFailureDegradesToHold(t *testing.T) {
	source := &fakeSource{
		prices:  map[string]float64{"BTCUSDT": 100},
		history: map[string][]float64{"BTCUSDT": steadyHistory(60, 100)},
	}
	provider := &fakeProvider{failSymbols: map[string]bool{"BTCUSDT": true}}
	sink := &memorySink{}
	engine := newTestEngine(testConfig("BTCUSDT"), source, provider, sink)

	require.NoError(t, engine.runCycle(context.Background()))

	assert.Empty(t, sink.trades)
	require.Len(t, sink.decisions, 1)
	assert.Equal(t, portfolio.ActionHold, sink.decisions[0].decision.Action)
	assert.False(t, sink.decisions[0].executed)
}

func TestRunCycleSkipsThinHistory(t *testing.T) {
	source := &fakeSource{
		prices: map[string]float64{"BTCUSDT": 100, "ETHUSDT": 200},
		history: map[string][]float64{
			"BTCUSDT": steadyHistory(60, 100),
			"ETHUSDT": steadyHistory(10, 200), // below the analysis minimum
		},
	}
	provider := &fakeProvider{decisions: map[string]portfolio.Decision{
		"BTCUSDT": {Symbol: "BTCUSDT", Action: portfolio.ActionBuy, Confidence: 0.9},
		"ETHUSDT": {Symbol: "ETHUSDT", Action: portfolio.ActionBuy, Confidence: 0.9},
	}}
	sink := &memorySink{}
	engine := newTestEngine(testConfig("BTCUSDT", "ETHUSDT"), source, provider, sink)

	require.NoError(t, engine.runCycle(context.Background()))

	// Only BTCUSDT had enough candles to be analyzed and traded.
	require.Len(t, sink.trades, 1)
	assert.Equal(t, "BTCUSDT", sink.trades[0].Symbol)
	require.Len(t, sink.decisions, 1)
	assert.Equal(t, "BTCUSDT", sink.decisions[0].decision.Symbol)
}

func TestRunCycleCooldownSkips(t *testing.T) {
	source := &fakeSource{
		prices:  map[string]float64{"BTCUSDT": 100},
		history: map[string][]float64{"BTCUSDT": steadyHistory(60, 100)},
	}
	provider := &fakeProvider{decisions: map[string]portfolio.Decision{
		"BTCUSDT": {Symbol: "BTCUSDT", Action: portfolio.ActionBuy, Confidence: 0.9},
	}}
	sink := &memorySink{}
	cfg := testConfig("BTCUSDT")
	cfg.Trading.CooldownSeconds = 3600
	engine := newTestEngine(cfg, source, provider, sink)

	require.NoError(t, engine.runCycle(context.Background()))
	require.NoError(t, engine.runCycle(context.Background()))

	// The second cycle fell inside the cooldown window and did nothing.
	assert.Len(t, sink.snapshots, 1)
	assert.Len(t, sink.decisions, 1)
}

func TestRunCycleTickerFailure(t *testing.T) {
	source := &fakeSource{err: errors.New("exchange down")}
	sink := &memorySink{}
	engine := newTestEngine(testConfig("BTCUSDT"), source, &fakeProvider{}, sink)

	err := engine.runCycle(context.Background())
	require.Error(t, err)
	assert.Empty(t, sink.trades)
	assert.Empty(t, sink.snapshots)
}
