package portfolio

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRiskManager() *Manager {
	m := NewManager(zap.NewNop(), TradingStrategy{
		RiskPerTrade: 10, MaxPositions: 10, MinConfidence: 0.1, MaxLeverage: 10,
	}, 10000)
	m.now = func() time.Time { return monday }
	return m
}

func TestValueAtRiskConservativeFallback(t *testing.T) {
	m := newRiskManager()

	// Fewer than 2 trades: flat 5% of total value.
	assert.InDelta(t, 0.05*10000, m.ValueAtRisk(0.95, 1), 1e-9)

	require.NotNil(t, m.ExecuteTrade(buyDecision("BTC", 0.9), 100, 1))
	m.UpdatePositions(map[string]float64{"BTC": 100})
	assert.InDelta(t, 0.05*m.Portfolio().TotalValue, m.ValueAtRisk(0.95, 1), 1e-9)
}

func TestValueAtRiskWithHistory(t *testing.T) {
	m := newRiskManager()
	require.NotNil(t, m.ExecuteTrade(buyDecision("BTC", 0.9), 100, 1))
	require.NotNil(t, m.ExecuteTrade(buyDecision("ETH", 0.9), 110, 1))
	require.NotNil(t, m.ExecuteTrade(buyDecision("SOL", 0.9), 99, 1))
	m.UpdatePositions(map[string]float64{"BTC": 100, "ETH": 110, "SOL": 99})

	var95 := m.ValueAtRisk(0.95, 1)
	assert.Greater(t, var95, 0.0)

	// 99% confidence uses a larger z-score.
	var99 := m.ValueAtRisk(0.99, 1)
	assert.Greater(t, var99, var95)

	// A longer horizon scales by sqrt(days).
	var4d := m.ValueAtRisk(0.95, 4)
	assert.InDelta(t, var95*2, var4d, 1e-6)
}

func TestSharpeRatio(t *testing.T) {
	t.Run("Zero with fewer than two trades", func(t *testing.T) {
		m := newRiskManager()
		assert.Equal(t, 0.0, m.SharpeRatio(0.02))

		require.NotNil(t, m.ExecuteTrade(buyDecision("BTC", 0.9), 100, 1))
		assert.Equal(t, 0.0, m.SharpeRatio(0.02))
	})

	t.Run("Zero when every fill is at the same price", func(t *testing.T) {
		m := newRiskManager()
		require.NotNil(t, m.ExecuteTrade(buyDecision("BTC", 0.9), 100, 1))
		require.NotNil(t, m.ExecuteTrade(buyDecision("ETH", 0.9), 100, 1))
		assert.Equal(t, 0.0, m.SharpeRatio(0.02))
	})

	t.Run("Finite with varying fills", func(t *testing.T) {
		m := newRiskManager()
		require.NotNil(t, m.ExecuteTrade(buyDecision("BTC", 0.9), 100, 1))
		require.NotNil(t, m.ExecuteTrade(buyDecision("ETH", 0.9), 105, 1))
		require.NotNil(t, m.ExecuteTrade(buyDecision("SOL", 0.9), 95, 1))

		sharpe := m.SharpeRatio(0.02)
		assert.False(t, math.IsNaN(sharpe))
		assert.False(t, math.IsInf(sharpe, 0))
	})
}

func TestMaxDrawdown(t *testing.T) {
	t.Run("Flat without trades", func(t *testing.T) {
		m := newRiskManager()
		report := m.MaxDrawdown()
		assert.Equal(t, 0.0, report.MaxDrawdown)
		assert.Equal(t, 10000.0, report.Peak)
		assert.Equal(t, 10000.0, report.Trough)
	})

	t.Run("Tracks the equity dip from buys", func(t *testing.T) {
		m := newRiskManager()
		// Buy 10@100 (equity 9000), sell back 10@100 (equity 10000),
		// buy 10@50 (equity 9500).
		require.NotNil(t, m.ExecuteTrade(buyDecision("BTC", 0.9), 100, 10))
		require.NotNil(t, m.ExecuteTrade(Decision{Symbol: "BTC", Action: ActionSell, Confidence: 0.9}, 100, 10))
		require.NotNil(t, m.ExecuteTrade(buyDecision("ETH", 0.9), 50, 10))

		report := m.MaxDrawdown()
		// Worst dip: 10000 -> 9000 = 10%.
		assert.InDelta(t, 10.0, report.MaxDrawdown, 1e-9)
		assert.Equal(t, 10000.0, report.Peak)
		assert.Equal(t, 9000.0, report.Trough)
	})
}

func TestWinRateAndProfitFactor(t *testing.T) {
	t.Run("Zero on an empty log", func(t *testing.T) {
		m := newRiskManager()
		metrics := m.GetRiskMetrics()
		assert.Equal(t, 0.0, metrics.WinRate)
		assert.Equal(t, 0.0, metrics.ProfitFactor)
	})

	t.Run("Profit with no loss is infinite profit factor", func(t *testing.T) {
		m := newRiskManager()
		require.NotNil(t, m.ExecuteTrade(buyDecision("BTC", 0.9), 100, 2))
		require.NotNil(t, m.ExecuteTrade(Decision{Symbol: "BTC", Action: ActionSell, Confidence: 0.9}, 120, 2))

		_, profitFactor := m.winStats()
		assert.True(t, math.IsInf(profitFactor, 1))
	})

	t.Run("Mixed wins and losses", func(t *testing.T) {
		m := newRiskManager()
		// Win: buy 2@100, sell 2@120 (+40).
		require.NotNil(t, m.ExecuteTrade(buyDecision("BTC", 0.9), 100, 2))
		require.NotNil(t, m.ExecuteTrade(Decision{Symbol: "BTC", Action: ActionSell, Confidence: 0.9}, 120, 2))
		// Loss: buy 1@50, sell 1@40 (-10).
		require.NotNil(t, m.ExecuteTrade(buyDecision("ETH", 0.9), 50, 1))
		require.NotNil(t, m.ExecuteTrade(Decision{Symbol: "ETH", Action: ActionSell, Confidence: 0.9}, 40, 1))

		winRate, profitFactor := m.winStats()
		// 1 winning sell over 4 total trades.
		assert.InDelta(t, 25.0, winRate, 1e-9)
		assert.InDelta(t, 4.0, profitFactor, 1e-9) // 40 / 10
	})
}
