package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-trade-assistant-go/internal/indicator"
	"ai-trade-assistant-go/internal/portfolio"
)

func TestRulesProviderDecide(t *testing.T) {
	tests := []struct {
		name           string
		price          float64
		snapshot       indicator.Snapshot
		wantAction     portfolio.Action
		wantConfidence float64
	}{
		{
			name:           "Strong buy when oversold with bullish MACD above EMA20",
			price:          105,
			snapshot:       indicator.Snapshot{RSI7: 25, RSI14: 35, MACD: 1.2, EMA20: 100},
			wantAction:     portfolio.ActionBuy,
			wantConfidence: 0.85,
		},
		{
			name:           "Moderate buy when oversold with bullish MACD below EMA20",
			price:          95,
			snapshot:       indicator.Snapshot{RSI7: 25, RSI14: 35, MACD: 1.2, EMA20: 100},
			wantAction:     portfolio.ActionBuy,
			wantConfidence: 0.70,
		},
		{
			name:           "Weak buy when oversold above EMA20 with bearish MACD",
			price:          105,
			snapshot:       indicator.Snapshot{RSI7: 25, RSI14: 35, MACD: -0.5, EMA20: 100},
			wantAction:     portfolio.ActionBuy,
			wantConfidence: 0.60,
		},
		{
			name:           "RSI14 alone can trigger the oversold branch",
			price:          105,
			snapshot:       indicator.Snapshot{RSI7: 45, RSI14: 28, MACD: 1.2, EMA20: 100},
			wantAction:     portfolio.ActionBuy,
			wantConfidence: 0.85,
		},
		{
			name:           "Strong sell when overbought with bearish MACD below EMA20",
			price:          95,
			snapshot:       indicator.Snapshot{RSI7: 75, RSI14: 65, MACD: -1.2, EMA20: 100},
			wantAction:     portfolio.ActionSell,
			wantConfidence: 0.85,
		},
		{
			name:           "Moderate sell when overbought with bearish MACD above EMA20",
			price:          105,
			snapshot:       indicator.Snapshot{RSI7: 75, RSI14: 65, MACD: -1.2, EMA20: 100},
			wantAction:     portfolio.ActionSell,
			wantConfidence: 0.70,
		},
		{
			name:           "Weak sell when overbought below EMA20 with bullish MACD",
			price:          95,
			snapshot:       indicator.Snapshot{RSI7: 75, RSI14: 65, MACD: 0.5, EMA20: 100},
			wantAction:     portfolio.ActionSell,
			wantConfidence: 0.60,
		},
		{
			name:           "Hold on neutral RSI",
			price:          100,
			snapshot:       indicator.Snapshot{RSI7: 50, RSI14: 50, MACD: 1.2, EMA20: 100},
			wantAction:     portfolio.ActionHold,
			wantConfidence: 0.5,
		},
		{
			name:           "Hold when oversold with neither MACD nor EMA confirming",
			price:          95,
			snapshot:       indicator.Snapshot{RSI7: 25, RSI14: 35, MACD: -0.5, EMA20: 100},
			wantAction:     portfolio.ActionHold,
			wantConfidence: 0.5,
		},
	}

	provider := NewRulesProvider()
	assert.Equal(t, "rules", provider.Name())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := provider.Decide(context.Background(), MarketContext{
				Symbol:     "BTCUSDT",
				Price:      tt.price,
				Indicators: tt.snapshot,
			})
			require.NoError(t, err)
			assert.Equal(t, "BTCUSDT", decision.Symbol)
			assert.Equal(t, tt.wantAction, decision.Action)
			assert.InDelta(t, tt.wantConfidence, decision.Confidence, 1e-9)
			assert.NotEmpty(t, decision.Reasoning)
		})
	}
}

func TestRulesProviderStopsOnBuys(t *testing.T) {
	provider := NewRulesProvider()
	decision, err := provider.Decide(context.Background(), MarketContext{
		Symbol:     "BTCUSDT",
		Price:      100,
		Indicators: indicator.Snapshot{RSI7: 25, MACD: 1.2, EMA20: 90},
	})
	require.NoError(t, err)
	require.Equal(t, portfolio.ActionBuy, decision.Action)
	assert.InDelta(t, 98.0, decision.StopLoss, 1e-9)
	assert.InDelta(t, 104.0, decision.TakeProfit, 1e-9)
}
