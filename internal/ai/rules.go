package ai

import (
	"context"
	"fmt"

	"ai-trade-assistant-go/internal/portfolio"
)

// RulesProvider is a local, deterministic analyst composing RSI
// oversold/overbought levels, MACD direction and price-vs-EMA20 into tiered
// buy/sell signals. It doubles as the fallback when the HTTP provider is
// unreachable.
type RulesProvider struct{}

// NewRulesProvider creates a new rule-based decision provider.
func NewRulesProvider() *RulesProvider {
	return &RulesProvider{}
}

// Name returns the provider's name.
func (p *RulesProvider) Name() string {
	return "rules"
}

// Decide derives a decision from the indicator snapshot. Signal strength
// maps to confidence: all three conditions 0.85, two 0.70, RSI plus price
// location 0.60, otherwise HOLD at 0.5.
func (p *RulesProvider) Decide(_ context.Context, market MarketContext) (portfolio.Decision, error) {
	ind := market.Indicators
	price := market.Price

	oversold := ind.RSI7 < 30 || ind.RSI14 < 30
	overbought := ind.RSI7 > 70 || ind.RSI14 > 70
	macdBullish := ind.MACD > 0
	macdBearish := ind.MACD < 0
	aboveEMA := price > ind.EMA20
	belowEMA := price < ind.EMA20

	decision := portfolio.Decision{
		Symbol:     market.Symbol,
		Action:     portfolio.ActionHold,
		Confidence: 0.5,
	}

	switch {
	case oversold && macdBullish && aboveEMA:
		decision.Action = portfolio.ActionBuy
		decision.Confidence = 0.85
		decision.Reasoning = fmt.Sprintf("Strong buy signal: RSI oversold (%.2f), MACD bullish (%.2f), price above EMA20", ind.RSI7, ind.MACD)
		decision.StopLoss = price * 0.98
		decision.TakeProfit = price * 1.04
	case oversold && macdBullish:
		decision.Action = portfolio.ActionBuy
		decision.Confidence = 0.70
		decision.Reasoning = fmt.Sprintf("Moderate buy signal: RSI oversold (%.2f), MACD bullish (%.2f)", ind.RSI7, ind.MACD)
		decision.StopLoss = price * 0.98
		decision.TakeProfit = price * 1.03
	case oversold && aboveEMA:
		decision.Action = portfolio.ActionBuy
		decision.Confidence = 0.60
		decision.Reasoning = fmt.Sprintf("Weak buy signal: RSI oversold (%.2f), price above EMA20", ind.RSI7)
		decision.StopLoss = price * 0.99
		decision.TakeProfit = price * 1.02
	case overbought && macdBearish && belowEMA:
		decision.Action = portfolio.ActionSell
		decision.Confidence = 0.85
		decision.Reasoning = fmt.Sprintf("Strong sell signal: RSI overbought (%.2f), MACD bearish (%.2f), price below EMA20", ind.RSI7, ind.MACD)
	case overbought && macdBearish:
		decision.Action = portfolio.ActionSell
		decision.Confidence = 0.70
		decision.Reasoning = fmt.Sprintf("Moderate sell signal: RSI overbought (%.2f), MACD bearish (%.2f)", ind.RSI7, ind.MACD)
	case overbought && belowEMA:
		decision.Action = portfolio.ActionSell
		decision.Confidence = 0.60
		decision.Reasoning = fmt.Sprintf("Weak sell signal: RSI overbought (%.2f), price below EMA20", ind.RSI7)
	default:
		decision.Reasoning = fmt.Sprintf("No clear signal: RSI=%.2f, MACD=%.2f", ind.RSI7, ind.MACD)
	}

	return decision, nil
}
