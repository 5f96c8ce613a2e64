package ai

import (
	"context"

	"ai-trade-assistant-go/internal/indicator"
	"ai-trade-assistant-go/internal/portfolio"
)

// MarketContext is everything a decision provider sees for one symbol:
// the current price, the indicator snapshot, and the portfolio situation.
type MarketContext struct {
	Symbol         string               `json:"symbol"`
	Price          float64              `json:"price"`
	Indicators     indicator.Snapshot   `json:"indicators"`
	PriceHistory   []float64            `json:"priceHistory,omitempty"`
	OpenPositions  []portfolio.Position `json:"openPositions"`
	PortfolioValue float64              `json:"portfolioValue"`
	Cash           float64              `json:"cash"`
}

// DecisionProvider returns a trading decision for a market context. A
// failed call is treated by the engine as equivalent to HOLD; retry and
// backoff belong to the provider's transport, never to the core.
type DecisionProvider interface {
	Name() string
	Decide(ctx context.Context, market MarketContext) (portfolio.Decision, error)
}
