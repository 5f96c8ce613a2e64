package trader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ai-trade-assistant-go/internal/ai"
	"ai-trade-assistant-go/internal/config"
	"ai-trade-assistant-go/internal/indicator"
	"ai-trade-assistant-go/internal/market"
	"ai-trade-assistant-go/internal/portfolio"
	"ai-trade-assistant-go/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// minHistoryPoints is the minimum candle history a symbol needs before it
// is analyzed at all.
const minHistoryPoints = 50

// Engine is the orchestration loop: it periodically pulls prices, runs the
// indicator engine, asks the decision provider, feeds decisions into the
// portfolio manager, and persists snapshots. The portfolio is mutated only
// from this loop, one cycle at a time.
type Engine struct {
	UUID      string
	Name      string
	StartTime time.Time

	logger    *zap.Logger
	cfg       *config.Config
	market    market.DataSource
	provider  ai.DecisionProvider
	manager   *portfolio.Manager
	sink      store.Sink
	lastCycle time.Time
}

// NewEngine creates a new trading engine.
func NewEngine(logger *zap.Logger, cfg *config.Config, source market.DataSource, provider ai.DecisionProvider, manager *portfolio.Manager, sink store.Sink) *Engine {
	return &Engine{
		UUID:      uuid.NewString(),
		Name:      "ai-trade-assistant",
		StartTime: time.Now(),
		logger:    logger.Named("engine"),
		cfg:       cfg,
		market:    source,
		provider:  provider,
		manager:   manager,
		sink:      sink,
	}
}

// Manager exposes the portfolio manager for the API server.
func (e *Engine) Manager() *portfolio.Manager {
	return e.manager
}

// Provider returns the name of the active decision provider.
func (e *Engine) Provider() string {
	return e.provider.Name()
}

// Run starts the engine's main loop and blocks until the context is
// canceled.
func (e *Engine) Run(ctx context.Context) {
	e.logger.Info("Starting trading engine",
		zap.String("uuid", e.UUID),
		zap.Strings("symbols", e.cfg.Trading.Symbols),
		zap.String("provider", e.provider.Name()),
		zap.String("strategy", e.manager.Strategy().Name))

	// Persist the starting state so the audit trail begins at the
	// initial balance.
	if err := e.sink.SaveSnapshot(e.manager.Portfolio()); err != nil {
		e.logger.Error("Failed to save initial snapshot", zap.Error(err))
	}

	interval := time.Duration(e.cfg.Trading.TickInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.logger.Info("Starting analysis loop", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Stopping trading engine...")
			return
		case <-ticker.C:
			if err := e.runCycle(ctx); err != nil {
				// A failed cycle produces no trades and leaves the
				// portfolio unchanged; the next tick retries.
				e.logger.Error("Analysis cycle failed", zap.Error(err))
			}
		}
	}
}

// analysis is the per-symbol result of the concurrent fan-out phase.
type analysis struct {
	Symbol   string
	Price    float64
	History  []float64
	Decision portfolio.Decision
	Err      error
}

// runCycle performs one analysis-and-trade cycle across all configured
// symbols. Analysis (history fetch, indicators, decision) fans out
// concurrently; portfolio mutations are applied strictly sequentially
// afterwards.
func (e *Engine) runCycle(ctx context.Context) error {
	cooldown := time.Duration(e.cfg.Trading.CooldownSeconds) * time.Second
	if time.Since(e.lastCycle) < cooldown {
		e.logger.Debug("Skipping cycle: cooldown window active")
		return nil
	}
	e.lastCycle = time.Now()

	prices, err := e.market.GetTickerPrices()
	if err != nil {
		return fmt.Errorf("could not get ticker prices: %w", err)
	}

	// The portfolio snapshot handed to providers is taken once, before
	// anything mutates.
	snapshot := e.manager.Portfolio()

	var wg sync.WaitGroup
	results := make(chan analysis, len(e.cfg.Trading.Symbols))

	for _, symbol := range e.cfg.Trading.Symbols {
		price, ok := prices[symbol]
		if !ok {
			e.logger.Warn("No ticker price for symbol, skipping", zap.String("symbol", symbol))
			continue
		}

		wg.Add(1)
		go func(symbol string, price float64) {
			defer wg.Done()
			results <- e.analyzeSymbol(ctx, symbol, price, snapshot)
		}(symbol, price)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	analyses := make([]analysis, 0, len(e.cfg.Trading.Symbols))
	for result := range results {
		if result.Err != nil {
			e.logger.Warn("Symbol analysis skipped",
				zap.String("symbol", result.Symbol), zap.Error(result.Err))
			continue
		}
		analyses = append(analyses, result)
	}

	// Apply decisions one at a time: the manager is not reentrant-safe.
	for _, a := range analyses {
		e.applyDecision(a)
	}

	alerts := e.manager.UpdatePositions(prices)
	for _, alert := range alerts {
		e.logger.Info("Position alert",
			zap.String("symbol", alert.Symbol),
			zap.String("kind", string(alert.Kind)),
			zap.Float64("price", alert.Price),
			zap.Float64("profit_percent", alert.ProfitPercent))
	}

	if err := e.sink.SaveSnapshot(e.manager.Portfolio()); err != nil {
		e.logger.Error("Failed to save portfolio snapshot", zap.Error(err))
	}

	current := e.manager.Portfolio()
	e.logger.Info("Cycle complete",
		zap.Int("symbols_analyzed", len(analyses)),
		zap.Float64("total_value", current.TotalValue),
		zap.Float64("total_return", current.TotalReturn))

	return nil
}

// analyzeSymbol fetches history, computes indicators and obtains a
// decision for one symbol. A provider failure degrades to HOLD with zero
// confidence rather than aborting the cycle.
func (e *Engine) analyzeSymbol(ctx context.Context, symbol string, price float64, snapshot portfolio.Portfolio) analysis {
	history, err := e.market.GetPriceHistory(symbol, e.cfg.Trading.CandleInterval, e.cfg.Trading.HistoryLimit)
	if err != nil {
		return analysis{Symbol: symbol, Err: fmt.Errorf("could not get price history: %w", err)}
	}
	if len(history) < minHistoryPoints {
		return analysis{Symbol: symbol, Err: fmt.Errorf("insufficient history: %d candles", len(history))}
	}

	marketCtx := ai.MarketContext{
		Symbol:         symbol,
		Price:          price,
		Indicators:     indicator.NewSnapshot(history, e.cfg.Trading.CandleInterval),
		PriceHistory:   history,
		OpenPositions:  snapshot.Positions,
		PortfolioValue: snapshot.TotalValue,
		Cash:           snapshot.Cash,
	}

	decision, err := e.provider.Decide(ctx, marketCtx)
	if err != nil {
		e.logger.Warn("Decision provider failed, holding",
			zap.String("symbol", symbol), zap.Error(err))
		decision = portfolio.Decision{
			Symbol:    symbol,
			Action:    portfolio.ActionHold,
			Reasoning: "decision provider unavailable",
		}
	}

	return analysis{Symbol: symbol, Price: price, History: history, Decision: decision}
}

// applyDecision feeds one decision into the portfolio manager and records
// both the decision and any resulting trade.
func (e *Engine) applyDecision(a analysis) {
	executed := false

	if a.Decision.Action != portfolio.ActionHold && a.Decision.Confidence >= e.cfg.Trading.MinActConfidence {
		quantity := e.quantityFor(a.Decision, a.Price)
		if trade := e.manager.ExecuteTrade(a.Decision, a.Price, quantity); trade != nil {
			executed = true
			if err := e.sink.SaveTrade(*trade); err != nil {
				e.logger.Error("Failed to save trade record", zap.Error(err))
			}
		}
	}

	if err := e.sink.SaveDecision(a.Decision, a.Price, e.provider.Name(), executed); err != nil {
		e.logger.Error("Failed to save decision record", zap.Error(err))
	}
}

// quantityFor sizes the order: buys risk a fixed slice of cash, sells
// liquidate the full position.
func (e *Engine) quantityFor(d portfolio.Decision, price float64) float64 {
	if d.Action == portfolio.ActionSell {
		for _, position := range e.manager.Portfolio().Positions {
			if position.Symbol == d.Symbol {
				return position.Quantity
			}
		}
		return 0
	}
	return e.manager.CalculatePositionSize(d, price)
}
