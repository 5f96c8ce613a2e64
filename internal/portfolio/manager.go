package portfolio

import (
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager owns the portfolio state for one trading session. It is not safe
// for concurrent use: the orchestration loop must ensure at most one
// analysis-and-trade cycle mutates it at a time.
type Manager struct {
	logger         *zap.Logger
	strategy       TradingStrategy
	initialBalance float64
	portfolio      Portfolio
	trailingStops  map[string]float64 // symbol -> high-water mark

	now func() time.Time
}

// NewManager creates a manager with the given strategy and initial balance.
// A non-positive balance defaults to 10000.
func NewManager(logger *zap.Logger, strategy TradingStrategy, initialBalance float64) *Manager {
	if initialBalance <= 0 {
		initialBalance = 10000
	}
	return &Manager{
		logger:         logger.Named("portfolio"),
		strategy:       strategy,
		initialBalance: initialBalance,
		portfolio: Portfolio{
			Cash:       initialBalance,
			TotalValue: initialBalance,
		},
		trailingStops: make(map[string]float64),
		now:           time.Now,
	}
}

// SetStrategy swaps the strategy for subsequent cycles. Open positions are
// unaffected.
func (m *Manager) SetStrategy(strategy TradingStrategy) {
	m.strategy = strategy
}

// Strategy returns the active strategy.
func (m *Manager) Strategy() TradingStrategy {
	return m.strategy
}

// InitialBalance returns the configured baseline used for total-return
// accounting.
func (m *Manager) InitialBalance() float64 {
	return m.initialBalance
}

// Portfolio returns a snapshot copy of the current portfolio state.
func (m *Manager) Portfolio() Portfolio {
	snapshot := m.portfolio
	snapshot.Positions = append([]Position(nil), m.portfolio.Positions...)
	snapshot.Trades = append([]Trade(nil), m.portfolio.Trades...)
	return snapshot
}

// CanOpenPosition reports whether the strategy permits opening a new
// position for the decision. Checks are independent and short-circuit on
// the first failure.
func (m *Manager) CanOpenPosition(d Decision) bool {
	if len(m.portfolio.Positions) >= m.strategy.MaxPositions {
		m.logger.Debug("Rejecting open: max positions reached",
			zap.String("symbol", d.Symbol), zap.Int("max_positions", m.strategy.MaxPositions))
		return false
	}

	if d.Confidence < m.strategy.MinConfidence {
		m.logger.Debug("Rejecting open: confidence below threshold",
			zap.String("symbol", d.Symbol),
			zap.Float64("confidence", d.Confidence),
			zap.Float64("min_confidence", m.strategy.MinConfidence))
		return false
	}

	if m.strategy.Diversification && m.findPosition(d.Symbol) != nil {
		m.logger.Debug("Rejecting open: position already exists for symbol",
			zap.String("symbol", d.Symbol))
		return false
	}

	if m.strategy.UseMarketTiming && m.strategy.AvoidWeekends {
		day := m.now().Weekday()
		if day == time.Saturday || day == time.Sunday {
			m.logger.Debug("Rejecting open: weekend trading disabled",
				zap.String("symbol", d.Symbol))
			return false
		}
	}

	return true
}

// CalculatePositionSize returns the quantity to buy at currentPrice:
// cash x riskPerTrade%, divided by price, floored to two decimals. Sizing
// depends only on cash and the risk percentage; confidence gates leverage
// instead.
func (m *Manager) CalculatePositionSize(d Decision, currentPrice float64) float64 {
	if currentPrice <= 0 {
		return 0
	}
	riskAmount := m.portfolio.Cash * (m.strategy.RiskPerTrade / 100)
	return math.Floor(riskAmount/currentPrice*100) / 100
}

// ExecuteTrade applies a decision to the portfolio. HOLD and rejected
// operations (insufficient cash, missing position, gate failures) return
// nil; callers must treat nil as "no trade occurred", not a fault.
func (m *Manager) ExecuteTrade(d Decision, currentPrice, quantity float64) *Trade {
	if d.Action == ActionHold {
		return nil
	}

	trade := Trade{
		ID:         uuid.NewString(),
		Symbol:     d.Symbol,
		Side:       d.Action,
		Quantity:   quantity,
		Price:      currentPrice,
		Timestamp:  m.now(),
		Confidence: d.Confidence,
		Reason:     d.Reasoning,
	}

	switch d.Action {
	case ActionBuy:
		if !m.executeBuy(d, currentPrice, quantity) {
			return nil
		}
	case ActionSell:
		sold, entryPrice := m.executeSell(d, currentPrice, quantity)
		if sold == 0 {
			return nil
		}
		trade.Quantity = sold
		trade.EntryPrice = entryPrice
	default:
		m.logger.Warn("Ignoring decision with unknown action",
			zap.String("symbol", d.Symbol), zap.String("action", string(d.Action)))
		return nil
	}

	// Trade log is newest first.
	m.portfolio.Trades = append([]Trade{trade}, m.portfolio.Trades...)

	m.logger.Info("Executed trade",
		zap.String("trade_id", trade.ID),
		zap.String("symbol", trade.Symbol),
		zap.String("side", string(trade.Side)),
		zap.Float64("quantity", trade.Quantity),
		zap.Float64("price", trade.Price),
		zap.Float64("confidence", trade.Confidence))

	return &trade
}

func (m *Manager) executeBuy(d Decision, currentPrice, quantity float64) bool {
	if !m.CanOpenPosition(d) {
		return false
	}

	cost := quantity * currentPrice
	if cost > m.portfolio.Cash || quantity <= 0 {
		m.logger.Warn("Rejecting buy: insufficient cash",
			zap.String("symbol", d.Symbol),
			zap.Float64("cost", cost),
			zap.Float64("cash", m.portfolio.Cash))
		return false
	}

	m.portfolio.Cash -= cost

	if existing := m.findPosition(d.Symbol); existing != nil && m.strategy.UseDCA {
		// Cost averaging: merge into the existing position at the
		// volume-weighted average entry price.
		totalQuantity := existing.Quantity + quantity
		existing.EntryPrice = (existing.EntryPrice*existing.Quantity + currentPrice*quantity) / totalQuantity
		existing.Quantity = totalQuantity
		existing.CurrentPrice = currentPrice
		existing.StopLoss = d.StopLoss
		existing.TakeProfit = d.TakeProfit
		return true
	}

	leverage := m.strategy.MaxLeverage / 2
	if d.Confidence > 0.8 {
		leverage = m.strategy.MaxLeverage
	}
	if leverage > m.strategy.MaxLeverage {
		leverage = m.strategy.MaxLeverage
	}

	m.portfolio.Positions = append(m.portfolio.Positions, Position{
		Symbol:       d.Symbol,
		Quantity:     quantity,
		EntryPrice:   currentPrice,
		CurrentPrice: currentPrice,
		Leverage:     leverage,
		EntryTime:    m.now(),
		StopLoss:     d.StopLoss,
		TakeProfit:   d.TakeProfit,
	})

	if m.strategy.UseTrailingStop {
		m.trailingStops[d.Symbol] = currentPrice
	}

	return true
}

// executeSell reduces or liquidates the position for the symbol. It returns
// the quantity actually sold (0 when no position exists) and the position's
// entry price at the moment of sale.
func (m *Manager) executeSell(d Decision, currentPrice, quantity float64) (float64, float64) {
	idx := m.findPositionIndex(d.Symbol)
	if idx == -1 {
		m.logger.Warn("Rejecting sell: no position for symbol", zap.String("symbol", d.Symbol))
		return 0, 0
	}

	position := &m.portfolio.Positions[idx]
	sellQuantity := math.Min(quantity, position.Quantity)
	if sellQuantity <= 0 {
		return 0, 0
	}
	entryPrice := position.EntryPrice

	m.portfolio.Cash += sellQuantity * currentPrice
	position.Quantity -= sellQuantity

	if position.Quantity <= 0 {
		m.portfolio.Positions = append(m.portfolio.Positions[:idx], m.portfolio.Positions[idx+1:]...)
		delete(m.trailingStops, d.Symbol)
	}

	return sellQuantity, entryPrice
}

// UpdatePositions refreshes mark prices and unrealized P&L from the price
// map, ratchets trailing stops, and recomputes the aggregate totals. It is
// the only place totals are recalculated, so it must run after every price
// update and after every trade. Returned alerts report threshold crossings
// for external notification; nothing is auto-executed.
func (m *Manager) UpdatePositions(prices map[string]float64) []Alert {
	var alerts []Alert
	totalPositionValue := 0.0

	for i := range m.portfolio.Positions {
		position := &m.portfolio.Positions[i]
		currentPrice, ok := prices[position.Symbol]
		if !ok || currentPrice <= 0 {
			// No fresh price: keep the previous mark in the totals.
			totalPositionValue += position.CurrentPrice * position.Quantity
			continue
		}

		position.CurrentPrice = currentPrice
		position.UnrealizedPnl = (currentPrice - position.EntryPrice) * position.Quantity
		totalPositionValue += currentPrice * position.Quantity

		if m.strategy.UseTrailingStop {
			highWater, ok := m.trailingStops[position.Symbol]
			if !ok {
				highWater = position.EntryPrice
			}
			// Monotonic ratchet: the stop only ever rises.
			if currentPrice > highWater {
				m.trailingStops[position.Symbol] = currentPrice
				position.StopLoss = currentPrice * (1 - m.strategy.TrailingStopPercent/100)
			}
		}

		profitPercent := (currentPrice - position.EntryPrice) / position.EntryPrice * 100

		if m.strategy.UseScalping && profitPercent >= m.strategy.ScalpingTargetPct {
			alerts = append(alerts, Alert{
				Symbol:        position.Symbol,
				Kind:          AlertScalpTarget,
				Price:         currentPrice,
				ProfitPercent: profitPercent,
			})
		}
		if position.StopLoss > 0 && currentPrice <= position.StopLoss {
			alerts = append(alerts, Alert{
				Symbol:        position.Symbol,
				Kind:          AlertStopLoss,
				Price:         currentPrice,
				ProfitPercent: profitPercent,
			})
		}
		if position.TakeProfit > 0 && currentPrice >= position.TakeProfit {
			alerts = append(alerts, Alert{
				Symbol:        position.Symbol,
				Kind:          AlertTakeProfit,
				Price:         currentPrice,
				ProfitPercent: profitPercent,
			})
		}
	}

	m.portfolio.TotalValue = m.portfolio.Cash + totalPositionValue
	m.portfolio.TotalReturn = (m.portfolio.TotalValue - m.initialBalance) / m.initialBalance * 100

	return alerts
}

// Reset restores cash to the initial balance and clears positions, trades
// and trailing-stop state. Strategy and initial balance are untouched.
func (m *Manager) Reset() {
	m.portfolio = Portfolio{
		Cash:       m.initialBalance,
		TotalValue: m.initialBalance,
	}
	m.trailingStops = make(map[string]float64)
	m.logger.Info("Portfolio reset to initial balance", zap.Float64("balance", m.initialBalance))
}

func (m *Manager) findPosition(symbol string) *Position {
	idx := m.findPositionIndex(symbol)
	if idx == -1 {
		return nil
	}
	return &m.portfolio.Positions[idx]
}

func (m *Manager) findPositionIndex(symbol string) int {
	for i := range m.portfolio.Positions {
		if m.portfolio.Positions[i].Symbol == symbol {
			return i
		}
	}
	return -1
}
