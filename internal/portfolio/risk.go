package portfolio

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Risk metrics treat the trade log as a return proxy: each consecutive
// trade-price pair stands in for a period return. That is a known
// simplification that biases the numbers when trades are sparse; callers
// should treat the report as indicative, not as marks-to-market.

// RiskMetrics is the combined risk report for reporting surfaces.
type RiskMetrics struct {
	VaR95        float64 `json:"var95"`
	SharpeRatio  float64 `json:"sharpeRatio"`
	MaxDrawdown  float64 `json:"maxDrawdown"`
	WinRate      float64 `json:"winRate"`
	ProfitFactor float64 `json:"profitFactor"`
}

// tradeReturns computes percentage price changes across consecutive trades
// in chronological order (the log itself is newest first).
func (m *Manager) tradeReturns() []float64 {
	trades := m.portfolio.Trades
	if len(trades) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(trades)-1)
	// Walk oldest to newest.
	for i := len(trades) - 2; i >= 0; i-- {
		previous := trades[i+1].Price
		current := trades[i].Price
		returns = append(returns, (current-previous)/previous*100)
	}
	return returns
}

// popStdDev is the population standard deviation. The risk formulas divide
// by N, not N-1, so gonum's sample StdDev does not fit here.
func popStdDev(xs []float64, mean float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	variance := 0.0
	for _, x := range xs {
		variance += (x - mean) * (x - mean)
	}
	return math.Sqrt(variance / float64(len(xs)))
}

// ValueAtRisk estimates the maximum expected loss at the given confidence
// level over horizonDays, using a normal approximation over the trade
// return proxy. With fewer than two trades it returns a conservative flat
// 5% of total value.
func (m *Manager) ValueAtRisk(confidenceLevel float64, horizonDays float64) float64 {
	returns := m.tradeReturns()
	if len(returns) < 2 {
		return m.portfolio.TotalValue * 0.05
	}

	mean := stat.Mean(returns, nil)
	stdDev := popStdDev(returns, mean)

	zScore := 1.96
	switch confidenceLevel {
	case 0.95:
		zScore = 1.645
	case 0.99:
		zScore = 2.326
	}

	varAmount := m.portfolio.TotalValue * (stdDev / 100) * zScore * math.Sqrt(horizonDays)
	return math.Abs(varAmount)
}

// SharpeRatio computes the annualized risk-adjusted return over the trade
// return proxy, assuming 252 periods per year. Returns 0 with fewer than
// two trades or zero dispersion.
func (m *Manager) SharpeRatio(riskFreeRate float64) float64 {
	if len(m.portfolio.Trades) < 2 {
		return 0
	}

	returns := m.tradeReturns()
	mean := stat.Mean(returns, nil)
	stdDev := popStdDev(returns, mean)
	if stdDev == 0 {
		return 0
	}

	annualizedReturn := mean * 252
	annualizedStdDev := stdDev * math.Sqrt(252)
	annualizedRiskFree := riskFreeRate * 252

	return (annualizedReturn - annualizedRiskFree) / annualizedStdDev
}

// DrawdownReport holds the largest peak-to-trough decline of the synthetic
// equity curve, in percent, with the peak and trough values.
type DrawdownReport struct {
	MaxDrawdown float64 `json:"maxDrawdown"`
	Peak        float64 `json:"peak"`
	Trough      float64 `json:"trough"`
}

// MaxDrawdown walks a synthetic equity curve built by applying each trade's
// cash effect (BUY subtracts notional, SELL adds it) in chronological order
// from the initial balance, tracking the running peak and the largest
// peak-to-trough percentage decline.
func (m *Manager) MaxDrawdown() DrawdownReport {
	trades := m.portfolio.Trades
	if len(trades) < 2 {
		return DrawdownReport{Peak: m.initialBalance, Trough: m.initialBalance}
	}

	values := make([]float64, 0, len(trades)+1)
	values = append(values, m.initialBalance)
	current := m.initialBalance
	for i := len(trades) - 1; i >= 0; i-- {
		if trades[i].Side == ActionBuy {
			current -= trades[i].Quantity * trades[i].Price
		} else {
			current += trades[i].Quantity * trades[i].Price
		}
		values = append(values, current)
	}

	peak := m.initialBalance
	trough := m.initialBalance
	maxDrawdown := 0.0
	for _, value := range values {
		if value > peak {
			peak = value
			trough = value
		} else if value < trough {
			trough = value
			if drawdown := (peak - trough) / peak; drawdown > maxDrawdown {
				maxDrawdown = drawdown
			}
		}
	}

	return DrawdownReport{MaxDrawdown: maxDrawdown * 100, Peak: peak, Trough: trough}
}

// GetRiskMetrics assembles the combined risk report: 95% one-day VaR,
// annualized Sharpe at a 2% risk-free rate, max drawdown, win rate and
// profit factor.
func (m *Manager) GetRiskMetrics() RiskMetrics {
	winRate, profitFactor := m.winStats()
	return RiskMetrics{
		VaR95:        m.ValueAtRisk(0.95, 1),
		SharpeRatio:  m.SharpeRatio(0.02),
		MaxDrawdown:  m.MaxDrawdown().MaxDrawdown,
		WinRate:      winRate,
		ProfitFactor: profitFactor,
	}
}

// winStats scores the closed (SELL) legs of the trade log against the entry
// price recorded on each sell. A sell above entry is a win. Profit factor
// is gross profit over gross loss; +Inf with profit and no loss, 0 with no
// profit.
func (m *Manager) winStats() (winRate, profitFactor float64) {
	if len(m.portfolio.Trades) == 0 {
		return 0, 0
	}

	winning := 0
	totalProfit := 0.0
	totalLoss := 0.0
	for _, trade := range m.portfolio.Trades {
		if trade.Side != ActionSell || trade.EntryPrice == 0 {
			continue
		}
		pnl := (trade.Price - trade.EntryPrice) * trade.Quantity
		if pnl > 0 {
			winning++
			totalProfit += pnl
		} else if pnl < 0 {
			totalLoss += -pnl
		}
	}

	winRate = float64(winning) / float64(len(m.portfolio.Trades)) * 100

	switch {
	case totalLoss > 0:
		profitFactor = totalProfit / totalLoss
	case totalProfit > 0:
		profitFactor = math.Inf(1)
	default:
		profitFactor = 0
	}

	return winRate, profitFactor
}
