package portfolio

import "time"

// Action is the side of a trading decision.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Decision is the output of a decision provider, consumed by the manager.
// Confidence is a certainty score in [0,1]. StopLoss and TakeProfit are
// optional price levels; zero means unset.
type Decision struct {
	Symbol     string  `json:"symbol"`
	Action     Action  `json:"action"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
	StopLoss   float64 `json:"stopLoss,omitempty"`
	TakeProfit float64 `json:"takeProfit,omitempty"`
}

// Position is an open holding of one symbol. EntryPrice is the
// volume-weighted average when the position has been cost-averaged.
type Position struct {
	Symbol        string    `json:"symbol"`
	Quantity      float64   `json:"quantity"`
	EntryPrice    float64   `json:"entryPrice"`
	CurrentPrice  float64   `json:"currentPrice"`
	Leverage      int       `json:"leverage"`
	UnrealizedPnl float64   `json:"unrealizedPnl"`
	EntryTime     time.Time `json:"entryTime"`
	StopLoss      float64   `json:"stopLoss,omitempty"`
	TakeProfit    float64   `json:"takeProfit,omitempty"`
}

// Trade is an immutable record of an executed buy or sell. For sells,
// EntryPrice carries the position's entry price at the moment of sale so
// win/loss accounting survives position removal.
type Trade struct {
	ID         string    `json:"id"`
	Symbol     string    `json:"symbol"`
	Side       Action    `json:"side"`
	Quantity   float64   `json:"quantity"`
	Price      float64   `json:"price"`
	Timestamp  time.Time `json:"timestamp"`
	Confidence float64   `json:"confidence"`
	Reason     string    `json:"reason"`
	EntryPrice float64   `json:"entryPrice,omitempty"`
}

// Portfolio is the aggregate state of one trading session. Trades are
// ordered newest first.
type Portfolio struct {
	Cash        float64    `json:"cash"`
	TotalValue  float64    `json:"totalValue"`
	Positions   []Position `json:"positions"`
	Trades      []Trade    `json:"trades"`
	TotalReturn float64    `json:"totalReturn"` // percent vs initial balance
}

// AlertKind classifies a threshold crossing observed during a position
// update.
type AlertKind string

const (
	AlertScalpTarget AlertKind = "scalp_target"
	AlertStopLoss    AlertKind = "stop_loss"
	AlertTakeProfit  AlertKind = "take_profit"
)

// Alert reports a threshold crossing for external notification. The
// manager never auto-executes on alerts; acting on them is the caller's
// decision.
type Alert struct {
	Symbol        string    `json:"symbol"`
	Kind          AlertKind `json:"kind"`
	Price         float64   `json:"price"`
	ProfitPercent float64   `json:"profitPercent"`
}
