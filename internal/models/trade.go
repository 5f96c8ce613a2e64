package models

import "gorm.io/gorm"

// TradeRecord is the durable copy of an executed trade, emitted by the
// engine for audit. The in-memory portfolio remains the authoritative
// owner; these rows are never read back into it.
type TradeRecord struct {
	gorm.Model
	TradeID    string  `gorm:"uniqueIndex" json:"trade_id"`
	Symbol     string  `json:"symbol"`
	Side       string  `json:"side"` // "BUY" or "SELL"
	Price      float64 `json:"price"`
	Quantity   float64 `json:"quantity"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
	EntryPrice float64 `json:"entry_price,omitempty"`
	Timestamp  int64   `json:"timestamp"`
}
