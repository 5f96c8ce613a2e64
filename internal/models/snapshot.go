package models

import "gorm.io/gorm"

// PortfolioSnapshot is a point-in-time copy of the portfolio's aggregate
// state, written after each cycle for durability and reporting. Positions
// are stored as a JSON blob since they are only ever read whole.
type PortfolioSnapshot struct {
	gorm.Model
	Cash          float64 `json:"cash"`
	TotalValue    float64 `json:"total_value"`
	TotalReturn   float64 `json:"total_return"`
	PositionCount int     `json:"position_count"`
	TradeCount    int     `json:"trade_count"`
	PositionsJSON string  `gorm:"type:text" json:"positions_json"`
	Timestamp     int64   `json:"timestamp"`
}
