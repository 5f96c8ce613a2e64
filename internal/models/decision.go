package models

import "gorm.io/gorm"

// DecisionRecord stores every decision the provider returned, whether or
// not it resulted in a trade.
type DecisionRecord struct {
	gorm.Model
	Symbol     string  `json:"symbol"`
	Action     string  `json:"action"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
	Price      float64 `json:"price"`
	Provider   string  `json:"provider"`
	Executed   bool    `json:"executed"`
	Timestamp  int64   `json:"timestamp"`
}
