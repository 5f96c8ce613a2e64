package store

import (
	"encoding/json"
	"fmt"
	"time"

	"ai-trade-assistant-go/internal/models"
	"ai-trade-assistant-go/internal/portfolio"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Sink receives portfolio snapshots, trades and decisions after each cycle.
// The core only writes through it; reading back is a reporting concern.
type Sink interface {
	SaveTrade(trade portfolio.Trade) error
	SaveSnapshot(p portfolio.Portfolio) error
	SaveDecision(d portfolio.Decision, price float64, provider string, executed bool) error
}

// Store is the gorm-backed persistence sink.
// It implements the Sink interface.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

var _ Sink = (*Store)(nil)

// NewStore creates a store around an open database handle.
func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger.Named("store")}
}

// SaveTrade persists an executed trade.
func (s *Store) SaveTrade(trade portfolio.Trade) error {
	record := models.TradeRecord{
		TradeID:    trade.ID,
		Symbol:     trade.Symbol,
		Side:       string(trade.Side),
		Price:      trade.Price,
		Quantity:   trade.Quantity,
		Confidence: trade.Confidence,
		Reason:     trade.Reason,
		EntryPrice: trade.EntryPrice,
		Timestamp:  trade.Timestamp.UnixMilli(),
	}
	if err := s.db.Create(&record).Error; err != nil {
		return fmt.Errorf("failed to save trade record: %w", err)
	}
	return nil
}

// SaveSnapshot persists a point-in-time portfolio snapshot.
func (s *Store) SaveSnapshot(p portfolio.Portfolio) error {
	positionsJSON, err := json.Marshal(p.Positions)
	if err != nil {
		return fmt.Errorf("failed to serialize positions: %w", err)
	}

	record := models.PortfolioSnapshot{
		Cash:          p.Cash,
		TotalValue:    p.TotalValue,
		TotalReturn:   p.TotalReturn,
		PositionCount: len(p.Positions),
		TradeCount:    len(p.Trades),
		PositionsJSON: string(positionsJSON),
		Timestamp:     time.Now().UnixMilli(),
	}
	if err := s.db.Create(&record).Error; err != nil {
		return fmt.Errorf("failed to save portfolio snapshot: %w", err)
	}
	return nil
}

// SaveDecision persists a provider decision together with whether it was
// acted on.
func (s *Store) SaveDecision(d portfolio.Decision, price float64, provider string, executed bool) error {
	record := models.DecisionRecord{
		Symbol:     d.Symbol,
		Action:     string(d.Action),
		Confidence: d.Confidence,
		Reasoning:  d.Reasoning,
		Price:      price,
		Provider:   provider,
		Executed:   executed,
		Timestamp:  time.Now().UnixMilli(),
	}
	if err := s.db.Create(&record).Error; err != nil {
		return fmt.Errorf("failed to save decision record: %w", err)
	}
	return nil
}

// RecentTrades returns up to limit trade records, newest first. Used by the
// dashboard API, not by the trading core.
func (s *Store) RecentTrades(limit int) ([]models.TradeRecord, error) {
	var trades []models.TradeRecord
	if err := s.db.Order("timestamp desc").Limit(limit).Find(&trades).Error; err != nil {
		return nil, fmt.Errorf("failed to load trade records: %w", err)
	}
	return trades, nil
}

// RecentSnapshots returns up to limit snapshots, newest first.
func (s *Store) RecentSnapshots(limit int) ([]models.PortfolioSnapshot, error) {
	var snapshots []models.PortfolioSnapshot
	if err := s.db.Order("timestamp desc").Limit(limit).Find(&snapshots).Error; err != nil {
		return nil, fmt.Errorf("failed to load snapshots: %w", err)
	}
	return snapshots, nil
}
