package database

import (
	"fmt"

	"ai-trade-assistant-go/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDatabase creates a new database connection and performs auto-migration.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate the schema. Existing rows are kept: the trade log and
	// snapshot history are the audit trail.
	if err := db.AutoMigrate(&models.TradeRecord{}, &models.PortfolioSnapshot{}, &models.DecisionRecord{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	return db, nil
}
