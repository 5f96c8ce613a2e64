package main

import (
	"encoding/json"
	"net/http"
	"time"

	"ai-trade-assistant-go/internal/store"

	"go.uber.org/zap"
)

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log   *zap.Logger
	store *store.Store
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(log *zap.Logger, store *store.Store) *APIHandler {
	return &APIHandler{log: log, store: store}
}

// TradesHandler returns recent trades, newest first.
func (h *APIHandler) TradesHandler(w http.ResponseWriter, r *http.Request) {
	trades, err := h.store.RecentTrades(500)
	if err != nil {
		h.log.Error("Failed to get trades from database", zap.Error(err))
		http.Error(w, "Failed to get trades", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(trades)
}

// SnapshotsHandler returns recent portfolio snapshots, newest first.
func (h *APIHandler) SnapshotsHandler(w http.ResponseWriter, r *http.Request) {
	snapshots, err := h.store.RecentSnapshots(500)
	if err != nil {
		h.log.Error("Failed to get snapshots from database", zap.Error(err))
		http.Error(w, "Failed to get snapshots", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshots)
}

// StatsDetail holds calculated statistics for a given period.
type StatsDetail struct {
	TotalTrades      int     `json:"total_trades"`
	ProfitableTrades int     `json:"profitable_trades"`
	WinRate          float64 `json:"win_rate"`
	TotalProfit      float64 `json:"total_profit"`
}

// StatisticsResponse is the structure for the /api/statistics endpoint.
type StatisticsResponse struct {
	Since24h StatsDetail `json:"since_24h"`
	AllTime  StatsDetail `json:"all_time"`
}

// StatisticsHandler calculates and returns trading statistics from the
// persisted trade log. Profit is scored on SELL legs against the entry
// price recorded at sale time.
func (h *APIHandler) StatisticsHandler(w http.ResponseWriter, r *http.Request) {
	trades, err := h.store.RecentTrades(10000)
	if err != nil {
		h.log.Error("Failed to get trades for statistics", zap.Error(err))
		http.Error(w, "Failed to calculate statistics", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	since24h := now.Add(-24 * time.Hour)

	stats24h := StatsDetail{}
	statsAllTime := StatsDetail{}

	for _, trade := range trades {
		if trade.Side != "SELL" || trade.EntryPrice == 0 {
			continue
		}
		profit := (trade.Price - trade.EntryPrice) * trade.Quantity

		// Calculate for all time
		statsAllTime.TotalTrades++
		if profit > 0 {
			statsAllTime.ProfitableTrades++
		}
		statsAllTime.TotalProfit += profit

		// Calculate for last 24 hours
		tradeTime := time.Unix(trade.Timestamp/1000, 0)
		if tradeTime.After(since24h) {
			stats24h.TotalTrades++
			if profit > 0 {
				stats24h.ProfitableTrades++
			}
			stats24h.TotalProfit += profit
		}
	}

	if statsAllTime.TotalTrades > 0 {
		statsAllTime.WinRate = float64(statsAllTime.ProfitableTrades) / float64(statsAllTime.TotalTrades)
	}
	if stats24h.TotalTrades > 0 {
		stats24h.WinRate = float64(stats24h.ProfitableTrades) / float64(stats24h.TotalTrades)
	}

	response := StatisticsResponse{
		Since24h: stats24h,
		AllTime:  statsAllTime,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
