package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ai-trade-assistant-go/internal/ai"
	"ai-trade-assistant-go/internal/config"
	"ai-trade-assistant-go/internal/database"
	"ai-trade-assistant-go/internal/logger"
	"ai-trade-assistant-go/internal/market"
	"ai-trade-assistant-go/internal/portfolio"
	"ai-trade-assistant-go/internal/store"
	"ai-trade-assistant-go/internal/trader"
	"go.uber.org/zap"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		panic(fmt.Sprintf("could not load config: %v", err))
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	// Resolve the trading strategy
	strategy := strategyFromConfig(cfg.Strategy, log)

	// Wire up the core components
	marketClient := market.NewClient(&cfg.Market, log)
	provider := providerFromConfig(&cfg.AI, log)
	manager := portfolio.NewManager(log, strategy, cfg.Trading.InitialBalance)
	sink := store.NewStore(db, log)

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Initialize and run the trading engine
	engine := trader.NewEngine(log, &cfg, marketClient, provider, manager, sink)

	apiServer := trader.NewAPIServer(engine, log)
	apiServer.Start()
	defer apiServer.Stop(context.Background())

	engine.Run(ctx)

	log.Info("Bot has been shut down.")
}

// strategyFromConfig resolves the preset or explicit strategy parameters.
func strategyFromConfig(cfg config.Strategy, log *zap.Logger) portfolio.TradingStrategy {
	if cfg.Preset != "" {
		strategy, ok := portfolio.PresetByName(cfg.Preset)
		if !ok {
			log.Warn("Unknown strategy preset, using default", zap.String("preset", cfg.Preset))
		}
		return strategy
	}

	return portfolio.TradingStrategy{
		Name:                "custom",
		RiskPerTrade:        cfg.RiskPerTrade,
		MaxPositions:        cfg.MaxPositions,
		MinConfidence:       cfg.MinConfidence,
		UseTrailingStop:     cfg.UseTrailingStop,
		TrailingStopPercent: cfg.TrailingStopPercent,
		UseDCA:              cfg.UseDCA,
		DCALevels:           cfg.DCALevels,
		UseScalping:         cfg.UseScalping,
		ScalpingTargetPct:   cfg.ScalpingTargetPct,
		UseMarketTiming:     cfg.UseMarketTiming,
		AvoidWeekends:       cfg.AvoidWeekends,
		MaxLeverage:         cfg.MaxLeverage,
		Diversification:     cfg.Diversification,
	}
}

// providerFromConfig picks the decision provider. The rule-based analyst
// is the default when no HTTP endpoint is configured.
func providerFromConfig(cfg *config.AI, log *zap.Logger) ai.DecisionProvider {
	if cfg.Provider == "http" && cfg.BaseURL != "" {
		log.Info("Using HTTP decision provider",
			zap.String("base_url", cfg.BaseURL), zap.String("model", cfg.Model))
		return ai.NewHTTPProvider(cfg, log)
	}
	log.Info("Using rule-based decision provider")
	return ai.NewRulesProvider()
}
