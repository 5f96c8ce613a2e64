package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Market   Market   `mapstructure:"market"`
	AI       AI       `mapstructure:"ai"`
	Trading  Trading  `mapstructure:"trading"`
	Strategy Strategy `mapstructure:"strategy"`
	Logger   Logger   `mapstructure:"logger"`
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
}

// Market holds the configuration for the price feed API.
type Market struct {
	BaseURL        string  `mapstructure:"base_url"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// AI holds the configuration for the decision provider.
type AI struct {
	Provider       string  `mapstructure:"provider"` // "http" or "rules"
	BaseURL        string  `mapstructure:"base_url"`
	ApiKey         string  `mapstructure:"apiKey"`
	Model          string  `mapstructure:"model"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Server holds the configuration for the web server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Trading holds the configuration for the trading loop.
type Trading struct {
	Symbols          []string `mapstructure:"symbols"`
	InitialBalance   float64  `mapstructure:"initial_balance"`
	TickInterval     int      `mapstructure:"tick_interval"`    // seconds between cycles
	CandleInterval   int      `mapstructure:"candle_interval"`  // minutes per candle in price history
	HistoryLimit     int      `mapstructure:"history_limit"`    // candles to fetch per symbol
	CooldownSeconds  int      `mapstructure:"cooldown_seconds"` // minimum time between full cycles
	MinActConfidence float64  `mapstructure:"min_act_confidence"`
}

// Strategy holds the trading strategy parameters.
// When Preset names a known preset, it supplies every other value.
type Strategy struct {
	Preset              string  `mapstructure:"preset"`
	RiskPerTrade        float64 `mapstructure:"risk_per_trade"`
	MaxPositions        int     `mapstructure:"max_positions"`
	MinConfidence       float64 `mapstructure:"min_confidence"`
	UseTrailingStop     bool    `mapstructure:"use_trailing_stop"`
	TrailingStopPercent float64 `mapstructure:"trailing_stop_percent"`
	UseDCA              bool    `mapstructure:"use_dca"`
	DCALevels           int     `mapstructure:"dca_levels"`
	UseScalping         bool    `mapstructure:"use_scalping"`
	ScalpingTargetPct   float64 `mapstructure:"scalping_target_percent"`
	UseMarketTiming     bool    `mapstructure:"use_market_timing"`
	AvoidWeekends       bool    `mapstructure:"avoid_weekends"`
	MaxLeverage         int     `mapstructure:"max_leverage"`
	Diversification     bool    `mapstructure:"diversification"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("market.rate_limit", 20)      // requests per second
	viper.SetDefault("market.rate_limit_burst", 5) // burst size
	viper.SetDefault("ai.rate_limit", 1)
	viper.SetDefault("ai.rate_limit_burst", 1)
	viper.SetDefault("ai.timeout_seconds", 30)
	viper.SetDefault("trading.initial_balance", 10000)
	viper.SetDefault("trading.tick_interval", 60)
	viper.SetDefault("trading.candle_interval", 60)
	viper.SetDefault("trading.history_limit", 200)
	viper.SetDefault("trading.cooldown_seconds", 10)
	viper.SetDefault("trading.min_act_confidence", 0.7)
	viper.SetDefault("strategy.preset", "moderate")

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
