package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ai-trade-assistant-go/internal/config"
	"ai-trade-assistant-go/internal/portfolio"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const systemPrompt = "You are a professional cryptocurrency trading analyst. " +
	"Analyze the market data you are given and always answer with a single valid JSON object."

// HTTPProvider obtains decisions from an OpenAI-compatible chat-completions
// endpoint. It implements the DecisionProvider interface.
type HTTPProvider struct {
	client  *resty.Client
	model   string
	logger  *zap.Logger
	limiter *rate.Limiter
	timeout time.Duration
}

var _ DecisionProvider = (*HTTPProvider)(nil)

// NewHTTPProvider creates a new HTTP decision provider.
func NewHTTPProvider(cfg *config.AI, logger *zap.Logger) *HTTPProvider {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.ApiKey)

	model := cfg.Model
	if model == "" {
		model = "gpt-3.5-turbo"
	}

	return &HTTPProvider{
		client:  client,
		model:   model,
		logger:  logger.Named("ai"),
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst),
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
}

// Name returns the provider's name.
func (p *HTTPProvider) Name() string {
	return "http"
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// rawDecision mirrors the JSON object the model is instructed to emit.
type rawDecision struct {
	Decision   string  `json:"decision"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
	StopLoss   float64 `json:"stopLoss"`
	TakeProfit float64 `json:"takeProfit"`
}

// Decide builds a market-context prompt, calls the model, and parses the
// decision. Errors propagate to the engine, which skips the symbol for the
// cycle.
func (p *HTTPProvider) Decide(ctx context.Context, market MarketContext) (portfolio.Decision, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return portfolio.Decision{}, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var result chatResponse
	resp, err := p.client.R().
		SetContext(reqCtx).
		SetBody(chatRequest{
			Model: p.model,
			Messages: []chatMessage{
				{Role: "system", Content: systemPrompt},
				{Role: "user", Content: buildPrompt(market)},
			},
			Temperature: 0.7,
		}).
		SetResult(&result).
		Post("/chat/completions")
	if err != nil {
		return portfolio.Decision{}, fmt.Errorf("decision request failed: %w", err)
	}
	if resp.IsError() {
		return portfolio.Decision{}, fmt.Errorf("decision request failed with status %s: %s", resp.Status(), resp.String())
	}
	if len(result.Choices) == 0 {
		return portfolio.Decision{}, fmt.Errorf("decision response contained no choices")
	}

	decision, err := parseDecision(market.Symbol, result.Choices[0].Message.Content)
	if err != nil {
		return portfolio.Decision{}, err
	}

	p.logger.Debug("Received decision",
		zap.String("symbol", decision.Symbol),
		zap.String("action", string(decision.Action)),
		zap.Float64("confidence", decision.Confidence))

	return decision, nil
}

// buildPrompt serializes the market context into a compact analysis prompt
// ending with the exact JSON schema the model must answer with.
func buildPrompt(market MarketContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Current market state for %s\n", market.Symbol)
	fmt.Fprintf(&b, "Price: %.4f\n", market.Price)
	fmt.Fprintf(&b, "EMA(20): %.4f  EMA(50): %.4f\n", market.Indicators.EMA20, market.Indicators.EMA50)
	fmt.Fprintf(&b, "MACD: %.4f (signal %.4f, histogram %.4f)\n",
		market.Indicators.MACD, market.Indicators.MACDSignal, market.Indicators.MACDHistogram)
	fmt.Fprintf(&b, "RSI(7): %.2f  RSI(14): %.2f\n", market.Indicators.RSI7, market.Indicators.RSI14)
	fmt.Fprintf(&b, "Volatility: %.6f\n", market.Indicators.Volatility)
	fmt.Fprintf(&b, "Multi-timeframe trend: %s (strength %.1f, consensus %.1f%%)\n",
		market.Indicators.Consensus.OverallTrend,
		market.Indicators.Consensus.Strength,
		market.Indicators.Consensus.Consensus)

	if len(market.PriceHistory) > 0 {
		recent := market.PriceHistory
		if len(recent) > 10 {
			recent = recent[len(recent)-10:]
		}
		b.WriteString("Recent prices (oldest to newest): ")
		for i, price := range recent {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%.4f", price)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nAccount\nPortfolio value: %.2f\nAvailable cash: %.2f\n",
		market.PortfolioValue, market.Cash)

	hasPosition := false
	for _, position := range market.OpenPositions {
		if position.Symbol == market.Symbol {
			hasPosition = true
			fmt.Fprintf(&b, "Open position: quantity %.4f, entry %.4f, unrealized P&L %.2f\n",
				position.Quantity, position.EntryPrice, position.UnrealizedPnl)
		}
	}
	if !hasPosition {
		b.WriteString("No open position in this asset.\n")
	}

	b.WriteString("\nDecide BUY, SELL or HOLD and answer with exactly this JSON shape:\n")
	b.WriteString(`{"decision": "BUY|SELL|HOLD", "confidence": 0.0, "reasoning": "...", "stopLoss": 0.0, "takeProfit": 0.0}`)

	return b.String()
}

// parseDecision extracts the JSON object from the model output, normalizes
// unknown actions to HOLD, and clamps confidence to [0,1].
func parseDecision(symbol, content string) (portfolio.Decision, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end <= start {
		return portfolio.Decision{}, fmt.Errorf("no JSON object in decision response")
	}

	var raw rawDecision
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return portfolio.Decision{}, fmt.Errorf("failed to parse decision response: %w", err)
	}

	action := portfolio.Action(strings.ToUpper(strings.TrimSpace(raw.Decision)))
	switch action {
	case portfolio.ActionBuy, portfolio.ActionSell, portfolio.ActionHold:
	default:
		action = portfolio.ActionHold
	}

	confidence := raw.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return portfolio.Decision{
		Symbol:     symbol,
		Action:     action,
		Confidence: confidence,
		Reasoning:  raw.Reasoning,
		StopLoss:   raw.StopLoss,
		TakeProfit: raw.TakeProfit,
	}, nil
}
