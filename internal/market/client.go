package market

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"ai-trade-assistant-go/internal/config"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.binance.com/api/v3"

// DataSource is the price feed consumed by the trading engine. The engine
// has no opinion on the transport behind it.
type DataSource interface {
	GetTickerPrices() (map[string]float64, error)
	GetPriceHistory(symbol string, intervalMinutes, limit int) ([]float64, error)
}

// Client fetches ticker prices and candle history over REST.
// It implements the DataSource interface.
type Client struct {
	client  *resty.Client
	logger  *zap.Logger
	limiter *rate.Limiter
}

// ensure Client implements the interface
var _ DataSource = (*Client)(nil)

// NewClient creates a new market data client.
func NewClient(cfg *config.Market, logger *zap.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	client := resty.New().SetBaseURL(baseURL)

	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &Client{
		client:  client,
		logger:  logger.Named("market"),
		limiter: limiter,
	}
}

// tickerPrice represents the response for a single ticker price.
type tickerPrice struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// doRequest handles the actual request execution with rate limiting and retry logic.
func (c *Client) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		// Wait for the rate limiter
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", c.client.BaseURL+url))
		resp, err = req.Execute(method, url)

		if err == nil && !resp.IsError() {
			return resp, nil // Success
		}

		// Analyze error and decide whether to retry
		shouldRetry := false
		var retryAfter time.Duration

		if resp != nil {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests || statusCode == 418 { // HTTP 429 or 418
				shouldRetry = true
				retryAfterHeader := resp.Header().Get("Retry-After")
				if seconds, err := strconv.Atoi(retryAfterHeader); err == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 { // Server errors
				shouldRetry = true
			}
		} else { // Network or other client-side errors
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
		}

		// If we should retry, calculate wait time
		if retryAfter == 0 {
			// Exponential backoff: 1s, 2s, 4s
			retryAfter = time.Duration(math.Pow(2, float64(i))) * time.Second
		}

		c.logger.Warn("Request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, err)
}

// GetTickerPrices fetches the latest price for all symbols.
func (c *Client) GetTickerPrices() (map[string]float64, error) {
	var prices []*tickerPrice

	req := c.client.R().
		SetResult(&prices).
		SetHeader("Content-Type", "application/json")
	ctx := context.Background()

	resp, err := c.doRequest(ctx, "GET", "/ticker/price", req)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticker prices: %w", err)
	}

	result := resp.Result().(*[]*tickerPrice)
	priceMap := make(map[string]float64, len(*result))
	for _, p := range *result {
		price, err := strconv.ParseFloat(p.Price, 64)
		if err != nil {
			c.logger.Warn("Skipping unparsable ticker price",
				zap.String("symbol", p.Symbol), zap.String("price", p.Price))
			continue
		}
		priceMap[p.Symbol] = price
	}

	return priceMap, nil
}

// intervalString converts a candle width in minutes to the API interval
// notation (1m, 5m, 15m, 1h, 4h, 1d). Unknown widths fall back to 1h.
func intervalString(minutes int) string {
	switch minutes {
	case 1, 5, 15, 30:
		return fmt.Sprintf("%dm", minutes)
	case 60, 120, 240:
		return fmt.Sprintf("%dh", minutes/60)
	case 1440:
		return "1d"
	default:
		return "1h"
	}
}

// GetPriceHistory fetches the closing prices of the last limit candles for
// a symbol, ordered oldest to newest.
func (c *Client) GetPriceHistory(symbol string, intervalMinutes, limit int) ([]float64, error) {
	// Kline rows are heterogeneous arrays; the close is the fifth field,
	// encoded as a string.
	var klines [][]interface{}

	req := c.client.R().
		SetResult(&klines).
		SetQueryParams(map[string]string{
			"symbol":   symbol,
			"interval": intervalString(intervalMinutes),
			"limit":    strconv.Itoa(limit),
		}).
		SetHeader("Content-Type", "application/json")
	ctx := context.Background()

	resp, err := c.doRequest(ctx, "GET", "/klines", req)
	if err != nil {
		return nil, fmt.Errorf("failed to get price history for %s: %w", symbol, err)
	}

	result := resp.Result().(*[][]interface{})
	closes := make([]float64, 0, len(*result))
	for _, row := range *result {
		if len(row) < 5 {
			continue
		}
		closeStr, ok := row[4].(string)
		if !ok {
			continue
		}
		closePrice, err := strconv.ParseFloat(closeStr, 64)
		if err != nil {
			continue
		}
		closes = append(closes, closePrice)
	}

	return closes, nil
}
