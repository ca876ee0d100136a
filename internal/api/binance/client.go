// Package binance reads public market data from the Binance spot REST API.
package binance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/TrendScanner/internal/model"
	httpClient "github.com/Alias1177/TrendScanner/internal/platform/http"
	"github.com/Alias1177/TrendScanner/internal/source"
)

// DefaultBaseURL is the public spot endpoint
const DefaultBaseURL = "https://api.binance.com"

// Client is the Binance public API client
type Client struct {
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new Binance client
type ClientOptions struct {
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
}

type ticker24hr struct {
	Symbol             string `json:"symbol"`
	PriceChangePercent string `json:"priceChangePercent"`
	QuoteVolume        string `json:"quoteVolume"`
}

// NewClient creates a new Binance API client
func NewClient(options ClientOptions) *Client {
	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL: baseURL,
		httpClient: httpClient.NewClient(httpClient.ClientOptions{
			Timeout:         options.RequestTimeout,
			RequestsPerSec:  options.RequestsPerSec,
			MaxRetries:      options.MaxRetries,
			MaxRetryTimeout: options.MaxRetryTimeout,
			BreakerName:     "binance",
		}),
		logger: log.With().Str("component", "binance_client").Logger(),
	}
}

// Name implements source.Source
func (c *Client) Name() string { return "binance" }

// Ping checks that the exchange answers
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.get(ctx, "/api/v3/ping", nil); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Candles fetches klines for base+quote, oldest first
func (c *Client) Candles(ctx context.Context, base, quote, interval string, limit int) ([]model.Candle, error) {
	symbol := base + quote
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", interval)
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.get(ctx, "/api/v3/klines", params)
	if err != nil {
		return nil, fmt.Errorf("fetching klines for %s: %w", symbol, err)
	}

	var rawKlines [][]interface{}
	if err := json.Unmarshal(body, &rawKlines); err != nil {
		return nil, fmt.Errorf("parsing klines for %s: %w", symbol, err)
	}
	if len(rawKlines) == 0 {
		return nil, fmt.Errorf("%s %s: %w", symbol, interval, source.ErrNoData)
	}

	candles := make([]model.Candle, 0, len(rawKlines))
	for _, raw := range rawKlines {
		if len(raw) < 8 {
			return nil, fmt.Errorf("parsing klines for %s: short row of %d fields", symbol, len(raw))
		}
		candles = append(candles, model.Candle{
			OpenTime:    parseMillis(raw[0]),
			Open:        parseFloat(raw[1]),
			High:        parseFloat(raw[2]),
			Low:         parseFloat(raw[3]),
			Close:       parseFloat(raw[4]),
			Volume:      parseFloat(raw[5]),
			CloseTime:   parseMillis(raw[6]),
			QuoteVolume: parseFloat(raw[7]),
		})
	}

	c.logger.Debug().Str("symbol", symbol).Str("interval", interval).Int("count", len(candles)).Msg("Fetched candles")
	return candles, nil
}

// Ticker fetches 24h statistics for base+quote
func (c *Client) Ticker(ctx context.Context, base, quote string) (model.Ticker, error) {
	symbol := base + quote
	params := url.Values{}
	params.Set("symbol", symbol)

	body, err := c.get(ctx, "/api/v3/ticker/24hr", params)
	if err != nil {
		return model.Ticker{}, fmt.Errorf("fetching ticker for %s: %w", symbol, err)
	}

	var raw ticker24hr
	if err := json.Unmarshal(body, &raw); err != nil {
		return model.Ticker{}, fmt.Errorf("parsing ticker for %s: %w", symbol, err)
	}

	return model.Ticker{
		QuoteVolume:        parseFloat(raw.QuoteVolume),
		PriceChangePercent: parseFloat(raw.PriceChangePercent),
	}, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		var statusErr *httpClient.HTTPStatusError
		// unknown or delisted symbols come back as 400
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusBadRequest {
			return nil, fmt.Errorf("%w: %v", source.ErrNoData, err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}

func parseFloat(v interface{}) float64 {
	switch val := v.(type) {
	case string:
		f, _ := strconv.ParseFloat(val, 64)
		return f
	case float64:
		return val
	default:
		return 0
	}
}

func parseMillis(v interface{}) time.Time {
	ms, ok := v.(float64)
	if !ok {
		return time.Time{}
	}
	return time.UnixMilli(int64(ms)).UTC()
}
