// Package yahoo fetches quotes and historical prices from the Yahoo
// Finance public APIs.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"finadvisor/internal/domain"
)

// indexNames maps the tracked market indices to display names for the
// market summary.
var indexNames = map[string]string{
	"^GSPC": "S&P 500",
	"^DJI":  "Dow Jones",
	"^IXIC": "NASDAQ",
	"^TWII": "Taiwan Weighted",
}

// userAgent mimics a browser; Yahoo rejects the default Go client string.
const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

// Client is a Yahoo Finance API client.
type Client struct {
	client *http.Client
	log    zerolog.Logger
}

// NewClient creates a Yahoo Finance client with the given request timeout.
func NewClient(timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		client: &http.Client{Timeout: timeout},
		log:    log.With().Str("client", "yahoo").Logger(),
	}
}

// quoteResponse is the envelope of the v7 quote API.
type quoteResponse struct {
	QuoteResponse struct {
		Result []map[string]interface{} `json:"result"`
		Error  interface{}              `json:"error"`
	} `json:"quoteResponse"`
}

// chartResponse is the envelope of the v8 chart API.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

// GetQuote fetches the current quote for a symbol.
func (c *Client) GetQuote(ctx context.Context, symbol string) (domain.Quote, error) {
	info, err := c.quoteInfo(ctx, symbol)
	if err != nil {
		return domain.Quote{}, err
	}

	name := getString(info, "longName", "")
	if name == "" {
		name = getString(info, "shortName", symbol)
	}

	price := getFloat64(info, "currentPrice")
	if price == 0 {
		price = getFloat64(info, "regularMarketPrice")
	}

	return domain.Quote{
		Symbol:           symbol,
		Name:             name,
		Currency:         getString(info, "currency", "USD"),
		CurrentPrice:     price,
		PreviousClose:    getFloat64(info, "regularMarketPreviousClose"),
		MarketCap:        getInt64(info, "marketCap"),
		PERatio:          getFloat64(info, "trailingPE"),
		DividendYield:    getFloat64(info, "dividendYield"),
		FiftyTwoWeekHigh: getFloat64(info, "fiftyTwoWeekHigh"),
		FiftyTwoWeekLow:  getFloat64(info, "fiftyTwoWeekLow"),
	}, nil
}

// GetHistory fetches daily OHLCV bars for a symbol over a Yahoo range
// string (1d, 5d, 1mo, 3mo, 6mo, 1y, 2y, 5y, 10y, ytd, max). Bars with
// all-zero prices are dropped; the result is chronological.
func (c *Client) GetHistory(ctx context.Context, symbol, period string) ([]domain.PriceBar, error) {
	baseURL := "https://query1.finance.yahoo.com/v8/finance/chart/" + url.QueryEscape(symbol)

	params := url.Values{}
	params.Add("interval", "1d")
	params.Add("range", period)

	body, err := c.get(ctx, baseURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var result chartResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse chart response: %w", err)
	}
	if result.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart API error: %v", result.Chart.Error)
	}
	if len(result.Chart.Result) == 0 || len(result.Chart.Result[0].Indicators.Quote) == 0 {
		c.log.Warn().Str("symbol", symbol).Msg("No historical data returned")
		return nil, nil
	}

	chart := result.Chart.Result[0]
	quote := chart.Indicators.Quote[0]

	var bars []domain.PriceBar
	for i, ts := range chart.Timestamp {
		if i >= len(quote.Close) {
			break
		}
		// Yahoo pads half-days and holidays with zeroed rows.
		if quote.Open[i] == 0 && quote.High[i] == 0 && quote.Low[i] == 0 && quote.Close[i] == 0 {
			continue
		}

		volume := int64(0)
		if i < len(quote.Volume) {
			volume = quote.Volume[i]
		}

		bars = append(bars, domain.PriceBar{
			Date:   time.Unix(ts, 0).UTC(),
			Open:   quote.Open[i],
			High:   quote.High[i],
			Low:    quote.Low[i],
			Close:  quote.Close[i],
			Volume: volume,
		})
	}

	c.log.Debug().
		Str("symbol", symbol).
		Str("period", period).
		Int("count", len(bars)).
		Msg("Fetched historical prices")

	return bars, nil
}

// GetMarketSummary fetches day-over-day change for the tracked market
// indices, keyed by display name. An index that fails to fetch is
// omitted rather than failing the summary.
func (c *Client) GetMarketSummary(ctx context.Context) (map[string]domain.IndexQuote, error) {
	summary := make(map[string]domain.IndexQuote, len(indexNames))
	for symbol, name := range indexNames {
		bars, err := c.GetHistory(ctx, symbol, "5d")
		if err != nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to fetch index")
			continue
		}
		if len(bars) < 2 {
			continue
		}

		current := bars[len(bars)-1].Close
		previous := bars[len(bars)-2].Close
		change := current - previous
		summary[name] = domain.IndexQuote{
			Symbol:    symbol,
			Price:     round2(current),
			Change:    round2(change),
			ChangePct: round2(change / previous * 100),
		}
	}

	if len(summary) == 0 {
		return nil, fmt.Errorf("%w: no index data available", domain.ErrMissingMarketData)
	}
	return summary, nil
}

// quoteInfo fetches the raw v7 quote record for a symbol.
func (c *Client) quoteInfo(ctx context.Context, symbol string) (map[string]interface{}, error) {
	params := url.Values{}
	params.Add("symbols", symbol)
	params.Add("fields", "symbol,longName,shortName,currency,currentPrice,regularMarketPrice,"+
		"regularMarketPreviousClose,marketCap,trailingPE,dividendYield,"+
		"fiftyTwoWeekHigh,fiftyTwoWeekLow")

	body, err := c.get(ctx, "https://query1.finance.yahoo.com/v7/finance/quote?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var result quoteResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse quote response: %w", err)
	}
	if result.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("yahoo quote API error: %v", result.QuoteResponse.Error)
	}
	if len(result.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("no quote data returned for symbol %s", symbol)
	}
	return result.QuoteResponse.Result[0], nil
}

// get issues a browser-identified GET request and returns the body.
func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo API returned status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

func getFloat64(m map[string]interface{}, key string) float64 {
	if val, ok := m[key]; ok && val != nil {
		if f, ok := val.(float64); ok {
			return f
		}
	}
	return 0
}

func getInt64(m map[string]interface{}, key string) int64 {
	if val, ok := m[key]; ok && val != nil {
		if f, ok := val.(float64); ok {
			return int64(f)
		}
	}
	return 0
}

func getString(m map[string]interface{}, key, defaultVal string) string {
	if val, ok := m[key]; ok && val != nil {
		if s, ok := val.(string); ok && s != "" {
			return s
		}
	}
	return defaultVal
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
