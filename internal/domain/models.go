// Package domain defines the shared data model: price series, quotes,
// portfolio records and the analysis/risk report types exchanged between
// modules. All of these are transient values built per request.
package domain

import "time"

// PriceBar is a single OHLCV observation. Bars in a series are
// chronological with strictly increasing timestamps.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Closes extracts the close column from a price series.
func Closes(bars []PriceBar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// Quote is current price and identity metadata for an instrument.
type Quote struct {
	Symbol           string  `json:"symbol"`
	Name             string  `json:"name"`
	Currency         string  `json:"currency"`
	CurrentPrice     float64 `json:"current_price"`
	PreviousClose    float64 `json:"previous_close"`
	MarketCap        int64   `json:"market_cap"`
	PERatio          float64 `json:"pe_ratio"`
	DividendYield    float64 `json:"dividend_yield"`
	FiftyTwoWeekHigh float64 `json:"fifty_two_week_high"`
	FiftyTwoWeekLow  float64 `json:"fifty_two_week_low"`
}

// IndexQuote is one market index entry in the market summary.
type IndexQuote struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Change    float64 `json:"change"`
	ChangePct float64 `json:"change_pct"`
}

// Holding is a portfolio position as stored.
type Holding struct {
	ID        int64     `json:"id"`
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name"`
	Shares    float64   `json:"shares"`
	AvgCost   float64   `json:"avg_cost"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WatchItem is a tracked symbol.
type WatchItem struct {
	ID      int64     `json:"id"`
	Symbol  string    `json:"symbol"`
	Name    string    `json:"name"`
	AddedAt time.Time `json:"added_at"`
}

// Transaction is an entry in the trade log.
type Transaction struct {
	ID       int64     `json:"id"`
	Symbol   string    `json:"symbol"`
	Type     string    `json:"type"` // BUY or SELL
	Shares   float64   `json:"shares"`
	Price    float64   `json:"price"`
	Total    float64   `json:"total"`
	Currency string    `json:"currency"`
	Note     string    `json:"note,omitempty"`
	Date     time.Time `json:"transaction_date"`
}

// IndicatorSnapshot is the rounded, presentation-level view of the latest
// indicator values. Price-scale fields carry 2 decimals, MACD-scale fields
// 4. The snapshot is derived output only and never feeds back into further
// computation.
type IndicatorSnapshot struct {
	Close         float64 `json:"close"`
	RSI           float64 `json:"rsi"`
	RSIStatus     string  `json:"rsi_status"`
	MACD          float64 `json:"macd"`
	MACDSignal    float64 `json:"macd_signal"`
	MACDHistogram float64 `json:"macd_histogram"`
	MACDStatus    string  `json:"macd_status"`
	MAShort       float64 `json:"ma_short"`
	MALong        float64 `json:"ma_long"`
	Trend         string  `json:"trend"`
	BBUpper       float64 `json:"bb_upper"`
	BBMiddle      float64 `json:"bb_middle"`
	BBLower       float64 `json:"bb_lower"`
}

// Recommendation is the advisor verdict for one instrument.
type Recommendation struct {
	Symbol            string            `json:"symbol"`
	Name              string            `json:"name"`
	CurrentPrice      float64           `json:"current_price"`
	Currency          string            `json:"currency"`
	Recommendation    string            `json:"recommendation"` // BUY, SELL or HOLD
	Confidence        float64           `json:"confidence"`     // 0..100
	Score             float64           `json:"score"`          // -1..1
	Reasons           []string          `json:"reasons"`
	TechnicalAnalysis IndicatorSnapshot `json:"technical_analysis"`
}

// SymbolError marks a per-symbol failure in batch listings. Failed symbols
// are reported with this record instead of being dropped silently.
type SymbolError struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}

// RiskMetrics is the per-instrument risk profile. Volatility, drawdown and
// return fields are percentages; DataPoints records the sample size the
// metrics were computed from.
type RiskMetrics struct {
	Symbol                string  `json:"symbol"`
	DailyVolatility       float64 `json:"daily_volatility"`
	AnnualVolatility      float64 `json:"annual_volatility"`
	MaxDrawdown           float64 `json:"max_drawdown"`
	AvgDailyReturn        float64 `json:"avg_daily_return"`
	Beta                  float64 `json:"beta"`
	Correlation           float64 `json:"correlation"`
	SharpeRatio           float64 `json:"sharpe_ratio"`
	AnnualReturn          float64 `json:"annual_return"`
	DataPoints            int     `json:"data_points"`
	BetaInterpretation    string  `json:"beta_interpretation,omitempty"`
	SharpeInterpretation  string  `json:"sharpe_interpretation,omitempty"`
}

// HoldingRisk is one holding's entry in the portfolio risk report. Weight
// is a percentage of portfolio value. Holdings whose metrics could not be
// computed keep their weight, carry an Error marker and contribute zero to
// the weighted aggregates.
type HoldingRisk struct {
	Symbol      string  `json:"symbol"`
	Weight      float64 `json:"weight"`
	Volatility  float64 `json:"volatility"`
	Beta        float64 `json:"beta"`
	Sharpe      float64 `json:"sharpe"`
	MaxDrawdown float64 `json:"max_drawdown"`
	Error       string  `json:"error,omitempty"`
}

// PortfolioRiskReport is the portfolio-level risk aggregation.
type PortfolioRiskReport struct {
	PortfolioValue       float64       `json:"portfolio_value"`
	HoldingsCount        int           `json:"holdings_count"`
	PortfolioBeta        float64       `json:"portfolio_beta"`
	PortfolioVolatility  float64       `json:"portfolio_volatility"`
	DiversificationScore float64       `json:"diversification_score"`
	RiskLevel            string        `json:"risk_level"` // low, medium or high
	StockRisks           []HoldingRisk `json:"stock_risks"`
	Recommendations      []string      `json:"recommendations"`
}

// WatchlistUpdate is one watchlist row of the daily report.
type WatchlistUpdate struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_pct"`
}

// PortfolioSummary totals the portfolio at current prices.
type PortfolioSummary struct {
	TotalCost      float64 `json:"total_cost"`
	TotalValue     float64 `json:"total_value"`
	TotalReturn    float64 `json:"total_return"`
	TotalReturnPct float64 `json:"total_return_pct"`
	HoldingsCount  int     `json:"holdings_count"`
}

// DailyReport is the scheduled end-of-day report.
type DailyReport struct {
	GeneratedAt      time.Time             `json:"generated_at"`
	Type             string                `json:"type"`
	MarketSummary    map[string]IndexQuote `json:"market_summary"`
	WatchlistUpdates []WatchlistUpdate     `json:"watchlist_updates"`
	PortfolioSummary PortfolioSummary      `json:"portfolio_summary"`
}
