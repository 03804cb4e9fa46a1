package risk

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finadvisor/internal/domain"
)

type fakeMarketData struct {
	quotes    map[string]domain.Quote
	histories map[string][]domain.PriceBar
}

func (f *fakeMarketData) GetQuote(_ context.Context, symbol string) (domain.Quote, error) {
	q, ok := f.quotes[symbol]
	if !ok {
		return domain.Quote{}, errors.New("quote not found")
	}
	return q, nil
}

func (f *fakeMarketData) GetHistory(_ context.Context, symbol, _ string) ([]domain.PriceBar, error) {
	h, ok := f.histories[symbol]
	if !ok {
		return nil, errors.New("history not found")
	}
	return h, nil
}

func barsFromCloses(closes []float64) []domain.PriceBar {
	bars := make([]domain.PriceBar, len(closes))
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = domain.PriceBar{Date: start.AddDate(0, 0, i), Close: c, Volume: 1000}
	}
	return bars
}

func newTestService(data MarketData) *Service {
	return NewService(data, "^GSPC", 0.05, 2, zerolog.Nop())
}

func holding(symbol string, shares, avgCost float64) domain.Holding {
	return domain.Holding{Symbol: symbol, Shares: shares, AvgCost: avgCost}
}

func marketFixture() *fakeMarketData {
	return &fakeMarketData{
		quotes: map[string]domain.Quote{
			"AAPL":  {Symbol: "AAPL", CurrentPrice: 200},
			"MSFT":  {Symbol: "MSFT", CurrentPrice: 400},
			"^GSPC": {Symbol: "^GSPC", CurrentPrice: 5000},
		},
		histories: map[string][]domain.PriceBar{
			"AAPL":  barsFromCloses(wavyCloses(120)),
			"MSFT":  barsFromCloses(wavyCloses(120)),
			"^GSPC": barsFromCloses(wavyCloses(120)),
		},
	}
}

func TestAnalyzePortfolio_EmptyHoldings(t *testing.T) {
	_, err := newTestService(marketFixture()).AnalyzePortfolio(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrEmptyPortfolio)
}

func TestAnalyzePortfolio_NoPositiveValue(t *testing.T) {
	data := &fakeMarketData{quotes: map[string]domain.Quote{}, histories: map[string][]domain.PriceBar{}}
	holdings := []domain.Holding{holding("AAPL", 0, 0)}

	_, err := newTestService(data).AnalyzePortfolio(context.Background(), holdings)

	assert.ErrorIs(t, err, domain.ErrEmptyPortfolio)
}

func TestAnalyzePortfolio_SingleHolding(t *testing.T) {
	holdings := []domain.Holding{holding("AAPL", 10, 150)}

	report, err := newTestService(marketFixture()).AnalyzePortfolio(context.Background(), holdings)
	require.NoError(t, err)

	assert.Equal(t, 2000.0, report.PortfolioValue) // 10 × 200 quote price
	assert.Equal(t, 1, report.HoldingsCount)
	// Fully concentrated: HHI = 1, diversification score = 0.
	assert.Equal(t, 0.0, report.DiversificationScore)
	require.Len(t, report.StockRisks, 1)
	assert.Equal(t, 100.0, report.StockRisks[0].Weight)
	// Identical return generators make each holding track the benchmark.
	assert.Equal(t, 1.0, report.StockRisks[0].Beta)
}

func TestAnalyzePortfolio_EqualWeights(t *testing.T) {
	data := marketFixture()
	holdings := []domain.Holding{
		holding("AAPL", 10, 150), // 2000
		holding("MSFT", 5, 300),  // 2000
	}

	report, err := newTestService(data).AnalyzePortfolio(context.Background(), holdings)
	require.NoError(t, err)

	assert.Equal(t, 4000.0, report.PortfolioValue)
	assert.Equal(t, 2, report.HoldingsCount)
	// HHI = 0.5 for two equal weights → diversification 50.
	assert.Equal(t, 50.0, report.DiversificationScore)
	for _, hr := range report.StockRisks {
		assert.Equal(t, 50.0, hr.Weight)
	}
}

func TestAnalyzePortfolio_QuoteFailureFallsBackToAvgCost(t *testing.T) {
	data := marketFixture()
	delete(data.quotes, "AAPL")
	holdings := []domain.Holding{holding("AAPL", 10, 150)}

	report, err := newTestService(data).AnalyzePortfolio(context.Background(), holdings)
	require.NoError(t, err)

	assert.Equal(t, 1500.0, report.PortfolioValue) // 10 × 150 average cost
}

func TestAnalyzePortfolio_MetricsFailureKeepsHoldingListed(t *testing.T) {
	data := marketFixture()
	data.histories["MSFT"] = barsFromCloses(wavyCloses(10)) // too short for metrics
	holdings := []domain.Holding{
		holding("AAPL", 10, 150), // 2000
		holding("MSFT", 5, 300),  // 2000
	}

	report, err := newTestService(data).AnalyzePortfolio(context.Background(), holdings)
	require.NoError(t, err)

	require.Len(t, report.StockRisks, 2)

	var failed, ok *domain.HoldingRisk
	for i := range report.StockRisks {
		if report.StockRisks[i].Symbol == "MSFT" {
			failed = &report.StockRisks[i]
		} else {
			ok = &report.StockRisks[i]
		}
	}

	require.NotNil(t, failed)
	assert.NotEmpty(t, failed.Error)
	assert.Equal(t, 50.0, failed.Weight, "failed holding keeps its weight in the listing")

	// Weighted beta only includes the valid holding: 0.5 × 1.0, no
	// renormalization over the valid subset.
	require.NotNil(t, ok)
	assert.Equal(t, 1.0, ok.Beta)
	assert.Equal(t, 0.5, report.PortfolioBeta)
}

func TestClassifyRisk_OrderOfRules(t *testing.T) {
	tests := []struct {
		name       string
		beta       float64
		volatility float64
		expected   string
	}{
		{"high beta low volatility", 1.4, 10, "high"},
		{"high volatility low beta", 0.5, 35, "high"},
		{"medium beta", 1.0, 10, "medium"},
		{"medium volatility", 0.5, 25, "medium"},
		{"low", 0.5, 10, "low"},
		{"boundary beta not high", 1.3, 10, "medium"},
		{"boundary volatility not medium", 0.9, 20, "low"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, classifyRisk(tt.beta, tt.volatility))
		})
	}
}

func TestBuildRecommendations_AllTriggered(t *testing.T) {
	report := &domain.PortfolioRiskReport{
		PortfolioBeta:        1.5,
		PortfolioVolatility:  35,
		DiversificationScore: 20,
		StockRisks: []domain.HoldingRisk{
			{Symbol: "TSLA", Weight: 80, Beta: 2.1},
			{Symbol: "AAPL", Weight: 20, Beta: 1.1},
		},
	}

	recommendations := buildRecommendations(report)

	require.Len(t, recommendations, 5)
	assert.Contains(t, recommendations[0], "concentrated")
	assert.Contains(t, recommendations[1], "beta is elevated")
	assert.Contains(t, recommendations[2], "volatility exceeds 30%")
	assert.Contains(t, recommendations[3], "TSLA")
	assert.Contains(t, recommendations[4], "TSLA")
	assert.NotContains(t, recommendations[3], "AAPL")
}

func TestBuildRecommendations_AllClear(t *testing.T) {
	report := &domain.PortfolioRiskReport{
		PortfolioBeta:        0.8,
		PortfolioVolatility:  15,
		DiversificationScore: 75,
		StockRisks: []domain.HoldingRisk{
			{Symbol: "VTI", Weight: 25, Beta: 1.0},
		},
	}

	recommendations := buildRecommendations(report)

	require.Len(t, recommendations, 1)
	assert.Contains(t, recommendations[0], "well controlled")
}
