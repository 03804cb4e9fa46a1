package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finadvisor/internal/domain"
	"finadvisor/internal/modules/analysis"
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
		bars[i] = domain.PriceBar{Date: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 1000}
	}
	return bars
}

func risingCloses(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.5
	}
	return closes
}

func newTestService(data MarketData) *Service {
	return NewService(data, analysis.DefaultParams(), 2, zerolog.Nop())
}

func TestRecommend(t *testing.T) {
	data := &fakeMarketData{
		quotes: map[string]domain.Quote{
			"AAPL": {Symbol: "AAPL", Name: "Apple Inc.", Currency: "USD", CurrentPrice: 190.5},
		},
		histories: map[string][]domain.PriceBar{
			"AAPL": barsFromCloses(risingCloses(120)),
		},
	}

	rec, err := newTestService(data).Recommend(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", rec.Symbol)
	assert.Equal(t, "Apple Inc.", rec.Name)
	assert.Contains(t, []string{Buy, Sell, Hold}, rec.Recommendation)
	assert.GreaterOrEqual(t, rec.Confidence, 0.0)
	assert.LessOrEqual(t, rec.Confidence, 100.0)
	assert.GreaterOrEqual(t, rec.Score, -1.0)
	assert.LessOrEqual(t, rec.Score, 1.0)
	assert.NotEmpty(t, rec.Reasons)
	assert.Equal(t, "bullish", rec.TechnicalAnalysis.Trend)
}

func TestRecommend_MissingQuote(t *testing.T) {
	data := &fakeMarketData{quotes: map[string]domain.Quote{}}

	_, err := newTestService(data).Recommend(context.Background(), "NOPE")

	assert.ErrorIs(t, err, domain.ErrMissingMarketData)
}

func TestRecommend_ShortHistory(t *testing.T) {
	data := &fakeMarketData{
		quotes:    map[string]domain.Quote{"NEW": {Symbol: "NEW", CurrentPrice: 10}},
		histories: map[string][]domain.PriceBar{"NEW": barsFromCloses(risingCloses(30))},
	}

	_, err := newTestService(data).Recommend(context.Background(), "NEW")

	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestRecommendBatch_PartialFailure(t *testing.T) {
	data := &fakeMarketData{
		quotes: map[string]domain.Quote{
			"AAPL": {Symbol: "AAPL", Name: "Apple Inc.", CurrentPrice: 190.5},
		},
		histories: map[string][]domain.PriceBar{
			"AAPL": barsFromCloses(risingCloses(120)),
		},
	}

	entries := newTestService(data).RecommendBatch(context.Background(), []string{"AAPL", "MISSING"})

	require.Len(t, entries, 2)
	require.NotNil(t, entries[0].Recommendation)
	assert.Equal(t, "AAPL", entries[0].Recommendation.Symbol)
	require.NotNil(t, entries[1].Err)
	assert.Equal(t, "MISSING", entries[1].Err.Symbol)
}

func TestEntry_MarshalJSON(t *testing.T) {
	failed := Entry{Err: &domain.SymbolError{Symbol: "X", Error: "boom"}}

	data, err := json.Marshal(failed)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "X", decoded["symbol"])
	assert.Equal(t, "boom", decoded["error"])
	assert.NotContains(t, decoded, "recommendation", "failed entries omit recommendation fields")
}
