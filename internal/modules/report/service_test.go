package report

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
	quotes  map[string]domain.Quote
	summary map[string]domain.IndexQuote
}

func (f *fakeMarketData) GetQuote(_ context.Context, symbol string) (domain.Quote, error) {
	q, ok := f.quotes[symbol]
	if !ok {
		return domain.Quote{}, errors.New("quote not found")
	}
	return q, nil
}

func (f *fakeMarketData) GetMarketSummary(_ context.Context) (map[string]domain.IndexQuote, error) {
	if f.summary == nil {
		return nil, domain.ErrMissingMarketData
	}
	return f.summary, nil
}

type fakeStore struct {
	holdings  []domain.Holding
	watchlist []domain.WatchItem
	saved     []string
}

func (f *fakeStore) Holdings() ([]domain.Holding, error)    { return f.holdings, nil }
func (f *fakeStore) Watchlist() ([]domain.WatchItem, error) { return f.watchlist, nil }

func (f *fakeStore) SaveReport(_, content string) (int64, error) {
	f.saved = append(f.saved, content)
	return int64(len(f.saved)), nil
}

func (f *fakeStore) LatestReport(string) (string, time.Time, error) {
	if len(f.saved) == 0 {
		return "", time.Time{}, errors.New("no reports")
	}
	return f.saved[len(f.saved)-1], time.Now(), nil
}

func TestGenerateDaily(t *testing.T) {
	data := &fakeMarketData{
		quotes: map[string]domain.Quote{
			"AAPL": {Symbol: "AAPL", Name: "Apple Inc.", CurrentPrice: 200, PreviousClose: 190},
			"TSLA": {Symbol: "TSLA", Name: "Tesla", CurrentPrice: 250, PreviousClose: 250},
		},
		summary: map[string]domain.IndexQuote{
			"S&P 500": {Symbol: "^GSPC", Price: 5000, Change: 25, ChangePct: 0.5},
		},
	}
	store := &fakeStore{
		holdings:  []domain.Holding{{Symbol: "AAPL", Shares: 10, AvgCost: 150}},
		watchlist: []domain.WatchItem{{Symbol: "TSLA", Name: "Tesla"}},
	}

	report, err := NewService(data, store, zerolog.Nop()).GenerateDaily(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "daily", report.Type)
	assert.Contains(t, report.MarketSummary, "S&P 500")

	require.Len(t, report.WatchlistUpdates, 1)
	assert.Equal(t, "TSLA", report.WatchlistUpdates[0].Symbol)
	assert.Equal(t, 0.0, report.WatchlistUpdates[0].ChangePct)

	summary := report.PortfolioSummary
	assert.Equal(t, 1500.0, summary.TotalCost)
	assert.Equal(t, 2000.0, summary.TotalValue)
	assert.Equal(t, 500.0, summary.TotalReturn)
	assert.InDelta(t, 33.33, summary.TotalReturnPct, 0.001)
	assert.Equal(t, 1, summary.HoldingsCount)

	require.Len(t, store.saved, 1, "report is persisted")
}

func TestGenerateDaily_DegradesSections(t *testing.T) {
	data := &fakeMarketData{quotes: map[string]domain.Quote{}}
	store := &fakeStore{
		watchlist: []domain.WatchItem{{Symbol: "NOPE"}},
		holdings:  []domain.Holding{{Symbol: "NOPE", Shares: 10, AvgCost: 100}},
	}

	report, err := NewService(data, store, zerolog.Nop()).GenerateDaily(context.Background())
	require.NoError(t, err)

	assert.Empty(t, report.MarketSummary)
	assert.Empty(t, report.WatchlistUpdates, "unquotable watchlist symbols are skipped")
	// Holdings fall back to average cost, never vanish from the totals.
	assert.Equal(t, 1000.0, report.PortfolioSummary.TotalCost)
	assert.Equal(t, 1000.0, report.PortfolioSummary.TotalValue)
}

func TestLatestDaily_RoundTrips(t *testing.T) {
	data := &fakeMarketData{quotes: map[string]domain.Quote{}}
	store := &fakeStore{}
	svc := NewService(data, store, zerolog.Nop())

	generated, err := svc.GenerateDaily(context.Background())
	require.NoError(t, err)

	latest, err := svc.LatestDaily()
	require.NoError(t, err)
	assert.Equal(t, generated.Type, latest.Type)
	assert.Equal(t, generated.PortfolioSummary, latest.PortfolioSummary)
}

func TestAdviceSymbols(t *testing.T) {
	store := &fakeStore{
		watchlist: []domain.WatchItem{{Symbol: "TSLA"}, {Symbol: "AAPL"}},
		holdings:  []domain.Holding{{Symbol: "AAPL"}, {Symbol: "MSFT"}},
	}
	svc := NewService(&fakeMarketData{}, store, zerolog.Nop())

	symbols, err := svc.AdviceSymbols([]string{"VTI"})
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT", "TSLA"}, symbols, "union, deduplicated and sorted")
}

func TestAdviceSymbols_Defaults(t *testing.T) {
	svc := NewService(&fakeMarketData{}, &fakeStore{}, zerolog.Nop())

	symbols, err := svc.AdviceSymbols([]string{"AAPL", "MSFT"})
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, symbols)
}
