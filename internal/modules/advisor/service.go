package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"

	"github.com/rs/zerolog"

	"finadvisor/internal/domain"
	"finadvisor/internal/modules/analysis"
)

// historyPeriod is the lookback used for recommendations: six months of
// daily bars comfortably covers the 60-bar long moving average.
const historyPeriod = "6mo"

// MarketData is the external data collaborator: a synchronous per-symbol
// fetch that either returns data or fails.
type MarketData interface {
	GetQuote(ctx context.Context, symbol string) (domain.Quote, error)
	GetHistory(ctx context.Context, symbol, period string) ([]domain.PriceBar, error)
}

// Service produces recommendations from fetched market data.
type Service struct {
	data    MarketData
	params  analysis.Params
	workers int
	log     zerolog.Logger
}

// NewService creates a recommendation service. workers bounds batch
// concurrency; values below 1 default to 4.
func NewService(data MarketData, params analysis.Params, workers int, log zerolog.Logger) *Service {
	if workers < 1 {
		workers = 4
	}
	return &Service{
		data:    data,
		params:  params,
		workers: workers,
		log:     log.With().Str("component", "advisor").Logger(),
	}
}

// Recommend fetches data for one symbol, summarizes it and scores it.
func (s *Service) Recommend(ctx context.Context, symbol string) (*domain.Recommendation, error) {
	quote, err := s.data.GetQuote(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: quote for %s: %v", domain.ErrMissingMarketData, symbol, err)
	}

	bars, err := s.data.GetHistory(ctx, symbol, historyPeriod)
	if err != nil {
		return nil, fmt.Errorf("%w: history for %s: %v", domain.ErrMissingMarketData, symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: empty history for %s", domain.ErrMissingMarketData, symbol)
	}

	summary, err := analysis.Summarize(domain.Closes(bars), s.params)
	if err != nil {
		return nil, err
	}

	score := Normalize(summary).WeightedScore()
	recommendation, confidence := Decide(score)

	return &domain.Recommendation{
		Symbol:            symbol,
		Name:              quote.Name,
		CurrentPrice:      quote.CurrentPrice,
		Currency:          quote.Currency,
		Recommendation:    recommendation,
		Confidence:        round1(confidence),
		Score:             round2(score),
		Reasons:           Reasons(summary),
		TechnicalAnalysis: summary.Snapshot(),
	}, nil
}

// Entry is one element of a batch result: either a full recommendation or
// a {symbol, error} marker, never both.
type Entry struct {
	Recommendation *domain.Recommendation
	Err            *domain.SymbolError
}

// MarshalJSON flattens the entry so failed symbols serialize as
// {"symbol": ..., "error": ...} with no recommendation fields.
func (e Entry) MarshalJSON() ([]byte, error) {
	if e.Err != nil {
		return json.Marshal(e.Err)
	}
	return json.Marshal(e.Recommendation)
}

// RecommendBatch scores many symbols concurrently, bounded by the worker
// limit. A failing symbol becomes an error entry; it never blocks or
// invalidates the others. Result order matches the input order.
func (s *Service) RecommendBatch(ctx context.Context, symbols []string) []Entry {
	entries := make([]Entry, len(symbols))

	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup
	for i, symbol := range symbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			rec, err := s.Recommend(ctx, symbol)
			if err != nil {
				s.log.Warn().Err(err).Str("symbol", symbol).Msg("Recommendation failed")
				entries[i] = Entry{Err: &domain.SymbolError{Symbol: symbol, Error: err.Error()}}
				return
			}
			entries[i] = Entry{Recommendation: rec}
		}(i, symbol)
	}
	wg.Wait()

	return entries
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
