// Package report builds the scheduled market and portfolio reports.
package report

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"finadvisor/internal/domain"
)

// reportTypeDaily is the persisted report_type of the end-of-day report.
const reportTypeDaily = "daily"

// MarketData is the quote source for report rows.
type MarketData interface {
	GetQuote(ctx context.Context, symbol string) (domain.Quote, error)
	GetMarketSummary(ctx context.Context) (map[string]domain.IndexQuote, error)
}

// Store is the persistence the report service needs.
type Store interface {
	Holdings() ([]domain.Holding, error)
	Watchlist() ([]domain.WatchItem, error)
	SaveReport(reportType, content string) (int64, error)
	LatestReport(reportType string) (string, time.Time, error)
}

// Service assembles and persists daily reports.
type Service struct {
	data  MarketData
	store Store
	log   zerolog.Logger
}

// NewService creates a report service.
func NewService(data MarketData, store Store, log zerolog.Logger) *Service {
	return &Service{
		data:  data,
		store: store,
		log:   log.With().Str("component", "report").Logger(),
	}
}

// GenerateDaily builds the end-of-day report and persists it. Failures of
// individual sections degrade to empty sections; only a storage failure
// fails the report.
func (s *Service) GenerateDaily(ctx context.Context) (*domain.DailyReport, error) {
	report := &domain.DailyReport{
		GeneratedAt:   time.Now().UTC(),
		Type:          reportTypeDaily,
		MarketSummary: map[string]domain.IndexQuote{},
	}

	if summary, err := s.data.GetMarketSummary(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Market summary unavailable for daily report")
	} else {
		report.MarketSummary = summary
	}

	report.WatchlistUpdates = s.watchlistUpdates(ctx)
	report.PortfolioSummary = s.portfolioSummary(ctx)

	content, err := json.Marshal(report)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.SaveReport(reportTypeDaily, string(content)); err != nil {
		return nil, err
	}

	s.log.Info().
		Int("watchlist_rows", len(report.WatchlistUpdates)).
		Int("holdings", report.PortfolioSummary.HoldingsCount).
		Msg("Daily report generated")

	return report, nil
}

// LatestDaily returns the most recent persisted daily report.
func (s *Service) LatestDaily() (*domain.DailyReport, error) {
	content, _, err := s.store.LatestReport(reportTypeDaily)
	if err != nil {
		return nil, err
	}
	var report domain.DailyReport
	if err := json.Unmarshal([]byte(content), &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// watchlistUpdates builds one price row per tracked symbol. Symbols that
// fail to quote are skipped.
func (s *Service) watchlistUpdates(ctx context.Context) []domain.WatchlistUpdate {
	items, err := s.store.Watchlist()
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to load watchlist for daily report")
		return nil
	}

	var updates []domain.WatchlistUpdate
	for _, item := range items {
		quote, err := s.data.GetQuote(ctx, item.Symbol)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", item.Symbol).Msg("Skipping watchlist symbol")
			continue
		}

		changePct := 0.0
		if quote.PreviousClose > 0 {
			changePct = (quote.CurrentPrice - quote.PreviousClose) / quote.PreviousClose * 100
		}

		name := quote.Name
		if name == "" {
			name = item.Symbol
		}
		updates = append(updates, domain.WatchlistUpdate{
			Symbol:    item.Symbol,
			Name:      name,
			Price:     quote.CurrentPrice,
			ChangePct: round2(changePct),
		})
	}
	return updates
}

// portfolioSummary totals holdings at current prices, falling back to
// average cost for symbols that fail to quote.
func (s *Service) portfolioSummary(ctx context.Context) domain.PortfolioSummary {
	holdings, err := s.store.Holdings()
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to load holdings for daily report")
		return domain.PortfolioSummary{}
	}

	totalCost := 0.0
	totalValue := 0.0
	for _, h := range holdings {
		price := h.AvgCost
		if quote, err := s.data.GetQuote(ctx, h.Symbol); err == nil && quote.CurrentPrice > 0 {
			price = quote.CurrentPrice
		}
		totalCost += h.Shares * h.AvgCost
		totalValue += h.Shares * price
	}

	returnPct := 0.0
	if totalCost > 0 {
		returnPct = (totalValue - totalCost) / totalCost * 100
	}

	return domain.PortfolioSummary{
		TotalCost:      round2(totalCost),
		TotalValue:     round2(totalValue),
		TotalReturn:    round2(totalValue - totalCost),
		TotalReturnPct: round2(returnPct),
		HoldingsCount:  len(holdings),
	}
}

// AdviceSymbols returns the union of watchlist and holding symbols for
// batch recommendations, deduplicated and sorted. When both are empty
// the provided defaults are used.
func (s *Service) AdviceSymbols(defaults []string) ([]string, error) {
	seen := map[string]struct{}{}

	items, err := s.store.Watchlist()
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		seen[item.Symbol] = struct{}{}
	}

	holdings, err := s.store.Holdings()
	if err != nil {
		return nil, err
	}
	for _, h := range holdings {
		seen[h.Symbol] = struct{}{}
	}

	if len(seen) == 0 {
		return defaults, nil
	}

	symbols := make([]string, 0, len(seen))
	for symbol := range seen {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols, nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
