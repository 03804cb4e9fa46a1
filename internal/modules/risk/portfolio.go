package risk

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"finadvisor/internal/domain"
)

// riskPeriod is the lookback for risk metrics: one year of daily bars.
const riskPeriod = "1y"

// MarketData is the external data collaborator for risk computations.
type MarketData interface {
	GetQuote(ctx context.Context, symbol string) (domain.Quote, error)
	GetHistory(ctx context.Context, symbol, period string) ([]domain.PriceBar, error)
}

// Service computes instrument and portfolio risk from fetched market data.
type Service struct {
	data         MarketData
	marketIndex  string
	riskFreeRate float64
	workers      int
	log          zerolog.Logger
}

// NewService creates a risk service. marketIndex is the benchmark symbol
// for beta; workers bounds per-holding concurrency (values below 1
// default to 4).
func NewService(data MarketData, marketIndex string, riskFreeRate float64, workers int, log zerolog.Logger) *Service {
	if workers < 1 {
		workers = 4
	}
	return &Service{
		data:         data,
		marketIndex:  marketIndex,
		riskFreeRate: riskFreeRate,
		workers:      workers,
		log:          log.With().Str("component", "risk").Logger(),
	}
}

// InstrumentRisk fetches one year of history for the symbol and the
// market benchmark and computes the full risk profile.
func (s *Service) InstrumentRisk(ctx context.Context, symbol string) (domain.RiskMetrics, error) {
	bars, err := s.data.GetHistory(ctx, symbol, riskPeriod)
	if err != nil {
		return domain.RiskMetrics{}, fmt.Errorf("%w: history for %s: %v", domain.ErrMissingMarketData, symbol, err)
	}
	if len(bars) == 0 {
		return domain.RiskMetrics{}, fmt.Errorf("%w: empty history for %s", domain.ErrMissingMarketData, symbol)
	}

	marketCloses := s.marketCloses(ctx)
	return Metrics(symbol, domain.Closes(bars), marketCloses, s.riskFreeRate)
}

// marketCloses fetches the benchmark series. A failure is logged and
// returns nil: beta then degrades to zero for the affected holdings
// instead of failing their whole profile.
func (s *Service) marketCloses(ctx context.Context) []float64 {
	bars, err := s.data.GetHistory(ctx, s.marketIndex, riskPeriod)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", s.marketIndex).Msg("Failed to fetch market benchmark")
		return nil
	}
	return domain.Closes(bars)
}

// holdingResult carries one holding's resolved value and metrics out of
// the worker pool.
type holdingResult struct {
	symbol     string
	value      float64
	metrics    domain.RiskMetrics
	metricsErr error
}

// AnalyzePortfolio computes the value-weighted portfolio risk report.
//
// Per-symbol fetch and metric computation run in parallel, bounded by the
// worker limit; the aggregation below is the join point. A holding whose
// metrics fail stays in the listing with an error marker and contributes
// zero to the weighted sums — weights are NOT renormalized over the valid
// subset, which conservatively underestimates portfolio beta and
// volatility.
func (s *Service) AnalyzePortfolio(ctx context.Context, holdings []domain.Holding) (*domain.PortfolioRiskReport, error) {
	if len(holdings) == 0 {
		return nil, domain.ErrEmptyPortfolio
	}

	// Benchmark series is shared across all holdings, fetch it once.
	marketCloses := s.marketCloses(ctx)

	results := make([]holdingResult, len(holdings))
	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup
	for i, h := range holdings {
		wg.Add(1)
		go func(i int, h domain.Holding) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = s.analyzeHolding(ctx, h, marketCloses)
		}(i, h)
	}
	wg.Wait()

	portfolioValue := 0.0
	for _, r := range results {
		portfolioValue += r.value
	}
	if portfolioValue <= 0 {
		return nil, domain.ErrEmptyPortfolio
	}

	report := &domain.PortfolioRiskReport{
		PortfolioValue: round2(portfolioValue),
	}

	weightedBeta := 0.0
	weightedVolatility := 0.0
	hhi := 0.0

	for _, r := range results {
		if r.value <= 0 {
			// No positive value: excluded from weights entirely but kept
			// in the listing with a marker.
			report.StockRisks = append(report.StockRisks, domain.HoldingRisk{
				Symbol: r.symbol,
				Error:  "no positive market value",
			})
			continue
		}

		weight := r.value / portfolioValue
		hhi += weight * weight
		report.HoldingsCount++

		if r.metricsErr != nil {
			report.StockRisks = append(report.StockRisks, domain.HoldingRisk{
				Symbol: r.symbol,
				Weight: round1(weight * 100),
				Error:  r.metricsErr.Error(),
			})
			continue
		}

		weightedBeta += weight * r.metrics.Beta
		weightedVolatility += weight * r.metrics.AnnualVolatility

		report.StockRisks = append(report.StockRisks, domain.HoldingRisk{
			Symbol:      r.symbol,
			Weight:      round1(weight * 100),
			Volatility:  r.metrics.AnnualVolatility,
			Beta:        r.metrics.Beta,
			Sharpe:      r.metrics.SharpeRatio,
			MaxDrawdown: r.metrics.MaxDrawdown,
		})
	}

	report.PortfolioBeta = round2(weightedBeta)
	report.PortfolioVolatility = round2(weightedVolatility)
	report.DiversificationScore = round1((1 - hhi) * 100)
	report.RiskLevel = classifyRisk(report.PortfolioBeta, report.PortfolioVolatility)
	report.Recommendations = buildRecommendations(report)

	return report, nil
}

// analyzeHolding resolves one holding's current value and risk metrics.
// A failed quote falls back to average cost; the holding is only excluded
// from weighting when no positive value can be resolved at all.
func (s *Service) analyzeHolding(ctx context.Context, h domain.Holding, marketCloses []float64) holdingResult {
	price := h.AvgCost
	if quote, err := s.data.GetQuote(ctx, h.Symbol); err == nil && quote.CurrentPrice > 0 {
		price = quote.CurrentPrice
	} else if err != nil {
		s.log.Warn().Err(err).Str("symbol", h.Symbol).Msg("Quote failed, falling back to average cost")
	}

	result := holdingResult{symbol: h.Symbol, value: h.Shares * price}

	bars, err := s.data.GetHistory(ctx, h.Symbol, riskPeriod)
	if err != nil {
		result.metricsErr = fmt.Errorf("%w: %v", domain.ErrMissingMarketData, err)
		return result
	}

	result.metrics, result.metricsErr = Metrics(h.Symbol, domain.Closes(bars), marketCloses, s.riskFreeRate)
	return result
}

// classifyRisk assigns the portfolio risk tier. Rules are evaluated
// high-first: beta above 1.3 classifies as high even with low volatility.
func classifyRisk(beta, volatility float64) string {
	switch {
	case beta > 1.3 || volatility > 30:
		return "high"
	case beta > 0.9 || volatility > 20:
		return "medium"
	default:
		return "low"
	}
}

// buildRecommendations emits every triggered risk warning in fixed order,
// or a single all-clear message when nothing triggers.
func buildRecommendations(report *domain.PortfolioRiskReport) []string {
	var recommendations []string

	if report.DiversificationScore < 50 {
		recommendations = append(recommendations,
			"Portfolio is highly concentrated; consider adding holdings to spread risk")
	}
	if report.PortfolioBeta > 1.3 {
		recommendations = append(recommendations,
			"Portfolio beta is elevated; expect outsized losses in a market downturn")
	}
	if report.PortfolioVolatility > 30 {
		recommendations = append(recommendations,
			"Annualized volatility exceeds 30%; this is a high-volatility portfolio")
	}

	var overweight []string
	for _, hr := range report.StockRisks {
		if hr.Weight > 30 {
			overweight = append(overweight, hr.Symbol)
		}
	}
	if len(overweight) > 0 {
		recommendations = append(recommendations, fmt.Sprintf(
			"%s exceed 30%% of portfolio value; consider reducing single-name exposure",
			strings.Join(overweight, ", ")))
	}

	var highBeta []string
	for _, hr := range report.StockRisks {
		if hr.Beta > 1.5 {
			highBeta = append(highBeta, hr.Symbol)
		}
	}
	if len(highBeta) > 0 {
		recommendations = append(recommendations, fmt.Sprintf(
			"%s are high-beta holdings with above-market swings",
			strings.Join(highBeta, ", ")))
	}

	if len(recommendations) == 0 {
		recommendations = append(recommendations, "Portfolio risk is well controlled")
	}
	return recommendations
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
