// Package risk computes per-instrument risk metrics and aggregates them
// into a weighted portfolio risk report.
package risk

import (
	"fmt"
	"math"

	"finadvisor/internal/domain"
	"finadvisor/pkg/formulas"
)

// minReturnObservations is the smallest return sample the metrics accept.
const minReturnObservations = 20

// VolatilityMetrics covers the single-series risk measures. Values are
// percentages except DataPoints.
type VolatilityMetrics struct {
	DailyVolatility  float64
	AnnualVolatility float64
	MaxDrawdown      float64
	AvgDailyReturn   float64
	DataPoints       int
}

// Volatility computes daily/annual volatility, max drawdown and average
// daily return from a close series. Fails when fewer than 20 returns are
// available.
func Volatility(closes []float64) (VolatilityMetrics, error) {
	returns := formulas.Returns(closes)
	if len(returns) < minReturnObservations {
		return VolatilityMetrics{}, fmt.Errorf("%w: need %d return observations, got %d",
			domain.ErrInsufficientData, minReturnObservations, len(returns))
	}

	daily := formulas.StdDev(returns)
	return VolatilityMetrics{
		DailyVolatility:  round2(daily * 100),
		AnnualVolatility: round2(daily * math.Sqrt(formulas.TradingDaysPerYear) * 100),
		MaxDrawdown:      round2(formulas.MaxDrawdown(returns) * 100),
		AvgDailyReturn:   round4(formulas.Mean(returns) * 100),
		DataPoints:       len(returns),
	}, nil
}

// BetaMetrics computes beta and correlation of a stock against a market
// benchmark. The two return series are truncated to the shorter length,
// keeping the most recent observations. A zero-variance market reports
// beta 0 rather than dividing by zero.
func BetaMetrics(stockCloses, marketCloses []float64) (beta, correlation float64, err error) {
	stockReturns := formulas.Returns(stockCloses)
	marketReturns := formulas.Returns(marketCloses)

	n := len(stockReturns)
	if len(marketReturns) < n {
		n = len(marketReturns)
	}
	if n < minReturnObservations {
		return 0, 0, fmt.Errorf("%w: need %d aligned return observations, got %d",
			domain.ErrInsufficientData, minReturnObservations, n)
	}

	stockReturns = stockReturns[len(stockReturns)-n:]
	marketReturns = marketReturns[len(marketReturns)-n:]

	beta = formulas.Beta(stockReturns, marketReturns)
	correlation = formulas.Correlation(stockReturns, marketReturns)
	return round2(beta), round2(correlation), nil
}

// SharpeMetrics computes the annualized Sharpe ratio. A zero-volatility
// series reports 0.
func SharpeMetrics(closes []float64, riskFreeRate float64) (sharpe, annualReturn float64, err error) {
	returns := formulas.Returns(closes)
	if len(returns) < minReturnObservations {
		return 0, 0, fmt.Errorf("%w: need %d return observations, got %d",
			domain.ErrInsufficientData, minReturnObservations, len(returns))
	}

	sharpe = formulas.SharpeRatio(returns, riskFreeRate)
	annualReturn = formulas.AnnualizedReturn(returns)
	return round2(sharpe), round2(annualReturn * 100), nil
}

// Metrics assembles the full per-instrument risk profile. Volatility and
// sharpe come from the stock series alone; beta and correlation need the
// market series. A beta failure (short or missing market data) leaves
// beta/correlation at zero without failing the whole profile.
func Metrics(symbol string, stockCloses, marketCloses []float64, riskFreeRate float64) (domain.RiskMetrics, error) {
	vol, err := Volatility(stockCloses)
	if err != nil {
		return domain.RiskMetrics{}, err
	}

	m := domain.RiskMetrics{
		Symbol:           symbol,
		DailyVolatility:  vol.DailyVolatility,
		AnnualVolatility: vol.AnnualVolatility,
		MaxDrawdown:      vol.MaxDrawdown,
		AvgDailyReturn:   vol.AvgDailyReturn,
		DataPoints:       vol.DataPoints,
	}

	if beta, correlation, betaErr := BetaMetrics(stockCloses, marketCloses); betaErr == nil {
		m.Beta = beta
		m.Correlation = correlation
		m.BetaInterpretation = InterpretBeta(beta)
	}

	if sharpe, annualReturn, sharpeErr := SharpeMetrics(stockCloses, riskFreeRate); sharpeErr == nil {
		m.SharpeRatio = sharpe
		m.AnnualReturn = annualReturn
		m.SharpeInterpretation = InterpretSharpe(sharpe)
	}

	return m, nil
}

// InterpretBeta buckets a beta value into an advisory label. The text is
// never used numerically downstream.
func InterpretBeta(beta float64) string {
	switch {
	case beta > 1.5:
		return "high risk: swings far exceed the market"
	case beta > 1.0:
		return "elevated risk: swings slightly exceed the market"
	case beta > 0.8:
		return "moderate risk: moves roughly with the market"
	case beta > 0.5:
		return "lower risk: swings below the market"
	default:
		return "defensive: swings far below the market"
	}
}

// InterpretSharpe buckets a Sharpe ratio into an advisory label.
func InterpretSharpe(sharpe float64) string {
	switch {
	case sharpe > 2:
		return "excellent risk-adjusted return"
	case sharpe > 1:
		return "good: beats the risk-free alternative"
	case sharpe > 0:
		return "fair: positive but unremarkable after risk"
	default:
		return "poor: negative risk-adjusted return"
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
