// Package formulas provides the numeric building blocks for technical and
// risk analysis: return series, rolling statistics, drawdown, volatility
// and risk-adjusted ratios. All functions are pure and hold no state.
package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear is the annualization factor for daily return series.
const TradingDaysPerYear = 252

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample standard deviation (ddof=1)
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// Variance calculates the sample variance (ddof=1)
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.Variance(data, nil)
}

// Covariance calculates the sample covariance between two equal-length series
func Covariance(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return 0
	}
	return stat.Covariance(x, y, nil)
}

// Correlation calculates the Pearson correlation coefficient. A series
// with zero variance reports 0 instead of the 0/0 NaN.
func Correlation(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return 0
	}
	if Variance(x) == 0 || Variance(y) == 0 {
		return 0
	}
	return stat.Correlation(x, y, nil)
}

// Returns converts a price series to simple daily returns.
// Returns[i] = (Price[i+1] - Price[i]) / Price[i]; the first bar has no
// return, so the result is one element shorter than the input.
func Returns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] != 0 {
			returns[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
		}
	}
	return returns
}

// AnnualizedVolatility calculates annualized volatility from daily returns.
// Formula: sample stddev of daily returns × sqrt(252).
func AnnualizedVolatility(dailyReturns []float64) float64 {
	return StdDev(dailyReturns) * math.Sqrt(TradingDaysPerYear)
}

// AnnualizedReturn scales the mean daily return to a yearly figure.
func AnnualizedReturn(dailyReturns []float64) float64 {
	return Mean(dailyReturns) * TradingDaysPerYear
}

// Beta calculates the market sensitivity of a return series.
//
//	Beta = Cov(stock, market) / Var(market)
//
// Both moments use sample statistics so that Beta of a series against
// itself is exactly 1. A zero-variance market reports 0 instead of
// dividing by zero.
func Beta(stockReturns, marketReturns []float64) float64 {
	marketVar := Variance(marketReturns)
	if marketVar == 0 {
		return 0
	}
	return Covariance(stockReturns, marketReturns) / marketVar
}

// SharpeRatio calculates excess annual return per unit of annual volatility.
//
//	Sharpe = (AnnualReturn - RiskFreeRate) / AnnualVolatility
//
// A zero-volatility series reports 0 instead of dividing by zero.
func SharpeRatio(dailyReturns []float64, riskFreeRate float64) float64 {
	annualVol := AnnualizedVolatility(dailyReturns)
	if annualVol == 0 {
		return 0
	}
	return (AnnualizedReturn(dailyReturns) - riskFreeRate) / annualVol
}
