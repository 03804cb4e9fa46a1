// Package advisor turns a technical summary into a categorical BUY/SELL/
// HOLD recommendation with a confidence score and human-readable reasons.
package advisor

import (
	"fmt"
	"math"

	"finadvisor/internal/modules/analysis"
)

// Signal weights. They sum to exactly 1.0 so the weighted score stays in
// [-1, 1].
const (
	WeightTrend         = 0.30
	WeightRSI           = 0.25
	WeightMACD          = 0.25
	WeightPricePosition = 0.20
)

// Decision thresholds: |score| >= 0.5 is actionable, boundary inclusive.
const actionThreshold = 0.5

// Recommendation labels.
const (
	Buy  = "BUY"
	Sell = "SELL"
	Hold = "HOLD"
)

// Signals holds the four normalized inputs, each in [-1, 1].
type Signals struct {
	Trend         float64
	RSI           float64
	MACD          float64
	PricePosition float64
}

// Normalize maps the summary's categorical and numeric state onto the
// four signal axes.
func Normalize(s *analysis.Summary) Signals {
	var sig Signals

	switch s.Trend {
	case analysis.TrendBullish:
		sig.Trend = 1.0
	case analysis.TrendBearish:
		sig.Trend = -1.0
	}

	// RSI is contrarian: oversold is a buy signal, overbought a sell.
	switch {
	case s.RSI < 30:
		sig.RSI = 1.0
	case s.RSI > 70:
		sig.RSI = -1.0
	case s.RSI < 40:
		sig.RSI = 0.5
	case s.RSI > 60:
		sig.RSI = -0.5
	}

	if s.MACDStatus == analysis.MACDBullish {
		sig.MACD = 0.4
		if s.MACDHistogram > 0 {
			sig.MACD = 0.8
		}
	} else {
		sig.MACD = -0.4
		if s.MACDHistogram < 0 {
			sig.MACD = -0.8
		}
	}

	switch {
	case s.Close < s.BBLower:
		sig.PricePosition = 1.0
	case s.Close > s.BBUpper:
		sig.PricePosition = -1.0
	case s.Close < s.BBMiddle:
		sig.PricePosition = 0.3
	default:
		sig.PricePosition = -0.3
	}

	return sig
}

// WeightedScore combines the signals into a single score in [-1, 1].
func (sig Signals) WeightedScore() float64 {
	return sig.Trend*WeightTrend +
		sig.RSI*WeightRSI +
		sig.MACD*WeightMACD +
		sig.PricePosition*WeightPricePosition
}

// Decide maps a score to a recommendation and confidence percentage.
// Actionable calls grow more confident as |score| grows; HOLD grows more
// confident as the score approaches zero.
func Decide(score float64) (recommendation string, confidence float64) {
	switch {
	case score >= actionThreshold:
		return Buy, math.Min(math.Abs(score)*100, 100)
	case score <= -actionThreshold:
		return Sell, math.Min(math.Abs(score)*100, 100)
	default:
		return Hold, (1 - math.Abs(score)) * 100
	}
}

// Reasons builds the explanation list, one sentence per triggered
// condition, in fixed order: trend, then RSI, then MACD.
func Reasons(s *analysis.Summary) []string {
	reasons := []string{}

	switch s.Trend {
	case analysis.TrendBullish:
		reasons = append(reasons, "Short-term moving average is above the long-term average, price structure is bullish")
	case analysis.TrendBearish:
		reasons = append(reasons, "Short-term moving average is below the long-term average, price structure is bearish")
	}

	switch s.RSIStatus {
	case analysis.RSIOversold:
		reasons = append(reasons, fmt.Sprintf("RSI %.1f is in oversold territory, a rebound is possible", s.RSI))
	case analysis.RSIOverbought:
		reasons = append(reasons, fmt.Sprintf("RSI %.1f is in overbought territory, watch for a pullback", s.RSI))
	}

	if s.MACDStatus == analysis.MACDBullish {
		reasons = append(reasons, "MACD crossed above its signal line, momentum is strengthening")
	} else {
		reasons = append(reasons, "MACD crossed below its signal line, momentum is weakening")
	}

	return reasons
}
