package advisor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"finadvisor/internal/modules/analysis"
)

func TestWeightsSumToOne(t *testing.T) {
	sum := WeightTrend + WeightRSI + WeightMACD + WeightPricePosition
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestDecide_Thresholds(t *testing.T) {
	tests := []struct {
		name           string
		score          float64
		recommendation string
		confidence     float64
	}{
		{"buy boundary inclusive", 0.5, Buy, 50},
		{"sell boundary inclusive", -0.5, Sell, 50},
		{"just under buy threshold", 0.49, Hold, 51},
		{"strong buy", 1.0, Buy, 100},
		{"strong sell", -1.0, Sell, 100},
		{"dead neutral", 0.0, Hold, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, conf := Decide(tt.score)
			assert.Equal(t, tt.recommendation, rec)
			assert.InDelta(t, tt.confidence, conf, 1e-9)
		})
	}
}

func TestNormalize_RSIBuckets(t *testing.T) {
	tests := []struct {
		rsi      float64
		expected float64
	}{
		{25, 1.0},   // oversold, contrarian buy
		{75, -1.0},  // overbought
		{35, 0.5},
		{65, -0.5},
		{50, 0.0},
		{40, 0.0}, // boundary: not < 40
		{60, 0.0}, // boundary: not > 60
	}

	for _, tt := range tests {
		s := &analysis.Summary{RSI: tt.rsi, Trend: analysis.TrendNeutral, MACDStatus: analysis.MACDBearish}
		sig := Normalize(s)
		assert.Equal(t, tt.expected, sig.RSI, "rsi=%v", tt.rsi)
	}
}

func TestNormalize_MACDHistogramStrength(t *testing.T) {
	bullishStrong := &analysis.Summary{MACDStatus: analysis.MACDBullish, MACDHistogram: 0.5}
	bullishWeak := &analysis.Summary{MACDStatus: analysis.MACDBullish, MACDHistogram: -0.1}
	bearishStrong := &analysis.Summary{MACDStatus: analysis.MACDBearish, MACDHistogram: -0.5}
	bearishWeak := &analysis.Summary{MACDStatus: analysis.MACDBearish, MACDHistogram: 0.1}

	assert.Equal(t, 0.8, Normalize(bullishStrong).MACD)
	assert.Equal(t, 0.4, Normalize(bullishWeak).MACD)
	assert.Equal(t, -0.8, Normalize(bearishStrong).MACD)
	assert.Equal(t, -0.4, Normalize(bearishWeak).MACD)
}

func TestNormalize_PricePosition(t *testing.T) {
	base := analysis.Summary{BBUpper: 110, BBMiddle: 100, BBLower: 90}

	below := base
	below.Close = 85
	above := base
	above.Close = 115
	lowerHalf := base
	lowerHalf.Close = 95
	upperHalf := base
	upperHalf.Close = 105

	assert.Equal(t, 1.0, Normalize(&below).PricePosition)
	assert.Equal(t, -1.0, Normalize(&above).PricePosition)
	assert.Equal(t, 0.3, Normalize(&lowerHalf).PricePosition)
	assert.Equal(t, -0.3, Normalize(&upperHalf).PricePosition)
}

func TestWeightedScore_AllBullish(t *testing.T) {
	s := &analysis.Summary{
		Trend:         analysis.TrendBullish,
		RSI:           25, // oversold
		MACDStatus:    analysis.MACDBullish,
		MACDHistogram: 1,
		Close:         85,
		BBUpper:       110,
		BBMiddle:      100,
		BBLower:       90,
	}

	score := Normalize(s).WeightedScore()

	// 1*0.30 + 1*0.25 + 0.8*0.25 + 1*0.20 = 0.95
	assert.InDelta(t, 0.95, score, 1e-9)

	rec, conf := Decide(score)
	assert.Equal(t, Buy, rec)
	assert.InDelta(t, 95, conf, 1e-9)
}

func TestReasons_OrderAndTriggers(t *testing.T) {
	s := &analysis.Summary{
		Trend:      analysis.TrendBullish,
		RSI:        25.4,
		RSIStatus:  analysis.RSIOversold,
		MACDStatus: analysis.MACDBearish,
	}

	reasons := Reasons(s)

	assert.Len(t, reasons, 3)
	assert.Contains(t, reasons[0], "bullish")
	assert.Contains(t, reasons[1], "oversold")
	assert.Contains(t, reasons[2], "momentum is weakening")
}

func TestReasons_NeutralTrendOmitted(t *testing.T) {
	s := &analysis.Summary{
		Trend:      analysis.TrendNeutral,
		RSIStatus:  analysis.RSINeutral,
		MACDStatus: analysis.MACDBullish,
	}

	reasons := Reasons(s)

	// Only the MACD reason triggers.
	assert.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "momentum is strengthening")
}
