package analysis

import (
	"fmt"
	"math"

	"finadvisor/internal/domain"
)

// Trend and status labels used by the summary classification.
const (
	TrendBullish = "bullish"
	TrendBearish = "bearish"
	TrendNeutral = "neutral"

	RSIOverbought = "overbought"
	RSIOversold   = "oversold"
	RSINeutral    = "neutral"

	MACDBullish = "bullish"
	MACDBearish = "bearish"
)

// Summary is the latest indicator state at full precision. Downstream
// scoring reads these fields directly; rounding happens only in Snapshot.
type Summary struct {
	Close         float64
	RSI           float64
	RSIStatus     string
	MACD          float64
	MACDSignal    float64
	MACDHistogram float64
	MACDStatus    string
	MAShort       float64
	MALong        float64
	Trend         string
	BBUpper       float64
	BBMiddle      float64
	BBLower       float64
}

// Summarize computes every indicator over the series and classifies the
// latest values. A full summary needs at least MALong bars; shorter series
// fail with domain.ErrInsufficientData because the trend classification
// cannot be trusted without the long moving average.
func Summarize(closes []float64, p Params) (*Summary, error) {
	if len(closes) < p.MALong {
		return nil, fmt.Errorf("%w: need %d bars, got %d", domain.ErrInsufficientData, p.MALong, len(closes))
	}

	last := len(closes) - 1

	rsi := RSISeries(closes, p.RSIPeriod)
	macd, signal, histogram := MACDSeries(closes, p.MACDFast, p.MACDSlow, p.MACDSignal)
	mas := CalculateMovingAverages(closes, p)
	bbUpper, bbMiddle, bbLower := BollingerSeries(closes, p.BollingerPeriod, p.BollingerStdDev)

	s := &Summary{
		Close:         closes[last],
		RSI:           rsi[last],
		MACD:          macd[last],
		MACDSignal:    signal[last],
		MACDHistogram: histogram[last],
		MAShort:       mas.MAShort[last],
		MALong:        mas.MALong[last],
		BBUpper:       bbUpper[last],
		BBMiddle:      bbMiddle[last],
		BBLower:       bbLower[last],
	}

	s.Trend = TrendNeutral
	if s.MAShort > s.MALong && s.Close > s.MAShort {
		s.Trend = TrendBullish
	} else if s.MAShort < s.MALong && s.Close < s.MAShort {
		s.Trend = TrendBearish
	}

	s.RSIStatus = RSINeutral
	if s.RSI > 70 {
		s.RSIStatus = RSIOverbought
	} else if s.RSI < 30 {
		s.RSIStatus = RSIOversold
	}

	s.MACDStatus = MACDBearish
	if s.MACD > s.MACDSignal {
		s.MACDStatus = MACDBullish
	}

	return s, nil
}

// Snapshot returns the presentation view of the summary: price-scale
// values at 2 decimals, MACD-scale values at 4.
func (s *Summary) Snapshot() domain.IndicatorSnapshot {
	return domain.IndicatorSnapshot{
		Close:         round(s.Close, 2),
		RSI:           round(s.RSI, 2),
		RSIStatus:     s.RSIStatus,
		MACD:          round(s.MACD, 4),
		MACDSignal:    round(s.MACDSignal, 4),
		MACDHistogram: round(s.MACDHistogram, 4),
		MACDStatus:    s.MACDStatus,
		MAShort:       round(s.MAShort, 2),
		MALong:        round(s.MALong, 2),
		Trend:         s.Trend,
		BBUpper:       round(s.BBUpper, 2),
		BBMiddle:      round(s.BBMiddle, 2),
		BBLower:       round(s.BBLower, 2),
	}
}

func round(v float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}
