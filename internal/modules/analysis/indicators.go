// Package analysis computes technical indicators over a price series and
// classifies them into a point-in-time technical summary. Everything here
// is a pure function of its inputs; indicator values are recomputed on
// every call and never cached.
package analysis

import (
	"math"

	"finadvisor/pkg/formulas"
)

// Params holds the indicator windows. Zero values are not usable; start
// from DefaultParams and override from configuration.
type Params struct {
	RSIPeriod       int
	MACDFast        int
	MACDSlow        int
	MACDSignal      int
	MAShort         int
	MALong          int
	BollingerPeriod int
	BollingerStdDev float64
}

// DefaultParams returns the standard parameter set.
func DefaultParams() Params {
	return Params{
		RSIPeriod:       14,
		MACDFast:        12,
		MACDSlow:        26,
		MACDSignal:      9,
		MAShort:         20,
		MALong:          60,
		BollingerPeriod: 20,
		BollingerStdDev: 2.0,
	}
}

// RSISeries calculates the Relative Strength Index per bar.
//
//	RS  = avg gain / avg loss over the trailing window (simple means)
//	RSI = 100 - 100/(1+RS)
//
// Indexes with fewer than period deltas behind them are NaN. Two ratio
// edge cases are substituted with defined values instead of propagating
// NaN: all-gain windows (loss == 0, gain > 0) report exactly 100, and
// flat windows (gain == loss == 0) report the neutral midpoint 50.
func RSISeries(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = math.NaN()
	}
	if period <= 0 || len(closes) <= period {
		return out
	}

	gainSum := 0.0
	lossSum := 0.0
	delta := func(i int) (gain, loss float64) {
		d := closes[i] - closes[i-1]
		if d > 0 {
			return d, 0
		}
		return 0, -d
	}

	for i := 1; i < len(closes); i++ {
		g, l := delta(i)
		gainSum += g
		lossSum += l

		if i > period {
			og, ol := delta(i - period)
			gainSum -= og
			lossSum -= ol
		}

		if i < period {
			continue
		}

		gain := gainSum / float64(period)
		loss := lossSum / float64(period)
		switch {
		case loss == 0 && gain == 0:
			out[i] = 50
		case loss == 0:
			out[i] = 100
		default:
			rs := gain / loss
			out[i] = 100 - 100/(1+rs)
		}
	}
	return out
}

// MACDSeries calculates the MACD line, signal line and histogram.
// The EMAs seed at the first observation, so all three series are defined
// at every index and histogram = macd - signal holds exactly.
func MACDSeries(closes []float64, fast, slow, signal int) (macd, signalLine, histogram []float64) {
	emaFast := formulas.EMA(closes, fast)
	emaSlow := formulas.EMA(closes, slow)

	macd = make([]float64, len(closes))
	for i := range closes {
		macd[i] = emaFast[i] - emaSlow[i]
	}

	signalLine = formulas.EMA(macd, signal)

	histogram = make([]float64, len(closes))
	for i := range closes {
		histogram[i] = macd[i] - signalLine[i]
	}
	return macd, signalLine, histogram
}

// MovingAverages holds the standard set of simple moving averages.
// Each series is NaN until its window is filled.
type MovingAverages struct {
	MA5     []float64
	MA10    []float64
	MAShort []float64
	MALong  []float64
}

// CalculateMovingAverages calculates the MA5/MA10/short/long set.
func CalculateMovingAverages(closes []float64, p Params) MovingAverages {
	return MovingAverages{
		MA5:     formulas.RollingMean(closes, 5),
		MA10:    formulas.RollingMean(closes, 10),
		MAShort: formulas.RollingMean(closes, p.MAShort),
		MALong:  formulas.RollingMean(closes, p.MALong),
	}
}

// BollingerSeries calculates Bollinger Bands: a rolling mean middle band
// with upper/lower bands at ±k sample standard deviations. Undefined until
// the window is filled.
func BollingerSeries(closes []float64, period int, k float64) (upper, middle, lower []float64) {
	middle = formulas.RollingMean(closes, period)
	std := formulas.RollingStdDev(closes, period)

	upper = make([]float64, len(closes))
	lower = make([]float64, len(closes))
	for i := range closes {
		upper[i] = middle[i] + k*std[i]
		lower[i] = middle[i] - k*std[i]
	}
	return upper, middle, lower
}
