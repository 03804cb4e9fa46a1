package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRSISeries_Bounds(t *testing.T) {
	closes := []float64{44, 44.34, 44.09, 44.15, 43.61, 44.33, 44.83, 45.10,
		45.42, 45.84, 46.08, 45.89, 46.03, 45.61, 46.28, 46.28, 46.00, 46.03,
		46.41, 46.22, 45.64, 46.21, 46.25, 45.71, 46.45}

	rsi := RSISeries(closes, 14)

	for i, v := range rsi {
		if math.IsNaN(v) {
			assert.Less(t, i, 14, "RSI must be defined from index 14 onwards")
			continue
		}
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
}

func TestRSISeries_FlatPriceReportsNeutral(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 50
	}

	rsi := RSISeries(closes, 14)

	last := rsi[len(rsi)-1]
	require.False(t, math.IsNaN(last))
	assert.Equal(t, 50.0, last, "flat series has no gains or losses, RSI is the neutral midpoint")
}

func TestRSISeries_AllGainsReportsHundred(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	rsi := RSISeries(closes, 14)

	assert.Equal(t, 100.0, rsi[len(rsi)-1], "loss is zero, RSI saturates at 100 rather than NaN")
}

func TestRSISeries_AllLosses(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 - float64(i)
	}

	rsi := RSISeries(closes, 14)

	assert.Equal(t, 0.0, rsi[len(rsi)-1])
}

func TestRSISeries_InsufficientData(t *testing.T) {
	rsi := RSISeries([]float64{1, 2, 3}, 14)

	for _, v := range rsi {
		assert.True(t, math.IsNaN(v))
	}
}

func TestMACDSeries_HistogramIdentity(t *testing.T) {
	closes := []float64{10, 10.5, 10.2, 10.8, 11.1, 10.9, 11.4, 11.2, 11.8,
		12.0, 11.7, 12.3, 12.1, 12.6}

	macd, signal, histogram := MACDSeries(closes, 12, 26, 9)

	require.Len(t, macd, len(closes))
	for i := range closes {
		assert.InDelta(t, macd[i]-signal[i], histogram[i], 1e-12,
			"histogram must equal macd - signal at every bar")
	}
}

func TestMACDSeries_FirstBar(t *testing.T) {
	closes := []float64{42.0, 43.0}

	macd, signal, histogram := MACDSeries(closes, 12, 26, 9)

	// Both EMAs seed at the first close, so MACD starts at zero.
	assert.Equal(t, 0.0, macd[0])
	assert.Equal(t, 0.0, signal[0])
	assert.Equal(t, 0.0, histogram[0])
}

func TestCalculateMovingAverages_Windows(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = float64(i + 1)
	}

	mas := CalculateMovingAverages(closes, DefaultParams())

	assert.True(t, math.IsNaN(mas.MA5[3]))
	assert.InDelta(t, 3.0, mas.MA5[4], 1e-9) // mean of 1..5
	assert.True(t, math.IsNaN(mas.MALong[58]))
	assert.InDelta(t, 30.5, mas.MALong[59], 1e-9) // mean of 1..60
}

func TestBollingerSeries(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 100 // flat series: zero stddev, bands collapse onto middle
	}

	upper, middle, lower := BollingerSeries(closes, 20, 2)

	assert.True(t, math.IsNaN(middle[18]))
	assert.InDelta(t, 100.0, middle[19], 1e-9)
	assert.InDelta(t, 100.0, upper[24], 1e-9)
	assert.InDelta(t, 100.0, lower[24], 1e-9)
}

func TestBollingerSeries_BandOrdering(t *testing.T) {
	closes := []float64{100, 102, 98, 103, 97, 105, 96, 104, 99, 101,
		100, 102, 98, 103, 97, 105, 96, 104, 99, 101, 100, 102}

	upper, middle, lower := BollingerSeries(closes, 20, 2)

	last := len(closes) - 1
	assert.Greater(t, upper[last], middle[last])
	assert.Less(t, lower[last], middle[last])
	// Upper and lower are symmetric around the middle band.
	assert.InDelta(t, middle[last]-lower[last], upper[last]-middle[last], 1e-9)
}
