package formulas

import "math"

// Rolling statistics over a trailing window ending at the current index.
// The value at index i covers values[i-window+1 .. i]; indexes with fewer
// than window observations are NaN (undefined, never zero). Each function
// streams a running sum instead of rescanning the window per index.

// RollingMean calculates the simple moving average over a trailing window.
func RollingMean(values []float64, window int) []float64 {
	out := undefinedSeries(len(values))
	if window <= 0 || len(values) < window {
		return out
	}

	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// RollingStdDev calculates the sample standard deviation (ddof=1) over a
// trailing window, matching the convention of StdDev.
func RollingStdDev(values []float64, window int) []float64 {
	out := undefinedSeries(len(values))
	if window < 2 || len(values) < window {
		return out
	}

	sum := 0.0
	sumSq := 0.0
	n := float64(window)
	for i, v := range values {
		sum += v
		sumSq += v * v
		if i >= window {
			old := values[i-window]
			sum -= old
			sumSq -= old * old
		}
		if i >= window-1 {
			variance := (sumSq - sum*sum/n) / (n - 1)
			if variance < 0 {
				variance = 0 // guard against floating-point cancellation
			}
			out[i] = math.Sqrt(variance)
		}
	}
	return out
}

// EMA calculates the exponential moving average with alpha = 2/(span+1).
// The recurrence seeds at the first observation, so every index is defined:
//
//	ema[0] = values[0]
//	ema[i] = alpha*values[i] + (1-alpha)*ema[i-1]
func EMA(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 || span <= 0 {
		return out
	}

	alpha := 2.0 / (float64(span) + 1.0)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

func undefinedSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
