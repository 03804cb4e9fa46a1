package formulas

// MaxDrawdown calculates the maximum peak-to-trough decline of the
// cumulative return series built from daily returns.
//
//	C_t = Π(1 + r_i)   cumulative growth
//	P_t = max(C_0..C_t) running peak
//	D_t = (C_t - P_t) / P_t
//
// The result is min(D_t), which is <= 0 (0 for a series that never falls
// below a previous peak).
func MaxDrawdown(dailyReturns []float64) float64 {
	if len(dailyReturns) == 0 {
		return 0
	}

	cumulative := 1.0
	peak := 0.0
	maxDrawdown := 0.0

	for i, r := range dailyReturns {
		cumulative *= 1 + r
		if i == 0 || cumulative > peak {
			peak = cumulative
		}
		if peak > 0 {
			drawdown := (cumulative - peak) / peak
			if drawdown < maxDrawdown {
				maxDrawdown = drawdown
			}
		}
	}

	return maxDrawdown
}
