package calculator

// WilderRSI computes the Wilder-smoothed RSI series over closes.
// Gains and losses are smoothed with alpha = 1/period, seeded by the first close difference.
// Position 0 has no difference and is NaN. When the average loss is zero RSI is 100.
func WilderRSI(closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	if len(closes) < 2 || period <= 0 {
		return out
	}
	alpha := 1.0 / float64(period)

	var avgGain, avgLoss float64
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		if i == 1 {
			avgGain, avgLoss = gain, loss
		} else {
			avgGain = alpha*gain + (1-alpha)*avgGain
			avgLoss = alpha*loss + (1-alpha)*avgLoss
		}
		out[i] = rsiFromAverages(avgGain, avgLoss)
	}
	return out
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
