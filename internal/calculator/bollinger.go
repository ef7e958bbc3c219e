package calculator

import "math"

// BollingerBands holds lower/middle/upper series.
type BollingerBands struct {
	Lower  []float64
	Middle []float64
	Upper  []float64
}

// Bollinger computes SMA(length) ± RollingStd(length) * mult.
func Bollinger(closes []float64, length int, mult float64) BollingerBands {
	mid := SMA(closes, length)
	std := RollingStd(closes, length)
	lower := nanSlice(len(closes))
	upper := nanSlice(len(closes))
	for i := range closes {
		if math.IsNaN(mid[i]) || math.IsNaN(std[i]) {
			continue
		}
		lower[i] = mid[i] - std[i]*mult
		upper[i] = mid[i] + std[i]*mult
	}
	return BollingerBands{Lower: lower, Middle: mid, Upper: upper}
}
