package calculator

// MACDResult holds the three MACD series, aligned with the input.
type MACDResult struct {
	Line   []float64
	Signal []float64
	Hist   []float64
}

// MACD computes line = EMA(fast) - EMA(slow), signal = EMA(line, signalSpan), hist = line - signal.
// All recursions start at the first value; warm-up masking is left to the caller.
func MACD(closes []float64, fast, slow, signalSpan int) MACDResult {
	if len(closes) == 0 {
		return MACDResult{}
	}
	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)
	if fastEMA == nil || slowEMA == nil {
		return MACDResult{}
	}
	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fastEMA[i] - slowEMA[i]
	}
	signal := EMA(line, signalSpan)
	if signal == nil {
		return MACDResult{}
	}
	hist := make([]float64, len(closes))
	for i := range closes {
		hist[i] = line[i] - signal[i]
	}
	return MACDResult{Line: line, Signal: signal, Hist: hist}
}
