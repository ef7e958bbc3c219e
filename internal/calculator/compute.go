package calculator

import "GoldSentinel/internal/model"

// Compute attaches every indicator column to a copy of bars. An indicator with period p
// stays undefined for the first p-1 bars (MACD signal and histogram: slow+signal-2;
// RSI also needs one close difference; ATR: the first ATRPeriod bars).
// Empty input returns an empty result.
func Compute(bars []model.OHLCV, opts Options) []model.IndicatorBar {
	out := make([]model.IndicatorBar, len(bars))
	if len(bars) == 0 {
		return out
	}
	for i, b := range bars {
		out[i] = model.IndicatorBar{OHLCV: b, Ind: model.EmptyIndicatorSet()}
	}

	closes := extractCloses(bars)

	if ema := EMA(closes, opts.EMAFast); ema != nil {
		for i := max(opts.EMAFast-1, 0); i < len(out); i++ {
			out[i].Ind.EMAFast = ema[i]
		}
	}
	if ema := EMA(closes, opts.EMASlow); ema != nil {
		for i := max(opts.EMASlow-1, 0); i < len(out); i++ {
			out[i].Ind.EMASlow = ema[i]
		}
	}

	rsi := WilderRSI(closes, opts.RSIPeriod)
	for i := max(opts.RSIPeriod-1, 1); i < len(out); i++ {
		out[i].Ind.RSI = rsi[i]
	}

	if m := MACD(closes, opts.MACDFast, opts.MACDSlow, opts.MACDSignal); m.Line != nil {
		lineStart := max(opts.MACDFast, opts.MACDSlow) - 1
		signalStart := lineStart + opts.MACDSignal - 1
		for i := max(lineStart, 0); i < len(out); i++ {
			out[i].Ind.MACD = m.Line[i]
			if i >= signalStart {
				out[i].Ind.MACDSignal = m.Signal[i]
				out[i].Ind.MACDHist = m.Hist[i]
			}
		}
	}

	bb := Bollinger(closes, opts.BBLength, opts.BBStd)
	for i := range out {
		out[i].Ind.BBLower = bb.Lower[i]
		out[i].Ind.BBMiddle = bb.Middle[i]
		out[i].Ind.BBUpper = bb.Upper[i]
	}

	atr := ATR(bars, opts.ATRPeriod)
	for i := range out {
		out[i].Ind.ATR = atr[i]
	}

	lookback := opts.FibLookback
	if lookback <= 0 {
		lookback = DefaultFibLookback
	}
	highs, lows := RollingRange(bars, lookback)
	for i := lookback - 1; i < len(out); i++ {
		out[i].Ind.Fib = FibonacciBands(lows[i], highs[i])
	}

	return out
}
