package calculator

import (
	"math"
	"testing"
	"time"

	"GoldSentinel/internal/config"
	"GoldSentinel/internal/model"
)

func makeBars(closes []float64) []model.OHLCV {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		open := c
		if i > 0 {
			open = closes[i-1]
		}
		bars[i] = model.OHLCV{
			Time:  start.Add(time.Duration(i) * 15 * time.Minute),
			Open:  open,
			High:  math.Max(open, c) + 0.5,
			Low:   math.Min(open, c) - 0.5,
			Close: c,
		}
	}
	return bars
}

func wave(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 2000 + 15*math.Sin(float64(i)/4) + 5*math.Cos(float64(i)/1.7) + float64(i%7)
	}
	return out
}

func approx(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func TestEMA_KnownValues(t *testing.T) {
	// span 3 -> alpha 0.5
	got := EMA([]float64{10, 20, 30}, 3)
	want := []float64{10, 15, 22.5}
	for i := range want {
		if !approx(got[i], want[i], 1e-12) {
			t.Errorf("EMA[%d]: expected %.4f, got %.4f", i, want[i], got[i])
		}
	}
}

func TestEMA_ConvergesToConstant(t *testing.T) {
	values := []float64{100}
	for i := 0; i < 400; i++ {
		values = append(values, 50)
	}
	ema := EMA(values, 20)
	prevGap := math.Abs(ema[1] - 50)
	for i := 2; i < len(ema); i++ {
		gap := math.Abs(ema[i] - 50)
		if gap > prevGap {
			t.Fatalf("EMA moved away from the constant at %d: %.6f > %.6f", i, gap, prevGap)
		}
		prevGap = gap
	}
	if prevGap > 1e-6 {
		t.Errorf("EMA did not converge, final gap %.8f", prevGap)
	}
}

func TestWilderRSI_Bounds(t *testing.T) {
	series := [][]float64{
		wave(300),
		{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
		{16, 15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1},
		{5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5},
	}
	for si, closes := range series {
		rsi := WilderRSI(closes, 14)
		if !math.IsNaN(rsi[0]) {
			t.Errorf("series %d: RSI[0] should be undefined", si)
		}
		for i := 1; i < len(rsi); i++ {
			if rsi[i] < 0 || rsi[i] > 100 || math.IsNaN(rsi[i]) {
				t.Fatalf("series %d: RSI[%d]=%.4f out of [0,100]", si, i, rsi[i])
			}
		}
	}
}

func TestWilderRSI_SaturatesWithoutLosses(t *testing.T) {
	rsi := WilderRSI([]float64{1, 2, 3, 4, 5}, 14)
	if rsi[4] != 100 {
		t.Errorf("expected RSI 100 on a strictly rising series, got %.4f", rsi[4])
	}
	falling := WilderRSI([]float64{5, 4, 3, 2, 1}, 14)
	if falling[4] != 0 {
		t.Errorf("expected RSI 0 on a strictly falling series, got %.4f", falling[4])
	}
}

func TestWilderRSI_Recursion(t *testing.T) {
	// period 2 -> alpha 0.5; diffs +2, -1
	rsi := WilderRSI([]float64{10, 12, 11}, 2)
	// avgGain: 2 then 1; avgLoss: 0 then 0.5 -> RS 2 -> 66.67
	if !approx(rsi[2], 100-100/3.0, 1e-9) {
		t.Errorf("expected %.4f, got %.4f", 100-100/3.0, rsi[2])
	}
}

func TestRollingStd_SampleDeviation(t *testing.T) {
	std := RollingStd([]float64{2, 4, 4, 4, 5, 5, 7, 9}, 8)
	// sample variance of this set is 32/7
	if !approx(std[7], math.Sqrt(32.0/7.0), 1e-12) {
		t.Errorf("expected %.6f, got %.6f", math.Sqrt(32.0/7.0), std[7])
	}
	if !math.IsNaN(std[6]) {
		t.Error("expected NaN before the window is full")
	}
}

func TestBollinger_ConstantSeriesCollapses(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 1900
	}
	bb := Bollinger(closes, 20, 2)
	for i := 19; i < 25; i++ {
		if bb.Lower[i] != 1900 || bb.Middle[i] != 1900 || bb.Upper[i] != 1900 {
			t.Fatalf("bar %d: expected collapsed bands at 1900, got %.2f/%.2f/%.2f", i, bb.Lower[i], bb.Middle[i], bb.Upper[i])
		}
	}
	if !math.IsNaN(bb.Middle[18]) {
		t.Error("expected undefined middle band before warm-up")
	}
}

func TestFibonacciBands(t *testing.T) {
	bands := FibonacciBands(1000, 2000)
	want := [7]float64{1000, 1236, 1382, 1500, 1618, 1786, 2000}
	for i := range want {
		if !approx(bands[i], want[i], 1e-9) {
			t.Errorf("band %d: expected %.3f, got %.3f", i, want[i], bands[i])
		}
	}
}

func TestCompute_EmptyInput(t *testing.T) {
	out := Compute(nil, DefaultOptions())
	if len(out) != 0 {
		t.Fatalf("expected empty output, got %d bars", len(out))
	}
}

func TestCompute_WarmupIsUndefined(t *testing.T) {
	bars := makeBars(wave(260))
	out := Compute(bars, DefaultOptions())

	tests := []struct {
		name  string
		first int // first defined index
		get   func(model.IndicatorSet) float64
	}{
		{"EMAFast", 49, func(s model.IndicatorSet) float64 { return s.EMAFast }},
		{"EMASlow", 199, func(s model.IndicatorSet) float64 { return s.EMASlow }},
		{"RSI", 13, func(s model.IndicatorSet) float64 { return s.RSI }},
		{"MACD", 25, func(s model.IndicatorSet) float64 { return s.MACD }},
		{"MACDSignal", 33, func(s model.IndicatorSet) float64 { return s.MACDSignal }},
		{"MACDHist", 33, func(s model.IndicatorSet) float64 { return s.MACDHist }},
		{"BBMiddle", 19, func(s model.IndicatorSet) float64 { return s.BBMiddle }},
		{"ATR", 14, func(s model.IndicatorSet) float64 { return s.ATR }},
		{"Fib0", 99, func(s model.IndicatorSet) float64 { return s.Fib[0] }},
	}
	for _, tt := range tests {
		if model.Defined(tt.get(out[tt.first-1].Ind)) {
			t.Errorf("%s: expected undefined at %d", tt.name, tt.first-1)
		}
		if !model.Defined(tt.get(out[tt.first].Ind)) {
			t.Errorf("%s: expected defined at %d", tt.name, tt.first)
		}
		for i := 0; i < tt.first; i++ {
			if tt.get(out[i].Ind) == 0 {
				t.Errorf("%s: warm-up value at %d must be undefined, not zero", tt.name, i)
				break
			}
		}
	}
}

func TestCompute_DoesNotMutateInput(t *testing.T) {
	bars := makeBars(wave(120))
	snapshot := make([]model.OHLCV, len(bars))
	copy(snapshot, bars)
	out := Compute(bars, DefaultOptions())
	for i := range bars {
		if bars[i] != snapshot[i] {
			t.Fatalf("input bar %d mutated", i)
		}
		if out[i].OHLCV != bars[i] {
			t.Fatalf("output bar %d does not carry the raw OHLCV", i)
		}
	}
}

func TestCompute_MACDHistogramIdentity(t *testing.T) {
	out := Compute(makeBars(wave(200)), DefaultOptions())
	for i := 33; i < len(out); i++ {
		ind := out[i].Ind
		if !approx(ind.MACDHist, ind.MACD-ind.MACDSignal, 1e-9) {
			t.Fatalf("bar %d: hist %.6f != line-signal %.6f", i, ind.MACDHist, ind.MACD-ind.MACDSignal)
		}
	}
}

func TestCompute_FibWithinRollingRange(t *testing.T) {
	bars := makeBars(wave(150))
	out := Compute(bars, DefaultOptions())
	last := out[len(out)-1].Ind.Fib
	for i := 1; i < len(last); i++ {
		if last[i] < last[i-1] {
			t.Fatalf("fib bands not ascending: %v", last)
		}
	}
	high, low := math.Inf(-1), math.Inf(1)
	for _, b := range bars[len(bars)-100:] {
		high = math.Max(high, b.High)
		low = math.Min(low, b.Low)
	}
	if last[0] != low || last[6] != high {
		t.Errorf("expected band endpoints %.2f..%.2f, got %.2f..%.2f", low, high, last[0], last[6])
	}
}

func TestOptionsFromStore(t *testing.T) {
	store := config.MapStore{
		"RSI_PERIOD": "21",
		"EMA_SLOW":   "100",
		"BB_STD":     "2.5",
		"MACD_FAST":  "-3",
		"BB_LENGTH":  "abc",
	}
	o := OptionsFromStore(store)
	if o.RSIPeriod != 21 || o.EMASlow != 100 || o.BBStd != 2.5 {
		t.Errorf("overrides not applied: %+v", o)
	}
	if o.MACDFast != 12 || o.BBLength != 20 {
		t.Errorf("invalid values should keep defaults: %+v", o)
	}
	if OptionsFromStore(nil) != DefaultOptions() {
		t.Error("nil store should yield defaults")
	}
}
