package calculator

import (
	"strconv"

	"GoldSentinel/internal/config"
)

// Options configures Compute.
type Options struct {
	RSIPeriod   int
	EMAFast     int
	EMASlow     int
	MACDFast    int
	MACDSlow    int
	MACDSignal  int
	BBLength    int
	BBStd       float64
	ATRPeriod   int
	FibLookback int
}

// DefaultOptions returns the standard indicator periods.
func DefaultOptions() Options {
	return Options{
		RSIPeriod:   14,
		EMAFast:     50,
		EMASlow:     200,
		MACDFast:    12,
		MACDSlow:    26,
		MACDSignal:  9,
		BBLength:    20,
		BBStd:       2.0,
		ATRPeriod:   14,
		FibLookback: DefaultFibLookback,
	}
}

// OptionsFromStore starts from DefaultOptions and overrides every key the store supplies.
// Non-numeric or non-positive values keep the default.
func OptionsFromStore(store config.Store) Options {
	o := DefaultOptions()
	if store == nil {
		return o
	}
	o.RSIPeriod = intFrom(store, "RSI_PERIOD", o.RSIPeriod)
	o.EMAFast = intFrom(store, "EMA_FAST", o.EMAFast)
	o.EMASlow = intFrom(store, "EMA_SLOW", o.EMASlow)
	o.MACDFast = intFrom(store, "MACD_FAST", o.MACDFast)
	o.MACDSlow = intFrom(store, "MACD_SLOW", o.MACDSlow)
	o.MACDSignal = intFrom(store, "MACD_SIGNAL", o.MACDSignal)
	o.BBLength = intFrom(store, "BB_LENGTH", o.BBLength)
	o.ATRPeriod = intFrom(store, "ATR_PERIOD", o.ATRPeriod)
	if v, err := strconv.ParseFloat(store.Get("BB_STD", ""), 64); err == nil && v > 0 {
		o.BBStd = v
	}
	return o
}

func intFrom(store config.Store, key string, def int) int {
	v, err := strconv.Atoi(store.Get(key, ""))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
