package simulator

import "GoldSentinel/internal/model"

// CheckBar tests one bar against a position's stop and target.
// The stop is checked first, so a bar crossing both resolves as a loss.
func CheckBar(dir model.Direction, sl, tp, high, low float64) (model.OutcomeKind, bool) {
	if dir == model.Buy {
		if low <= sl {
			return model.OutcomeLoss, true
		}
		if high >= tp {
			return model.OutcomeWin, true
		}
		return "", false
	}
	if high >= sl {
		return model.OutcomeLoss, true
	}
	if low <= tp {
		return model.OutcomeWin, true
	}
	return "", false
}

// PnL is the directional price difference between entry and exit.
func PnL(dir model.Direction, entry, exit float64) float64 {
	if dir == model.Buy {
		return exit - entry
	}
	return entry - exit
}

// Resolve walks future bars, at most horizon of them, until the stop or target is touched.
// Without a touch the trade closes at the last walked bar's close. No future bars means
// a timed close at entry. A non-positive horizon walks every bar.
func Resolve(sig *model.Signal, future []model.OHLCV, horizon int) model.TradeOutcome {
	window := future
	if horizon > 0 && len(window) > horizon {
		window = window[:horizon]
	}
	for i, b := range window {
		kind, hit := CheckBar(sig.Direction, sig.StopLoss, sig.TakeProfit, b.High, b.Low)
		if !hit {
			continue
		}
		exit := sig.StopLoss
		if kind == model.OutcomeWin {
			exit = sig.TakeProfit
		}
		return model.TradeOutcome{
			Signal:    sig,
			ExitPrice: exit,
			ExitTime:  b.Time,
			Kind:      kind,
			PnL:       PnL(sig.Direction, sig.EntryPrice, exit),
			BarsHeld:  i + 1,
		}
	}

	if len(window) == 0 {
		return model.TradeOutcome{
			Signal:    sig,
			ExitPrice: sig.EntryPrice,
			ExitTime:  sig.Timestamp,
			Kind:      model.OutcomeTimedClose,
		}
	}
	lastBar := window[len(window)-1]
	return model.TradeOutcome{
		Signal:    sig,
		ExitPrice: lastBar.Close,
		ExitTime:  lastBar.Time,
		Kind:      model.OutcomeTimedClose,
		PnL:       PnL(sig.Direction, sig.EntryPrice, lastBar.Close),
		BarsHeld:  len(window),
	}
}
