package notifier

import (
	"fmt"
	"strings"

	"GoldSentinel/internal/cooldown"
	"GoldSentinel/internal/model"
	"GoldSentinel/internal/risk"
)

const maxConfidence = 3

// FormatSignal formats a trade signal with sizing for the given account.
// sentiment may be nil.
func FormatSignal(sig *model.Signal, acct risk.Params, sentiment *model.Sentiment) string {
	var b strings.Builder

	strength := "⚡ MEDIUM"
	if sig.Confidence >= maxConfidence {
		strength = "🔥 STRONG"
	}
	filled := min(max(sig.Confidence, 0), maxConfidence)
	dots := strings.Repeat("🟢", filled) + strings.Repeat("⚪", maxConfidence-filled)

	side := "🔴 SELL"
	if sig.Direction == model.Buy {
		side = "🟢 BUY"
	}

	lot := risk.LotSize(acct, sig.StopDistance())
	rr := risk.RewardRisk(sig.EntryPrice, sig.StopLoss, sig.TakeProfit)

	b.WriteString(fmt.Sprintf("🔔 <b>%s SIGNAL</b> 🔔\n\n", sig.Symbol))
	b.WriteString(fmt.Sprintf("Strength: <b>%s (%s)</b>\n", strength, dots))
	b.WriteString(fmt.Sprintf("Direction: <b>%s</b>\n", side))
	b.WriteString(fmt.Sprintf("Entry: <code>%.2f</code>\n\n", sig.EntryPrice))
	b.WriteString(fmt.Sprintf("🛑 <b>Stop Loss:</b> <code>%.2f</code>\n", sig.StopLoss))
	b.WriteString(fmt.Sprintf("🎯 <b>Take Profit:</b> <code>%.2f</code>\n\n", sig.TakeProfit))
	b.WriteString("📊 <b>Risk Management:</b>\n")
	b.WriteString(fmt.Sprintf("• Lot: <b>%.2f</b> (balance $%.0f, risk %.0f%%)\n", lot, acct.Balance, acct.RiskPercent))
	b.WriteString(fmt.Sprintf("• R/R Ratio: <b>1:%.1f</b>\n\n", rr))
	b.WriteString(fmt.Sprintf("📝 <b>Reason:</b> %s\n", sig.Reason))
	if sentiment != nil && sentiment.Label != "" {
		b.WriteString(fmt.Sprintf("🏦 <b>COT Index:</b> <code>%.1f%%</code> (%s)\n", sentiment.COTIndex, sentiment.Label))
	}
	b.WriteString(fmt.Sprintf("⏰ <b>Time:</b> <code>%s</code>", sig.Timestamp.UTC().Format("2006-01-02 15:04 UTC")))
	return b.String()
}

// FormatResolution reports a tracked trade hitting its stop or target.
func FormatResolution(res cooldown.Resolution, cooldownHours float64) string {
	var b strings.Builder
	tr := res.Trade
	if res.Kind == model.OutcomeWin {
		b.WriteString("✅ <b>TAKE PROFIT HIT</b>\n\n")
	} else {
		b.WriteString("❌ <b>STOP LOSS HIT</b>\n\n")
	}
	b.WriteString(fmt.Sprintf("%s %s from <code>%.2f</code>\n", tr.Direction, tr.Symbol, tr.Entry))
	b.WriteString(fmt.Sprintf("Exit: <code>%.2f</code> | P&amp;L: <b>%+.2f</b>\n", res.Exit, res.PnL))
	if res.Kind == model.OutcomeLoss && cooldownHours > 0 {
		b.WriteString(fmt.Sprintf("\n⏸ New signals paused for %gh.", cooldownHours))
	}
	return b.String()
}

// FormatStatus shows the open trade and the cooldown window.
func FormatStatus(st model.CooldownState, active bool, remainingMinutes int) string {
	var b strings.Builder
	b.WriteString("📦 <b>Status</b>\n\n")
	if tr := st.ActiveTrade; tr != nil {
		b.WriteString(fmt.Sprintf("Open trade: <b>%s %s</b>\n", tr.Direction, tr.Symbol))
		b.WriteString(fmt.Sprintf("Entry %.2f | SL %.2f | TP %.2f\n", tr.Entry, tr.SL, tr.TP))
		b.WriteString(fmt.Sprintf("Opened: %s\n", model.EpochTime(tr.StartTime).UTC().Format("2006-01-02 15:04 UTC")))
	} else {
		b.WriteString("Open trade: none\n")
	}
	if active {
		b.WriteString(fmt.Sprintf("Cooldown: active, %d min left\n", remainingMinutes))
	} else {
		b.WriteString("Cooldown: inactive\n")
	}
	return b.String()
}

// FormatStats summarizes recorded outcomes.
func FormatStats(st model.Stats) string {
	if st.Total == 0 {
		return "📈 <b>Stats</b>\n\nNo closed trades yet."
	}
	var b strings.Builder
	b.WriteString("📈 <b>Stats</b>\n\n")
	b.WriteString(fmt.Sprintf("Trades: %d (W %d / L %d / timed %d)\n", st.Total, st.Wins, st.Losses, st.TimedCloses))
	b.WriteString(fmt.Sprintf("Win rate: %.1f%%\n", st.WinRate))
	b.WriteString(fmt.Sprintf("Total P&amp;L: %+.2f\n", st.TotalPnL))
	return b.String()
}

// FormatHelp lists the supported commands.
func FormatHelp() string {
	return "Available commands:\n• /status: open trade and cooldown\n• /stats: closed trade summary\n• /help: this message"
}
