package simulator

import "GoldSentinel/internal/model"

// Summarize reduces outcomes to totals. Wins and losses count WIN and LOSS outcomes;
// timed closes are counted apart and only contribute P&L.
func Summarize(outcomes []model.TradeOutcome) model.Stats {
	var s model.Stats
	for _, o := range outcomes {
		s.Total++
		s.TotalPnL += o.PnL
		switch o.Kind {
		case model.OutcomeWin:
			s.Wins++
		case model.OutcomeLoss:
			s.Losses++
		case model.OutcomeTimedClose:
			s.TimedCloses++
		}
	}
	if s.Total > 0 {
		s.WinRate = float64(s.Wins) / float64(s.Total) * 100
	}
	return s
}
