package risk

import "math"

// Account sizing defaults for a standard gold contract.
const (
	DefaultBalance      = 1000.0
	DefaultRiskPercent  = 1.0
	DefaultContractSize = 100.0
	MinLot              = 0.01
)

// Params describes the account a lot size is computed for.
type Params struct {
	Balance      float64
	RiskPercent  float64
	ContractSize float64
}

// DefaultParams returns the 1000-balance, 1%-risk account.
func DefaultParams() Params {
	return Params{Balance: DefaultBalance, RiskPercent: DefaultRiskPercent, ContractSize: DefaultContractSize}
}

// LotSize risks RiskPercent of Balance over a stop of stopDistance price units.
// The result is rounded to 0.01 lots and never below MinLot; a zero stop distance
// returns MinLot.
func LotSize(p Params, stopDistance float64) float64 {
	stopDistance = math.Abs(stopDistance)
	if stopDistance == 0 || p.ContractSize <= 0 {
		return MinLot
	}
	riskAmount := p.Balance * p.RiskPercent / 100
	lot := riskAmount / (stopDistance * p.ContractSize)
	lot = math.Round(lot*100) / 100
	if lot < MinLot {
		return MinLot
	}
	return lot
}

// RewardRisk is the ratio of target distance to stop distance, or 0 without a stop.
func RewardRisk(entry, stop, target float64) float64 {
	risk := math.Abs(entry - stop)
	if risk == 0 {
		return 0
	}
	return math.Abs(target-entry) / risk
}
