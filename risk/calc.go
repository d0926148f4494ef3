package risk

import "math"

// CapitalAtRisk is the amount lost when the stop is hit, riskPct in
// percentage points.
func CapitalAtRisk(capital, riskPct float64) float64 {
	return capital * riskPct / 100
}

// RiskPerUnit is the price distance between entry and exit.
func RiskPerUnit(entry, exit float64) float64 {
	return math.Abs(entry - exit)
}

// RiskPct is the share of capital, in percentage points, that a loss of
// amount represents.
func RiskPct(amount, capital float64) float64 {
	if capital <= 0 {
		return math.Inf(1)
	}
	return amount / capital * 100
}
