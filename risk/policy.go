package risk

// Policy holds the soft limits the calculator warns about. Percentages are
// in points (2 means 2%). Zero disables a limit.
type Policy struct {
	DefaultRiskPct float64 `yaml:"default_risk_pct" json:"default_risk_pct"`
	MaxRiskPct     float64 `yaml:"max_risk_pct" json:"max_risk_pct"`

	// MaxPositionPct caps the total position value as a share of capital.
	MaxPositionPct float64 `yaml:"max_position_pct" json:"max_position_pct"`

	MaxOpenTrades int `yaml:"max_open_trades" json:"max_open_trades"`
}

// DefaultPolicy is the classic 1% default, 2% max rule.
func DefaultPolicy() Policy {
	return Policy{
		DefaultRiskPct: 1,
		MaxRiskPct:     2,
		MaxPositionPct: 100,
		MaxOpenTrades:  10,
	}
}
