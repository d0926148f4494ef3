package risk

import "fmt"

// Violation is one policy breach.
type Violation struct {
	Code string `json:"code"`
	Msg  string `json:"message"`
}

// Decision collects the violations of a sized position.
type Decision struct {
	Allowed    bool        `json:"allowed"`
	Violations []Violation `json:"violations,omitempty"`
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

// Evaluate checks a calculation against p. openTrades is the number of
// trades currently open in the journal.
func Evaluate(p Policy, in Inputs, res Result, openTrades int) Decision {
	d := Decision{Allowed: true}

	if p.MaxRiskPct > 0 && in.RiskPct > p.MaxRiskPct {
		d.add("RISK_TOO_HIGH",
			fmt.Sprintf("risk %.2f%% exceeds max %.2f%%", in.RiskPct, p.MaxRiskPct))
	} else if p.DefaultRiskPct > 0 && in.RiskPct > p.DefaultRiskPct {
		d.add("RISK_OVER_DEFAULT",
			fmt.Sprintf("risk %.2f%% exceeds default %.2f%%", in.RiskPct, p.DefaultRiskPct))
	}

	if p.MaxPositionPct > 0 {
		if pct := RiskPct(res.TotalPositionValue, in.Capital); pct > p.MaxPositionPct {
			d.add("POSITION_TOO_LARGE",
				fmt.Sprintf("position value is %.2f%% of capital, max %.2f%%", pct, p.MaxPositionPct))
		}
	}

	if p.MaxOpenTrades > 0 && openTrades >= p.MaxOpenTrades {
		d.add("TOO_MANY_OPEN_TRADES",
			fmt.Sprintf("open trades %d >= max %d", openTrades, p.MaxOpenTrades))
	}
	return d
}
