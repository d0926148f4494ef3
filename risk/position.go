package risk

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is returned when calculator inputs cannot produce a size.
var ErrInvalidInput = errors.New("invalid calculator input")

// Inputs are the calculator fields in canonical form.
type Inputs struct {
	Capital float64 `json:"capitalTotal"`
	RiskPct float64 `json:"riskPercentage"`
	Entry   float64 `json:"entryPrice"`
	Exit    float64 `json:"exitPrice"`
}

// Result is the position sizing for a set of Inputs.
type Result struct {
	CapitalAtRisk      float64 `json:"capitalAtRisk"`
	RiskPerUnit        float64 `json:"riskPerUnit"`
	PositionSize       float64 `json:"positionSize"`
	TotalPositionValue float64 `json:"totalPositionValue"`
}

// Validate checks the inputs independently of any policy.
func (in Inputs) Validate() error {
	switch {
	case !finite(in.Capital, in.RiskPct, in.Entry, in.Exit):
		return fmt.Errorf("%w: values must be finite", ErrInvalidInput)
	case in.Capital <= 0:
		return fmt.Errorf("%w: capital must be positive", ErrInvalidInput)
	case in.RiskPct < 0 || in.RiskPct > 100:
		return fmt.Errorf("%w: risk percentage must be between 0 and 100", ErrInvalidInput)
	case in.Entry <= 0 || in.Exit <= 0:
		return fmt.Errorf("%w: prices must be positive", ErrInvalidInput)
	case in.Exit >= in.Entry:
		return fmt.Errorf("%w: exit price must be lower than the entry price", ErrInvalidInput)
	}
	return nil
}

// Calculate sizes a position so that hitting the exit loses exactly
// RiskPct of Capital.
func Calculate(in Inputs) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}

	atRisk := CapitalAtRisk(in.Capital, in.RiskPct)
	perUnit := RiskPerUnit(in.Entry, in.Exit)
	size := atRisk / perUnit

	return Result{
		CapitalAtRisk:      atRisk,
		RiskPerUnit:        perUnit,
		PositionSize:       size,
		TotalPositionValue: size * in.Entry,
	}, nil
}

func finite(xs ...float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
