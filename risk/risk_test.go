package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	got, err := Calculate(Inputs{Capital: 10000, RiskPct: 2, Entry: 100, Exit: 90})
	require.NoError(t, err)

	assert.InDelta(t, 200.0, got.CapitalAtRisk, 1e-9)
	assert.InDelta(t, 10.0, got.RiskPerUnit, 1e-9)
	assert.InDelta(t, 20.0, got.PositionSize, 1e-9)
	assert.InDelta(t, 2000.0, got.TotalPositionValue, 1e-9)
}

func TestCalculateFractional(t *testing.T) {
	t.Parallel()

	got, err := Calculate(Inputs{Capital: 5000, RiskPct: 0.5, Entry: 1.2, Exit: 1.19})
	require.NoError(t, err)

	assert.InDelta(t, 25.0, got.CapitalAtRisk, 1e-9)
	assert.InDelta(t, 0.01, got.RiskPerUnit, 1e-9)
	assert.InDelta(t, 2500.0, got.PositionSize, 1e-6)
	assert.InDelta(t, 3000.0, got.TotalPositionValue, 1e-6)
}

func TestCalculateInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Inputs
	}{
		{"zero capital", Inputs{Capital: 0, RiskPct: 1, Entry: 10, Exit: 9}},
		{"risk over 100", Inputs{Capital: 100, RiskPct: 101, Entry: 10, Exit: 9}},
		{"negative risk", Inputs{Capital: 100, RiskPct: -1, Entry: 10, Exit: 9}},
		{"zero entry", Inputs{Capital: 100, RiskPct: 1, Entry: 0, Exit: 9}},
		{"exit equals entry", Inputs{Capital: 100, RiskPct: 1, Entry: 10, Exit: 10}},
		{"exit above entry", Inputs{Capital: 100, RiskPct: 1, Entry: 10, Exit: 11}},
		{"nan", Inputs{Capital: math.NaN(), RiskPct: 1, Entry: 10, Exit: 9}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Calculate(tt.in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy()
	in := Inputs{Capital: 10000, RiskPct: 2, Entry: 100, Exit: 90}
	res, err := Calculate(in)
	require.NoError(t, err)

	d := Evaluate(p, in, res, 0)
	require.False(t, d.Allowed)
	require.Len(t, d.Violations, 1)
	assert.Equal(t, "RISK_OVER_DEFAULT", d.Violations[0].Code)

	in.RiskPct = 1
	res, _ = Calculate(in)
	d = Evaluate(p, in, res, 0)
	assert.True(t, d.Allowed)
	assert.Empty(t, d.Violations)

	in.RiskPct = 5
	in.Exit = 99
	res, _ = Calculate(in)
	d = Evaluate(p, in, res, p.MaxOpenTrades)
	codes := []string{}
	for _, v := range d.Violations {
		codes = append(codes, v.Code)
	}
	assert.Equal(t, []string{"RISK_TOO_HIGH", "POSITION_TOO_LARGE", "TOO_MANY_OPEN_TRADES"}, codes)
}

func TestEvaluateZeroPolicy(t *testing.T) {
	t.Parallel()

	in := Inputs{Capital: 100, RiskPct: 50, Entry: 10, Exit: 1}
	res, err := Calculate(in)
	require.NoError(t, err)
	assert.True(t, Evaluate(Policy{}, in, res, 100).Allowed)
}
