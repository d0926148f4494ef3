package numfmt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		policy Policy
		raw    string
		want   string
	}{
		{"empty", ES, "", ""},
		{"letters only", ES, "abc", ""},
		{"plain", ES, "1234", "1.234"},
		{"regroup", ES, "1.23.4", "1.234"},
		{"fraction", ES, "1234567,89", "1.234.567,89"},
		{"trailing separator", ES, "1234,", "1.234,"},
		{"bare separator", ES, ",", "0,"},
		{"leading zeros", ES, "000123", "123"},
		{"all zeros", ES, "000", "0"},
		{"zero fraction", ES, "0,05", "0,05"},
		{"last separator wins", ES, "1,2,3", "12,3"},
		{"minus stripped", ES, "-42", "42"},
		{"us plain", US, "1234567.5", "1,234,567.5"},
		{"us commas dropped", US, "1,2,3,4", "1,234"},
		{"us dots", US, "1.234.567", "1,234.567"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.policy.Format(tt.raw))
		})
	}
}

func TestFormatIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"", "0", "0,", ",", ",5", "12", "1234", "1.234", "1.234,", "1.234,5",
		"000,000", "9999999,12345678", "1,2,3", "a1b2c3", "12.34.56,7", "-5,5",
	}
	for _, p := range []Policy{ES, US} {
		for _, s := range inputs {
			once := p.Format(s)
			assert.Equal(t, once, p.Format(once), "%s %q", p.Name, s)
		}
	}
}

func TestUnformat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"1.234,56", 1234.56, true},
		{"0", 0, true},
		{"0,", 0, true},
		{",5", 0.5, true},
		{"12", 12, true},
		{"", 0, false},
		{"   ", 0, false},
		{"abc", 0, false},
		{"1,2,3", 0, false},
		{"-3,5", -3.5, true},
	}

	for _, tt := range tests {
		got, ok := ES.Unformat(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		if tt.wantOK {
			assert.InDelta(t, tt.want, got, 1e-12, tt.in)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	values := []float64{
		0, 1, 0.5, 12.25, 999, 1000, 1234.56, 10000, 0.00000001,
		1234567.12345678, 98765432.1, 3.14159265, 100.1,
	}
	for _, p := range []Policy{ES, US} {
		for _, x := range values {
			display := p.FromFloat(x, 8)
			got, ok := p.Unformat(p.Format(display))
			require.True(t, ok, "%s %v -> %q", p.Name, x, display)
			assert.InDelta(t, x, got, 1e-8, "%s %v -> %q", p.Name, x, display)
		}
	}
}

func TestFitsDecimals(t *testing.T) {
	t.Parallel()

	assert.True(t, ES.FitsDecimals("1,5", 1))
	assert.True(t, ES.FitsDecimals("1,50", 1))
	assert.False(t, ES.FitsDecimals("1,55", 1))
	assert.True(t, ES.FitsDecimals("100,1234", 4))
	assert.False(t, ES.FitsDecimals("100,12345", 4))
	assert.False(t, ES.FitsDecimals("", 2))
}

func TestCaretPosition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		old, new string
		caret    int
		want     int
	}{
		{"typed at end gains separator", "1.2345", "12.345", 6, 6},
		{"mid edit", "1.2345", "12.345", 5, 5},
		{"separator inserted", "1234", "1.234", 4, 5},
		{"separator removed", "1.234", "234", 5, 3},
		{"start", "1.234", "1.234", 0, 0},
		{"caret beyond old", "12", "12", 10, 2},
		{"negative caret", "12", "12", -4, 0},
		{"shrunk value", "1.234.567", "1", 9, 1},
		{"leading zero added", ",", "0,", 1, 2},
		{"leading zero added before digits", ",25", "0,25", 2, 3},
		{"caret before bare separator", ",5", "0,5", 0, 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ES.CaretPosition(tt.old, tt.new, tt.caret)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCaretPositionBounds(t *testing.T) {
	t.Parallel()

	raws := []string{"", "1", "12345", "1.234,5", "99999999", "0,0001"}
	for _, raw := range raws {
		next := ES.Format(raw + "7")
		for caret := -2; caret <= len(raw)+3; caret++ {
			got := ES.CaretPosition(raw, next, caret)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, len([]rune(next)))
		}
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	p, err := Lookup("es-ES")
	require.NoError(t, err)
	assert.Equal(t, ',', p.Decimal)

	p, err = Lookup("en")
	require.NoError(t, err)
	assert.Equal(t, '.', p.Decimal)

	_, err = Lookup("fr-FR")
	assert.Error(t, err)
}

func TestSanitize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1234,5", ES.Sanitize("$ 1.234,5 €"))
	assert.Equal(t, "1234.5", US.Sanitize("1,234.5abc"))
}

func TestDisplay(t *testing.T) {
	t.Parallel()

	es, err := NewDisplay("es-ES", "usd")
	require.NoError(t, err)
	us, err := NewDisplay("en-US", "")
	require.NoError(t, err)

	assert.Equal(t, "1.234,50 US$", es.Money(1234.5))
	assert.Equal(t, "$1,234.50", us.Money(1234.5))
	assert.Equal(t, "-$200.00", us.Money(-200))
	assert.Equal(t, "20,00000000", es.Units(20))
	assert.Equal(t, "5,00 %", es.Percent(5))
	assert.Equal(t, "-12.50%", us.Percent(-12.5))
	assert.Equal(t, "0.00", us.Number(-0.001))
	assert.Equal(t, Placeholder, us.Money(math.NaN()))
	assert.Equal(t, Placeholder, us.Units(math.Inf(1)))
}

func TestProfitLossClass(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "text-success", ProfitLossClass(1))
	assert.Equal(t, "text-danger", ProfitLossClass(-1))
	assert.Equal(t, "", ProfitLossClass(0))
	assert.Equal(t, "", ProfitLossClass(math.NaN()))
}
