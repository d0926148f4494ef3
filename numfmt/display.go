package numfmt

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Placeholder is shown in place of a value that cannot be formatted.
const Placeholder = "-"

// UnitDecimals is the number of fraction digits shown for unit quantities.
const UnitDecimals = 8

// Display renders canonical numbers for read-only views.
type Display struct {
	Policy   Policy
	Currency string
}

// NewDisplay returns a Display for the given locale and ISO currency code.
func NewDisplay(locale, currency string) (Display, error) {
	p, err := Lookup(locale)
	if err != nil {
		return Display{}, err
	}
	if currency == "" {
		currency = "USD"
	}
	return Display{Policy: p, Currency: strings.ToUpper(currency)}, nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Fixed renders x with exactly n fraction digits and grouping.
func (d Display) Fixed(x float64, n int) string {
	if !finite(x) {
		return Placeholder
	}
	s := decimal.NewFromFloat(x).StringFixed(int32(n))
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, hasFrac := strings.Cut(s, ".")
	out := d.Policy.group(intPart)
	if hasFrac {
		out += string(d.Policy.Decimal) + frac
	}
	if neg && strings.Trim(out, "0"+string(d.Policy.Decimal)+string(d.Policy.Thousands)) != "" {
		out = "-" + out
	}
	return out
}

// Number renders x with two fraction digits.
func (d Display) Number(x float64) string {
	return d.Fixed(x, 2)
}

// Units renders a unit quantity with eight fraction digits.
func (d Display) Units(x float64) string {
	return d.Fixed(x, UnitDecimals)
}

func (d Display) symbol() string {
	switch d.Currency {
	case "", "USD":
		return d.Policy.DollarSymbol
	case "EUR":
		return "€"
	default:
		return d.Currency
	}
}

// Money renders x as a currency amount with two fraction digits.
func (d Display) Money(x float64) string {
	s := d.Fixed(x, 2)
	if s == Placeholder {
		return s
	}
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	if d.Policy.SymbolAfter {
		s = s + " " + d.symbol()
	} else {
		s = d.symbol() + s
	}
	if neg {
		s = "-" + s
	}
	return s
}

// Percent renders whole percentage points (5 meaning 5%) with two fraction digits.
func (d Display) Percent(points float64) string {
	s := d.Fixed(points, 2)
	if s == Placeholder {
		return s
	}
	if d.Policy.PercentSpace {
		return s + " %"
	}
	return s + "%"
}

// ProfitLossClass returns the CSS class for a profit or loss amount.
func ProfitLossClass(x float64) string {
	switch {
	case !finite(x):
		return ""
	case x > 0:
		return "text-success"
	case x < 0:
		return "text-danger"
	default:
		return ""
	}
}
