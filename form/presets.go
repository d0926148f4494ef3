package form

import "regexp"

// MarketPattern matches market symbols, including crypto pairs like BTC-USD or ETH/USDT.
var MarketPattern = regexp.MustCompile(`^[A-Za-z0-9\-./]+$`)

var currencyPattern = regexp.MustCompile(`^[A-Za-z]{3}$`)

func ptr(x float64) *float64 { return &x }

func price(id, name, label string, decimals int) *Field {
	return &Field{
		ID:    id,
		Name:  name,
		Label: label,
		Kind:  Number,
		Rule:  Rule{Required: true, Positive: true, Decimals: decimals, Step: 0.01, Min: ptr(0)},
	}
}

func units(id, name, label string, required bool) *Field {
	return &Field{
		ID:    id,
		Name:  name,
		Label: label,
		Kind:  Number,
		Rule:  Rule{Required: required, Positive: true, Decimals: 8, Step: 1, Min: ptr(0)},
	}
}

// CalculatorForm is the position-size calculator.
func CalculatorForm() *Form {
	return New("calculator",
		&Field{
			ID:    "capitalTotal",
			Label: "Total capital",
			Kind:  Number,
			Rule:  Rule{Required: true, Positive: true, Decimals: 2, Step: 100, Min: ptr(0)},
		},
		&Field{
			ID:    "riskPercentage",
			Label: "Risk percentage",
			Kind:  Number,
			Rule:  Rule{Required: true, Min: ptr(0), Max: ptr(100), Decimals: 1, Step: 0.5},
		},
		price("entryPrice", "", "Entry price", 4),
		price("exitPrice", "", "Stop price", 4),
		&Field{
			ID:        "baseCurrency",
			Label:     "Base currency",
			Kind:      Choice,
			Transform: Upper,
			Default:   "USD",
			Rule:      Rule{Required: true, Decimals: -1, Pattern: currencyPattern},
		},
	)
}

// CalculatorValidator validates a CalculatorForm.
func CalculatorValidator(v *Validator) *Validator {
	v.Cross = append(v.Cross, ExitBelowEntry("entryPrice", "exitPrice"))
	return v
}

// TradeForm records a new trade.
func TradeForm() *Form {
	return New("trade",
		&Field{
			ID:        "market",
			Label:     "Market",
			Kind:      Text,
			Transform: Upper,
			Rule:      Rule{Required: true, Decimals: -1, Pattern: MarketPattern},
		},
		price("entryPrice", "", "Entry price", 8),
		units("units", "", "Units", true),
		&Field{
			ID:        "tradeType",
			Label:     "Trade type",
			Kind:      Choice,
			Transform: Lower,
			Options:   []string{"buy", "sell"},
			Rule:      Rule{Decimals: -1},
		},
	)
}

// SaleForm records a partial sale of a trade.
func SaleForm() *Form {
	return New("sale",
		&Field{ID: "saleTradeId", Name: "tradeId", Kind: Text, Rule: Rule{Required: true, Decimals: -1}},
		units("saleUnits", "units", "Units to sell", true),
		price("saleExitPrice", "exitPrice", "Exit price", 8),
	)
}

// SaleValidator validates a SaleForm against the trade's remaining units.
func SaleValidator(v *Validator, remaining RemainingFunc) *Validator {
	v.Cross = append(v.Cross, SaleWithinRemaining("saleUnits", remaining))
	return v
}

// CloseForm sets the status of a trade; closing requires an exit price.
func CloseForm() *Form {
	exit := price("closeExitPrice", "exitPrice", "Exit price", 8)
	exit.Rule.Required = false
	return New("close",
		&Field{ID: "closeTradeId", Name: "tradeId", Kind: Text, Rule: Rule{Required: true, Decimals: -1}},
		&Field{
			ID:      "status",
			Label:   "Status",
			Kind:    Choice,
			Options: []string{"Open", "Closed"},
			Default: "Open",
			Rule:    Rule{Required: true, Decimals: -1},
		},
		exit,
	)
}

// CloseValidator validates a CloseForm.
func CloseValidator(v *Validator) *Validator {
	v.Cross = append(v.Cross, ExitRequiredWhenClosed("status", "closeExitPrice"))
	return v
}
