// Package trade holds the journal's domain types and the arithmetic behind
// them.
package trade

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnitPlaces is the precision unit quantities are rounded to.
const UnitPlaces = 8

// Status is derived from the remaining units of a trade.
type Status string

const (
	StatusOpen   Status = "Open"
	StatusClosed Status = "Closed"
)

// Trade is a position opened at a single entry price and closed through
// partial sales.
type Trade struct {
	ID             string    `json:"id"`
	Date           time.Time `json:"Date"`
	Market         string    `json:"Market"`
	TradeType      string    `json:"Trade Type,omitempty"`
	EntryPrice     float64   `json:"Entry Price"`
	Units          float64   `json:"Units"`
	RemainingUnits float64   `json:"Remaining Units"`
	PositionSize   float64   `json:"Position Size"`
	Status         Status    `json:"Status"`
}

// Sale is an immutable partial close of a trade.
type Sale struct {
	ID            string    `json:"id"`
	TradeID       string    `json:"trade_id"`
	Date          time.Time `json:"Date"`
	UnitsSold     float64   `json:"Units Sold"`
	ExitPrice     float64   `json:"Exit Price"`
	ProfitLoss    float64   `json:"Partial P/L"`
	ProfitLossPct float64   `json:"Partial P/L %"`
}

// StatusFor derives the status from remaining units.
func StatusFor(remaining float64) Status {
	if remaining > 0 {
		return StatusOpen
	}
	return StatusClosed
}

// IsOpen reports whether the trade still has units left.
func (t Trade) IsOpen() bool {
	return t.RemainingUnits > 0
}

// PositionSize is entry price times units.
func PositionSize(entry, units float64) float64 {
	return entry * units
}

// ProfitLoss is the realised result of selling units at exit.
func ProfitLoss(entry, exit, units float64) float64 {
	return (exit - entry) * units
}

// PercentChange is the move from entry to exit in percentage points.
func PercentChange(entry, exit float64) float64 {
	if entry == 0 {
		return 0
	}
	return (exit - entry) / entry * 100
}

// RoundUnits rounds a unit quantity to UnitPlaces.
func RoundUnits(x float64) float64 {
	f, _ := decimal.NewFromFloat(x).Round(UnitPlaces).Float64()
	return f
}

// SubtractUnits returns remaining - sold rounded to UnitPlaces, so repeated
// partial sales do not leave float dust behind.
func SubtractUnits(remaining, sold float64) float64 {
	d := decimal.NewFromFloat(remaining).Sub(decimal.NewFromFloat(sold)).Round(UnitPlaces)
	f, _ := d.Float64()
	return f
}

// New builds an open trade.
func New(id, market, tradeType string, entry, units float64, at time.Time) Trade {
	units = RoundUnits(units)
	return Trade{
		ID:             id,
		Date:           at,
		Market:         market,
		TradeType:      tradeType,
		EntryPrice:     entry,
		Units:          units,
		RemainingUnits: units,
		PositionSize:   PositionSize(entry, units),
		Status:         StatusFor(units),
	}
}

// Sell applies a sale of units at exit to t and returns the sale record.
// The caller must already have checked units against t.RemainingUnits.
func (t *Trade) Sell(saleID string, units, exit float64, at time.Time) Sale {
	units = RoundUnits(units)
	t.RemainingUnits = SubtractUnits(t.RemainingUnits, units)
	t.PositionSize = PositionSize(t.EntryPrice, t.RemainingUnits)
	t.Status = StatusFor(t.RemainingUnits)

	return Sale{
		ID:            saleID,
		TradeID:       t.ID,
		Date:          at,
		UnitsSold:     units,
		ExitPrice:     exit,
		ProfitLoss:    ProfitLoss(t.EntryPrice, exit, units),
		ProfitLossPct: PercentChange(t.EntryPrice, exit),
	}
}
