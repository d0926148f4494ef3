package journal

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/rustyeddy/tradesizer/trade"
)

var tradeHeader = []string{"id", "date", "market", "trade_type", "entry_price", "units", "remaining_units", "position_size", "status"}

var saleHeader = []string{"id", "trade_id", "date", "units_sold", "exit_price", "profit_loss", "profit_loss_pct"}

// WriteTradesCSV writes trades with a header row.
func WriteTradesCSV(w io.Writer, trades []trade.Trade) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tradeHeader); err != nil {
		return errors.Wrap(err, "write header")
	}
	for _, t := range trades {
		err := cw.Write([]string{
			t.ID,
			t.Date.UTC().Format(time.RFC3339),
			t.Market,
			t.TradeType,
			f(t.EntryPrice),
			units(t.Units),
			units(t.RemainingUnits),
			f(t.PositionSize),
			string(t.Status),
		})
		if err != nil {
			return errors.Wrapf(err, "write trade %s", t.ID)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush trades")
}

// WriteSalesCSV writes sales with a header row.
func WriteSalesCSV(w io.Writer, sales []trade.Sale) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(saleHeader); err != nil {
		return errors.Wrap(err, "write header")
	}
	for _, s := range sales {
		err := cw.Write([]string{
			s.ID,
			s.TradeID,
			s.Date.UTC().Format(time.RFC3339),
			units(s.UnitsSold),
			f(s.ExitPrice),
			f(s.ProfitLoss),
			f(s.ProfitLossPct),
		})
		if err != nil {
			return errors.Wrapf(err, "write sale %s", s.ID)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush sales")
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

func units(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
