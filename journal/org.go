package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/tradesizer/trade"
)

// FormatTradeOrg renders a trade and its sales as an Org-mode block. Facts
// go into the PROPERTIES drawer, sales into a table, and the narrative
// headings are left empty for the journal author.
func FormatTradeOrg(t trade.Trade, sales []trade.Sale) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** Trade: %s (%s)\n", t.Market, shortID(t.ID))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":ID: %s\n", t.ID)
	fmt.Fprintf(&b, ":MARKET: %s\n", t.Market)
	if t.TradeType != "" {
		fmt.Fprintf(&b, ":TRADE_TYPE: %s\n", t.TradeType)
	}
	fmt.Fprintf(&b, ":DATE: %s\n", t.Date.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, ":ENTRY_PRICE: %.5f\n", t.EntryPrice)
	fmt.Fprintf(&b, ":UNITS: %s\n", units(t.Units))
	fmt.Fprintf(&b, ":REMAINING_UNITS: %s\n", units(t.RemainingUnits))
	fmt.Fprintf(&b, ":POSITION_SIZE: %.2f\n", t.PositionSize)
	fmt.Fprintf(&b, ":STATUS: %s\n", t.Status)

	var realized float64
	for _, s := range sales {
		realized += s.ProfitLoss
	}
	fmt.Fprintf(&b, ":REALIZED_PL: %.2f\n", realized)
	b.WriteString(":END:\n\n")

	if len(sales) > 0 {
		b.WriteString("*** Sales\n")
		b.WriteString("| Date | Units | Exit | P/L | P/L % |\n")
		b.WriteString("|-\n")
		for _, s := range sales {
			fmt.Fprintf(&b, "| %s | %s | %.5f | %.2f | %.2f |\n",
				s.Date.UTC().Format(time.RFC3339), units(s.UnitsSold),
				s.ExitPrice, s.ProfitLoss, s.ProfitLossPct)
		}
		b.WriteString("\n")
	}

	b.WriteString("*** Thesis\n- \n\n")
	b.WriteString("*** Execution\n- \n\n")
	b.WriteString("*** Review\n- \n")
	return b.String()
}

// FormatJournalOrg renders every trade with its sales, separated by blank
// lines.
func FormatJournalOrg(trades []trade.Trade, sales []trade.Sale) string {
	byTrade := map[string][]trade.Sale{}
	for _, s := range sales {
		byTrade[s.TradeID] = append(byTrade[s.TradeID], s)
	}

	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatTradeOrg(t, byTrade[t.ID]))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
