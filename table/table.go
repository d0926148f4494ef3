// Package table owns the trade list shown in the journal view: filtering,
// sorting, row view-models, row actions and dialog state.
package table

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rustyeddy/tradesizer/form"
	"github.com/rustyeddy/tradesizer/numfmt"
	"github.com/rustyeddy/tradesizer/trade"
)

// Column names, matching the trade JSON keys.
const (
	ColID             = "id"
	ColDate           = "Date"
	ColMarket         = "Market"
	ColTradeType      = "Trade Type"
	ColEntryPrice     = "Entry Price"
	ColUnits          = "Units"
	ColRemainingUnits = "Remaining Units"
	ColPositionSize   = "Position Size"
	ColStatus         = "Status"
)

// Columns is the display order of the table.
var Columns = []string{
	ColDate, ColMarket, ColTradeType, ColEntryPrice, ColUnits,
	ColRemainingUnits, ColPositionSize, ColStatus,
}

// Direction of a sort.
type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

// ParseDirection accepts "asc" or "desc"; anything else is Asc.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), "desc") {
		return Desc
	}
	return Asc
}

// SortState is the current sort column and direction. An empty Column
// keeps the stored order.
type SortState struct {
	Column    string
	Direction Direction
}

// Toggle returns the state after clicking column: a new column sorts
// ascending, the same column flips direction.
func (s SortState) Toggle(column string) SortState {
	if s.Column != column {
		return SortState{Column: column, Direction: Asc}
	}
	if s.Direction == Asc {
		return SortState{Column: column, Direction: Desc}
	}
	return SortState{Column: column, Direction: Asc}
}

// Action is a per-row control.
type Action string

const (
	ActionHistory Action = "history"
	ActionSell    Action = "sell"
)

// Cell is one rendered value.
type Cell struct {
	Column string
	Text   string
	Class  string
}

// Row is the view-model of one trade.
type Row struct {
	ID      string
	Cells   []Cell
	Actions []Action
}

// Has reports whether the row offers action a.
func (r Row) Has(a Action) bool {
	for _, x := range r.Actions {
		if x == a {
			return true
		}
	}
	return false
}

// Dialog identifies the open modal, if any.
type Dialog struct {
	Kind    Action
	TradeID string
}

// Controller holds the authoritative trade list. It is safe for
// concurrent use.
type Controller struct {
	mu      sync.RWMutex
	trades  []trade.Trade
	display numfmt.Display
	dialog  *Dialog
	onClose []func()
}

// New returns an empty controller rendering with d.
func New(d numfmt.Display) *Controller {
	return &Controller{display: d}
}

// Replace swaps in a new trade list wholesale.
func (c *Controller) Replace(trades []trade.Trade) {
	cp := append([]trade.Trade(nil), trades...)
	c.mu.Lock()
	c.trades = cp
	c.mu.Unlock()
}

// Trades returns a copy of the stored list in stored order.
func (c *Controller) Trades() []trade.Trade {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]trade.Trade(nil), c.trades...)
}

// Trade looks up one trade by id.
func (c *Controller) Trade(id string) (trade.Trade, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, t := range c.trades {
		if t.ID == id {
			return t, true
		}
	}
	return trade.Trade{}, false
}

// Remaining returns the remaining units of trade id.
func (c *Controller) Remaining(id string) (float64, bool) {
	t, ok := c.Trade(id)
	return t.RemainingUnits, ok
}

// RemainingFor adapts Remaining to the sale form's cross-field rule.
func (c *Controller) RemainingFor(id func() string) form.RemainingFunc {
	return func() (float64, bool) { return c.Remaining(id()) }
}

// OpenDialog records that a modal for tradeID is open.
func (c *Controller) OpenDialog(kind Action, tradeID string) {
	c.mu.Lock()
	c.dialog = &Dialog{Kind: kind, TradeID: tradeID}
	c.mu.Unlock()
}

// CloseDialog clears the modal state and notifies OnDialogClose listeners.
func (c *Controller) CloseDialog() {
	c.mu.Lock()
	wasOpen := c.dialog != nil
	c.dialog = nil
	listeners := append([]func(){}, c.onClose...)
	c.mu.Unlock()

	if wasOpen {
		for _, fn := range listeners {
			fn()
		}
	}
}

// DialogOpen reports whether a modal is open.
func (c *Controller) DialogOpen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dialog != nil
}

// CurrentDialog returns the open modal.
func (c *Controller) CurrentDialog() (Dialog, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.dialog == nil {
		return Dialog{}, false
	}
	return *c.dialog, true
}

// OnDialogClose registers fn to run after a dialog closes.
func (c *Controller) OnDialogClose(fn func()) {
	c.mu.Lock()
	c.onClose = append(c.onClose, fn)
	c.mu.Unlock()
}

// Render filters and sorts a copy of the stored trades and returns their
// rows. The stored order is left untouched.
func (c *Controller) Render(filter string, s SortState) []Row {
	trades := c.Trades()
	trades = Filter(trades, filter)
	Sort(trades, s)

	rows := make([]Row, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, c.row(t))
	}
	return rows
}

func (c *Controller) row(t trade.Trade) Row {
	d := c.display
	r := Row{ID: t.ID}
	for _, col := range Columns {
		cell := Cell{Column: col}
		switch col {
		case ColDate:
			cell.Text = formatDate(t.Date)
		case ColMarket:
			cell.Text = t.Market
		case ColTradeType:
			cell.Text = t.TradeType
		case ColEntryPrice:
			cell.Text = d.Money(t.EntryPrice)
		case ColUnits:
			cell.Text = d.Units(t.Units)
		case ColRemainingUnits:
			cell.Text = d.Units(t.RemainingUnits)
		case ColPositionSize:
			cell.Text = d.Money(t.PositionSize)
		case ColStatus:
			cell.Text = string(trade.StatusFor(t.RemainingUnits))
			if t.IsOpen() {
				cell.Class = "text-success"
			} else {
				cell.Class = "text-secondary"
			}
		}
		r.Cells = append(r.Cells, cell)
	}

	r.Actions = []Action{ActionHistory}
	if t.RemainingUnits > 0 {
		r.Actions = append(r.Actions, ActionSell)
	}
	return r
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return numfmt.Placeholder
	}
	return t.Local().Format("2006-01-02 15:04")
}

// Filter keeps trades where any stringified field contains q, ignoring
// case. An empty q keeps everything.
func Filter(trades []trade.Trade, q string) []trade.Trade {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return trades
	}
	out := make([]trade.Trade, 0, len(trades))
	for _, t := range trades {
		if matches(t, q) {
			out = append(out, t)
		}
	}
	return out
}

func matches(t trade.Trade, q string) bool {
	fields := []string{
		t.ID,
		t.Market,
		t.TradeType,
		string(t.Status),
		plain(t.EntryPrice),
		plain(t.Units),
		plain(t.RemainingUnits),
		plain(t.PositionSize),
	}
	if !t.Date.IsZero() {
		fields = append(fields, t.Date.Format(time.RFC3339))
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// plain renders x without an exponent: 1000000, not 1e+06.
func plain(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

type sortKey struct {
	null bool
	num  float64
	str  string
	time time.Time
	kind int // 0 num, 1 str, 2 time
}

func keyOf(t trade.Trade, column string) sortKey {
	switch column {
	case ColDate:
		return sortKey{null: t.Date.IsZero(), time: t.Date, kind: 2}
	case ColID:
		return sortKey{null: t.ID == "", str: strings.ToLower(t.ID), kind: 1}
	case ColMarket:
		return sortKey{null: t.Market == "", str: strings.ToLower(t.Market), kind: 1}
	case ColTradeType:
		return sortKey{null: t.TradeType == "", str: strings.ToLower(t.TradeType), kind: 1}
	case ColStatus:
		return sortKey{str: strings.ToLower(string(trade.StatusFor(t.RemainingUnits))), kind: 1}
	case ColEntryPrice:
		return sortKey{num: t.EntryPrice}
	case ColUnits:
		return sortKey{num: t.Units}
	case ColRemainingUnits:
		return sortKey{num: t.RemainingUnits}
	case ColPositionSize:
		return sortKey{num: t.PositionSize}
	}
	return sortKey{null: true}
}

func less(a, b sortKey) bool {
	switch a.kind {
	case 1:
		return a.str < b.str
	case 2:
		return a.time.Before(b.time)
	default:
		return a.num < b.num
	}
}

// Sort orders trades in place by s. Empty values sort last in both
// directions and equal keys keep their relative order.
func Sort(trades []trade.Trade, s SortState) {
	if s.Column == "" {
		return
	}
	ks := make([]sortKey, len(trades))
	for i, t := range trades {
		ks[i] = keyOf(t, s.Column)
	}
	idx := make([]int, len(trades))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		a, b := ks[idx[i]], ks[idx[j]]
		if a.null || b.null {
			return !a.null && b.null
		}
		if s.Direction == Desc {
			return less(b, a)
		}
		return less(a, b)
	})

	sorted := make([]trade.Trade, len(trades))
	for i, j := range idx {
		sorted[i] = trades[j]
	}
	copy(trades, sorted)
}
