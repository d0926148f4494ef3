package journal

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rustyeddy/tradesizer/trade"
)

// Memory is an in-process Store. Data is lost on exit.
type Memory struct {
	mu     sync.RWMutex
	order  []string
	trades map[string]trade.Trade
	sales  []trade.Sale
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{trades: map[string]trade.Trade{}}
}

func (m *Memory) AddTrade(_ context.Context, t trade.Trade) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.trades[t.ID]; ok {
		return errors.Wrapf(ErrInvalid, "duplicate trade id %s", t.ID)
	}
	m.trades[t.ID] = t
	m.order = append(m.order, t.ID)
	return nil
}

func (m *Memory) Trade(_ context.Context, id string) (trade.Trade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.trades[id]
	if !ok {
		return trade.Trade{}, errors.Wrapf(ErrNotFound, "trade %q", id)
	}
	return t, nil
}

func (m *Memory) Trades(_ context.Context) ([]trade.Trade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]trade.Trade, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.trades[id])
	}
	return out, nil
}

func (m *Memory) Sell(_ context.Context, id string, fn SellFunc) (trade.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.trades[id]
	if !ok {
		return trade.Sale{}, errors.Wrapf(ErrNotFound, "trade %q", id)
	}
	sale, err := fn(&t)
	if err != nil {
		return trade.Sale{}, err
	}
	m.trades[id] = t
	m.sales = append(m.sales, sale)
	return sale, nil
}

func (m *Memory) Sales(_ context.Context, tradeID string) ([]trade.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []trade.Sale{}
	for _, s := range m.sales {
		if s.TradeID == tradeID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *Memory) AllSales(_ context.Context) ([]trade.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]trade.Sale{}, m.sales...), nil
}

func (m *Memory) Close() error { return nil }
