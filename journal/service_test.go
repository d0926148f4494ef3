package journal

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rustyeddy/tradesizer/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	s := NewService(NewMemory(), nil)
	n := 0
	s.NewID = func(time.Time) string {
		n++
		return fmt.Sprintf("ID%02d", n)
	}
	now := t0
	s.Now = func() time.Time {
		now = now.Add(time.Minute)
		return now
	}
	return s
}

func TestServiceAddTrade(t *testing.T) {
	t.Parallel()

	s := newTestService(t)
	ctx := context.Background()

	tr, err := s.AddTrade(ctx, NewTrade{Market: " btc-usd ", TradeType: "BUY", EntryPrice: 100, Units: 0.123456789})
	require.NoError(t, err)
	assert.Equal(t, "ID01", tr.ID)
	assert.Equal(t, "BTC-USD", tr.Market)
	assert.Equal(t, "buy", tr.TradeType)
	assert.Equal(t, 0.12345679, tr.Units)
	assert.Equal(t, t0.Add(time.Minute), tr.Date)

	ts, err := s.Trades(ctx)
	require.NoError(t, err)
	assert.Len(t, ts, 1)
}

func TestServiceAddTradeInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  NewTrade
	}{
		{"no market", NewTrade{EntryPrice: 1, Units: 1}},
		{"zero entry", NewTrade{Market: "X", Units: 1}},
		{"negative units", NewTrade{Market: "X", EntryPrice: 1, Units: -1}},
		{"dust units", NewTrade{Market: "X", EntryPrice: 1, Units: 1e-10}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := newTestService(t).AddTrade(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestServiceSellUnits(t *testing.T) {
	t.Parallel()

	s := newTestService(t)
	ctx := context.Background()

	tr, err := s.AddTrade(ctx, NewTrade{Market: "AAPL", EntryPrice: 100, Units: 10})
	require.NoError(t, err)

	_, err = s.SellUnits(ctx, tr.ID, 50, 110)
	assert.ErrorIs(t, err, ErrInvalid)

	sale, err := s.SellUnits(ctx, tr.ID, 4, 110)
	require.NoError(t, err)
	assert.Equal(t, tr.ID, sale.TradeID)
	assert.InDelta(t, 40.0, sale.ProfitLoss, 1e-9)
	assert.InDelta(t, 10.0, sale.ProfitLossPct, 1e-9)

	_, err = s.SellUnits(ctx, "missing", 1, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.SellUnits(ctx, tr.ID, 0, 1)
	assert.ErrorIs(t, err, ErrInvalid)

	hist, err := s.SalesHistory(ctx, tr.ID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, sale, hist[0])

	_, err = s.SalesHistory(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := s.OpenTrades(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestServiceSummary(t *testing.T) {
	t.Parallel()

	s := newTestService(t)
	ctx := context.Background()

	a, err := s.AddTrade(ctx, NewTrade{Market: "AAPL", EntryPrice: 100, Units: 10})
	require.NoError(t, err)
	_, err = s.AddTrade(ctx, NewTrade{Market: "MSFT", EntryPrice: 50, Units: 2})
	require.NoError(t, err)
	_, err = s.SellUnits(ctx, a.ID, 10, 120)
	require.NoError(t, err)

	sum, err := s.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.TotalTrades)
	assert.Equal(t, 1, sum.OpenTrades)
	assert.Equal(t, 1, sum.ClosedTrades)
	assert.InDelta(t, 200.0, sum.TotalProfitLoss, 1e-9)
	assert.InDelta(t, 100.0, sum.WinRate, 1e-9)
	require.NotNil(t, sum.BestPerforming)
	assert.Equal(t, a.ID, sum.BestPerforming.ID)
	assert.Equal(t, trade.StatusClosed, sum.BestPerforming.Status)
}

func TestServiceCloseTrade(t *testing.T) {
	t.Parallel()

	s := newTestService(t)
	ctx := context.Background()

	tr, err := s.AddTrade(ctx, NewTrade{Market: "ETH-USD", EntryPrice: 2000, Units: 1.5})
	require.NoError(t, err)
	_, err = s.SellUnits(ctx, tr.ID, 0.5, 2100)
	require.NoError(t, err)

	sale, err := s.CloseTrade(ctx, tr.ID, 1900)
	require.NoError(t, err)
	assert.Equal(t, 1.0, sale.UnitsSold)
	assert.InDelta(t, -100.0, sale.ProfitLoss, 1e-9)

	got, err := s.Trade(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.StatusClosed, got.Status)

	_, err = s.CloseTrade(ctx, tr.ID, 1900)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = s.CloseTrade(ctx, tr.ID, 0)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestServiceAllSales(t *testing.T) {
	t.Parallel()

	s := newTestService(t)
	ctx := context.Background()

	a, err := s.AddTrade(ctx, NewTrade{Market: "AAPL", EntryPrice: 100, Units: 10})
	require.NoError(t, err)
	b, err := s.AddTrade(ctx, NewTrade{Market: "MSFT", EntryPrice: 200, Units: 5})
	require.NoError(t, err)

	_, err = s.SellUnits(ctx, a.ID, 2, 110)
	require.NoError(t, err)
	_, err = s.SellUnits(ctx, b.ID, 1, 190)
	require.NoError(t, err)

	sales, err := s.AllSales(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, a.ID, sales[0].TradeID)
	assert.Equal(t, b.ID, sales[1].TradeID)
}
