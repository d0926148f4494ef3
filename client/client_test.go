package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rustyeddy/tradesizer/internal/web"
	"github.com/rustyeddy/tradesizer/journal"
	"github.com/rustyeddy/tradesizer/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	gin.SetMode(gin.TestMode)
	s, err := web.NewServer(journal.NewService(journal.NewMemory(), nil), web.Options{Policy: risk.DefaultPolicy()})
	require.NoError(t, err)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return New(ts.URL+"/", ts.Client())
}

func TestCalculate(t *testing.T) {
	c := newTestClient(t)

	res, err := c.Calculate(context.Background(), CalculateRequest{
		CapitalTotal: 10000, RiskPercentage: 1, EntryPrice: 100, ExitPrice: 90,
	})
	require.NoError(t, err)
	assert.InDelta(t, 100.0, res.CapitalAtRisk, 1e-9)
	assert.InDelta(t, 10.0, res.PositionSize, 1e-9)
	assert.Empty(t, res.Violations)
}

func TestCalculateWithMap(t *testing.T) {
	c := newTestClient(t)

	res, err := c.Calculate(context.Background(), map[string]any{
		"capitalTotal": 10000.0, "riskPercentage": 2.0, "entryPrice": 100.0, "exitPrice": 90.0,
	})
	require.NoError(t, err)
	assert.InDelta(t, 2000.0, res.TotalPositionValue, 1e-9)
}

func TestAPIError(t *testing.T) {
	c := newTestClient(t)

	_, err := c.Calculate(context.Background(), CalculateRequest{CapitalTotal: 1, RiskPercentage: 1, EntryPrice: 1, ExitPrice: 2})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, apiErr.Message, "exitPrice must be lower than entryPrice")

	_, err = c.SalesHistory(context.Background(), "missing")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "404: trade not found", apiErr.Error())
}

func TestJournalRoundTrip(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	trades, err := c.AddTrade(ctx, AddTradeRequest{Market: "AAPL", EntryPrice: 150, Units: 10, TradeType: "buy"})
	require.NoError(t, err)
	require.Len(t, trades, 1)
	id := trades[0].ID

	res, err := c.SellUnits(ctx, id, 4, 160)
	require.NoError(t, err)
	assert.Equal(t, 6.0, res.Trades[0].RemainingUnits)
	require.Len(t, res.SalesHistory, 1)

	res, err = c.CloseTrade(ctx, id, 140)
	require.NoError(t, err)
	assert.Len(t, res.SalesHistory, 2)

	hist, err := c.SalesHistory(ctx, id)
	require.NoError(t, err)
	assert.Len(t, hist, 2)

	all, err := c.Trades(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	sum, err := c.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.ClosedTrades)
	assert.InDelta(t, 40.0-60.0, sum.TotalProfitLoss, 1e-9)

	page, err := c.SummaryHTML(ctx)
	require.NoError(t, err)
	assert.Contains(t, page, `id="summary-content"`)
}

func TestNonJSONError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := New(ts.URL, nil).Trades(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}
