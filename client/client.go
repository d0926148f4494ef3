// Package client talks to the tradesizer HTTP service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rustyeddy/tradesizer/risk"
	"github.com/rustyeddy/tradesizer/trade"
)

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// CalculateRequest is the /calculate body.
type CalculateRequest struct {
	CapitalTotal   float64 `json:"capitalTotal"`
	RiskPercentage float64 `json:"riskPercentage"`
	EntryPrice     float64 `json:"entryPrice"`
	ExitPrice      float64 `json:"exitPrice"`
	BaseCurrency   string  `json:"baseCurrency,omitempty"`
}

// CalculateResult is the /calculate response.
type CalculateResult struct {
	risk.Result
	BaseCurrency string           `json:"baseCurrency,omitempty"`
	Violations   []risk.Violation `json:"violations,omitempty"`
}

// AddTradeRequest is the /add_trade body.
type AddTradeRequest struct {
	Market     string  `json:"market"`
	EntryPrice float64 `json:"entryPrice"`
	Units      float64 `json:"units"`
	TradeType  string  `json:"tradeType,omitempty"`
}

// SaleResult is returned by the sell and close endpoints.
type SaleResult struct {
	Trades       []trade.Trade `json:"trades"`
	SalesHistory []trade.Sale  `json:"salesHistory"`
}

type Client struct {
	base string
	http *http.Client
}

// New returns a client for baseURL. A nil hc uses a client with a 10s
// timeout.
func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), http: hc}
}

// Calculate posts req (a CalculateRequest or a map with the same keys).
func (c *Client) Calculate(ctx context.Context, req any) (CalculateResult, error) {
	var out CalculateResult
	err := c.do(ctx, http.MethodPost, "/calculate", req, &out)
	return out, err
}

// AddTrade posts req (an AddTradeRequest or equivalent map) and returns
// the full trade list.
func (c *Client) AddTrade(ctx context.Context, req any) ([]trade.Trade, error) {
	var out struct {
		Trades []trade.Trade `json:"trades"`
	}
	err := c.do(ctx, http.MethodPost, "/add_trade", req, &out)
	return out.Trades, err
}

// SellUnits sells units of trade id at exitPrice.
func (c *Client) SellUnits(ctx context.Context, id string, units, exitPrice float64) (SaleResult, error) {
	var out SaleResult
	body := map[string]float64{"units": units, "exitPrice": exitPrice}
	err := c.do(ctx, http.MethodPost, "/sell_units/"+url.PathEscape(id), body, &out)
	return out, err
}

// CloseTrade sells the remaining units of trade id at exitPrice.
func (c *Client) CloseTrade(ctx context.Context, id string, exitPrice float64) (SaleResult, error) {
	var out SaleResult
	body := map[string]float64{"exitPrice": exitPrice}
	err := c.do(ctx, http.MethodPost, "/close_trade/"+url.PathEscape(id), body, &out)
	return out, err
}

// SalesHistory returns the sales of trade id.
func (c *Client) SalesHistory(ctx context.Context, id string) ([]trade.Sale, error) {
	var out SaleResult
	err := c.do(ctx, http.MethodGet, "/get_sales_history/"+url.PathEscape(id), nil, &out)
	return out.SalesHistory, err
}

// Trades returns every trade.
func (c *Client) Trades(ctx context.Context) ([]trade.Trade, error) {
	var out struct {
		Trades []trade.Trade `json:"trades"`
	}
	err := c.do(ctx, http.MethodGet, "/trades", nil, &out)
	return out.Trades, err
}

// Summary returns the journal summary as data.
func (c *Client) Summary(ctx context.Context) (trade.Summary, error) {
	var out trade.Summary
	err := c.do(ctx, http.MethodGet, "/api/summary", nil, &out)
	return out, err
}

// SummaryHTML returns the raw /summary page.
func (c *Client) SummaryHTML(ctx context.Context) (string, error) {
	resp, err := c.send(ctx, http.MethodGet, "/summary", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read summary: %w", err)
	}
	return string(b), nil
}

func (c *Client) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", path, err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	msg := http.StatusText(resp.StatusCode)
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err == nil && body.Error != "" {
		msg = body.Error
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
