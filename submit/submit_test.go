package submit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rustyeddy/tradesizer/client"
	"github.com/rustyeddy/tradesizer/form"
	"github.com/rustyeddy/tradesizer/numfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filledCalculator() *form.Form {
	f := form.CalculatorForm()
	f.Set("capitalTotal", "10.000")
	f.Set("riskPercentage", "2")
	f.Set("entryPrice", "100")
	f.Set("exitPrice", "90")
	f.Set("baseCurrency", "eur")
	return f
}

func calcValidator() *form.Validator {
	return form.CalculatorValidator(form.NewValidator(numfmt.ES))
}

func TestBuildPayload(t *testing.T) {
	t.Parallel()

	f := filledCalculator()
	f.Set("capitalTotal", "1.234.567,89")
	p := BuildPayload(f, numfmt.ES)

	assert.Equal(t, 1234567.89, p.Float("capitalTotal"))
	assert.Equal(t, 2.0, p.Float("riskPercentage"))
	assert.Equal(t, "EUR", p.String("baseCurrency"))
	assert.Len(t, p, 5)

	sale := form.SaleForm()
	sale.Set("saleTradeId", "01HX")
	sale.Set("saleUnits", "0,5")
	p = BuildPayload(sale, numfmt.ES)
	assert.Equal(t, "01HX", p.String("tradeId"))
	assert.Equal(t, 0.5, p.Float("units"))
	_, ok := p["exitPrice"]
	assert.False(t, ok, "empty fields are omitted")
}

func TestSubmitSuccessResetsForm(t *testing.T) {
	t.Parallel()

	f := filledCalculator()
	var got Payload
	var busyCalls []bool
	c := New(f, calcValidator(), func(_ context.Context, p Payload) (string, error) {
		got = p
		return "ok", nil
	})
	c.OnBusy = func(b bool) { busyCalls = append(busyCalls, b) }
	var success string
	c.OnSuccess = func(s string) { success = s }

	res, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", res)
	assert.Equal(t, "ok", success)
	assert.Equal(t, 10000.0, got.Float("capitalTotal"))
	assert.Equal(t, []bool{true, false}, busyCalls)
	assert.False(t, c.Busy())

	assert.Equal(t, "", f.Value("capitalTotal"))
	assert.Equal(t, "USD", f.Value("baseCurrency"))
}

func TestSubmitKeepOnSuccess(t *testing.T) {
	t.Parallel()

	f := filledCalculator()
	c := New(f, calcValidator(), func(context.Context, Payload) (int, error) { return 1, nil })
	c.KeepOnSuccess = true

	_, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "10.000", f.Value("capitalTotal"))
}

func TestSubmitInvalidNeverSends(t *testing.T) {
	t.Parallel()

	f := filledCalculator()
	f.Set("exitPrice", "120")

	sent := false
	c := New(f, calcValidator(), func(context.Context, Payload) (int, error) {
		sent = true
		return 0, nil
	})
	var banner string
	c.OnError = func(m string) { banner = m }

	_, err := c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrInvalid)
	assert.False(t, sent)
	assert.Equal(t, "Corrija los campos marcados", banner)
	assert.Equal(t, form.Invalid, f.Field("exitPrice").State)
	assert.False(t, c.Busy())
}

func TestSaleOverRemainingFailsBeforeNetwork(t *testing.T) {
	t.Parallel()

	f := form.SaleForm()
	f.Set("saleTradeId", "T1")
	f.Set("saleUnits", "50")
	f.Set("saleExitPrice", "10")
	v := form.SaleValidator(form.NewValidator(numfmt.US), func() (float64, bool) { return 30, true })

	calls := 0
	c := New(f, v, func(context.Context, Payload) (struct{}, error) {
		calls++
		return struct{}{}, nil
	})

	_, err := c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Equal(t, 0, calls)
	assert.Equal(t, form.Invalid, f.Field("saleUnits").State)
}

func TestSubmitErrorKeepsForm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"server message", &client.APIError{Status: 400, Message: "cannot sell"}, "cannot sell"},
		{"wrapped server message", errors.Join(errors.New("ctx"), &client.APIError{Status: 500, Message: "internal server error"}), "internal server error"},
		{"network", errors.New("dial tcp: refused"), "La solicitud ha fallado, inténtelo de nuevo"},
		{"empty server message", &client.APIError{Status: 502}, "La solicitud ha fallado, inténtelo de nuevo"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := filledCalculator()
			c := New(f, calcValidator(), func(context.Context, Payload) (int, error) { return 0, tt.err })
			var banner string
			c.OnError = func(m string) { banner = m }
			busy := 0
			c.OnBusy = func(b bool) {
				if b {
					busy++
				} else {
					busy--
				}
			}

			_, err := c.Submit(context.Background())
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.want, banner)
			assert.Equal(t, 0, busy, "busy restored exactly once")
			assert.Equal(t, "10.000", f.Value("capitalTotal"))
			assert.False(t, c.Busy())
		})
	}
}

func TestBannerFollowsLocale(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pol     numfmt.Policy
		invalid string
		generic string
	}{
		{"es", numfmt.ES, "Corrija los campos marcados", "La solicitud ha fallado, inténtelo de nuevo"},
		{"us", numfmt.US, InvalidMessage, GenericMessage},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := form.CalculatorForm()
			c := New(f, form.CalculatorValidator(form.NewValidator(tt.pol)), func(context.Context, Payload) (int, error) {
				return 0, errors.New("offline")
			})
			var banner string
			c.OnError = func(m string) { banner = m }

			_, err := c.Submit(context.Background())
			assert.ErrorIs(t, err, ErrInvalid)
			assert.Equal(t, tt.invalid, banner)

			assert.Equal(t, tt.generic, Message(tt.pol, errors.New("offline")))
		})
	}
}

func TestDoubleSubmitIsNoOp(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	var calls atomic.Int32
	c := New(filledCalculator(), calcValidator(), func(ctx context.Context, _ Payload) (int, error) {
		calls.Add(1)
		<-release
		return 1, nil
	})

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = c.Submit(context.Background())
	}()

	require.Eventually(t, c.Busy, time.Second, time.Millisecond)
	_, err := c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	wg.Wait()
	assert.NoError(t, firstErr)
	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, c.Busy())
}
