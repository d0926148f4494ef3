// Package submit validates a form, serialises it to canonical values and
// sends it, allowing one request per form at a time.
package submit

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/rustyeddy/tradesizer/client"
	"github.com/rustyeddy/tradesizer/form"
	"github.com/rustyeddy/tradesizer/l10n"
	"github.com/rustyeddy/tradesizer/numfmt"
)

var (
	// ErrBusy is returned when a submit of the same form is in flight.
	ErrBusy = errors.New("submit already in progress")

	// ErrInvalid is returned when the form fails validation. Nothing is sent.
	ErrInvalid = errors.New("form has invalid fields")
)

// Banner texts in English. The controller reports them translated into
// the validator's locale.
const (
	// GenericMessage is reported when a failure carries no server message.
	GenericMessage = "Request failed, please try again"

	// InvalidMessage is reported when validation blocks a submit.
	InvalidMessage = "Please correct the highlighted fields"
)

// Payload is the canonical form body keyed by field name: numbers as
// float64, text with its transform applied. Empty fields are omitted.
type Payload map[string]any

// Float returns the number stored at key, or 0.
func (p Payload) Float(key string) float64 {
	f, _ := p[key].(float64)
	return f
}

// String returns the text stored at key, or "".
func (p Payload) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// BuildPayload serialises f under policy pol.
func BuildPayload(f *form.Form, pol numfmt.Policy) Payload {
	p := Payload{}
	for _, fld := range f.Fields() {
		v := strings.TrimSpace(fld.Value)
		if v == "" {
			continue
		}
		if fld.Kind == form.Number {
			if x, ok := pol.Unformat(v); ok {
				p[fld.Key()] = x
			}
			continue
		}
		p[fld.Key()] = fld.Transform.Apply(v)
	}
	return p
}

// Sender performs the request for a payload.
type Sender[T any] func(ctx context.Context, p Payload) (T, error)

// Controller submits one form.
type Controller[T any] struct {
	form      *form.Form
	validator *form.Validator
	send      Sender[T]
	busy      atomic.Bool

	// OnSuccess receives the response. The form is reset afterwards unless
	// KeepOnSuccess is set.
	OnSuccess func(T)
	// OnError receives the banner message for validation and request failures.
	OnError func(msg string)
	// OnBusy is called with true before the request and false after it.
	OnBusy func(busy bool)

	KeepOnSuccess bool
}

// New returns a controller for f.
func New[T any](f *form.Form, v *form.Validator, send Sender[T]) *Controller[T] {
	return &Controller[T]{form: f, validator: v, send: send}
}

// Busy reports whether a request is in flight.
func (c *Controller[T]) Busy() bool {
	return c.busy.Load()
}

// Submit runs validate, serialise, send. A call made while another is in
// flight returns ErrBusy and does nothing else.
func (c *Controller[T]) Submit(ctx context.Context) (T, error) {
	var zero T
	if !c.busy.CompareAndSwap(false, true) {
		return zero, ErrBusy
	}
	defer c.busy.Store(false)

	if !c.validator.Validate(c.form) {
		c.report(l10n.Sprintf(c.validator.Policy, InvalidMessage))
		return zero, ErrInvalid
	}

	if c.OnBusy != nil {
		c.OnBusy(true)
		defer c.OnBusy(false)
	}

	res, err := c.send(ctx, BuildPayload(c.form, c.validator.Policy))
	if err != nil {
		c.report(Message(c.validator.Policy, err))
		return zero, err
	}

	if c.OnSuccess != nil {
		c.OnSuccess(res)
	}
	if !c.KeepOnSuccess {
		c.form.Reset()
	}
	return res, nil
}

func (c *Controller[T]) report(msg string) {
	if c.OnError != nil {
		c.OnError(msg)
	}
}

// Message is the banner text for err: the server's message when there is
// one, GenericMessage in the locale of pol otherwise.
func Message(pol numfmt.Policy, err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return l10n.Sprintf(pol, GenericMessage)
}
