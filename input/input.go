// Package input binds a form field to the number formatter and reacts to
// keystrokes, edits, pastes, blur and step buttons.
package input

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/tradesizer/form"
	"github.com/rustyeddy/tradesizer/numfmt"
)

// Listener is called after every input event on the bound field.
type Listener func(fld *form.Field)

// Controller drives one field.
type Controller struct {
	form      *form.Form
	field     *form.Field
	policy    numfmt.Policy
	validator *form.Validator
	listeners []Listener
}

// Bind attaches a controller to the field id of f.
func Bind(f *form.Form, id string, v *form.Validator) (*Controller, error) {
	fld := f.Field(id)
	if fld == nil {
		return nil, fmt.Errorf("form %s has no field %q", f.Name, id)
	}
	return &Controller{form: f, field: fld, policy: v.Policy, validator: v}, nil
}

// BindAll attaches a controller to every field of f, keyed by field id.
func BindAll(f *form.Form, v *form.Validator) map[string]*Controller {
	out := make(map[string]*Controller, len(f.Fields()))
	for _, fld := range f.Fields() {
		out[fld.ID] = &Controller{form: f, field: fld, policy: v.Policy, validator: v}
	}
	return out
}

// Field returns the bound field.
func (c *Controller) Field() *form.Field {
	return c.field
}

// OnInput registers a listener for input events.
func (c *Controller) OnInput(l Listener) {
	c.listeners = append(c.listeners, l)
}

func (c *Controller) allowed(r rune) bool {
	switch c.field.Kind {
	case form.Number:
		return c.policy.Allowed(r)
	case form.Text:
		// text patterns are character classes, so one rune must match alone
		if p := c.field.Rule.Pattern; p != nil {
			return p.MatchString(string(r))
		}
		return true
	default:
		return true
	}
}

// KeyPress reports whether the typed rune should be inserted. A second
// decimal separator is refused here because once merged it can no longer be
// told apart from a thousands separator.
func (c *Controller) KeyPress(r rune) bool {
	if !c.allowed(r) {
		return false
	}
	if c.field.Kind == form.Number && r == c.policy.Decimal {
		return !strings.ContainsRune(c.field.Value, c.policy.Decimal)
	}
	return true
}

// Input handles a changed value with the caret at the given rune offset.
func (c *Controller) Input(value string, caret int) {
	switch {
	case c.field.Kind == form.Number:
		formatted := c.policy.Format(value)
		if formatted != value {
			caret = c.policy.CaretPosition(value, formatted, caret)
			value = formatted
		}
	case c.field.Transform == form.Upper:
		value = strings.ToUpper(value)
	}

	if n := len([]rune(value)); caret > n {
		caret = n
	}
	if caret < 0 {
		caret = 0
	}
	c.field.Value = value
	c.field.Caret = caret

	c.validator.ValidateField(c.form, c.field.ID)
	for _, l := range c.listeners {
		l(c.field)
	}
}

func (c *Controller) sanitize(text string) string {
	var b strings.Builder
	for _, r := range text {
		if c.allowed(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func clamp(i, lo, hi int) int {
	if i < lo {
		return lo
	}
	if i > hi {
		return hi
	}
	return i
}

// Paste replaces the selection [start, end) with the clipboard text after
// dropping characters the field does not accept.
func (c *Controller) Paste(text string, start, end int) {
	old := []rune(c.field.Value)
	start = clamp(start, 0, len(old))
	end = clamp(end, start, len(old))

	clean := c.sanitize(text)
	if c.field.Kind == form.Number {
		rest := string(old[:start]) + string(old[end:])
		if strings.ContainsRune(rest, c.policy.Decimal) {
			clean = strings.ReplaceAll(clean, string(c.policy.Decimal), "")
		} else if i := strings.IndexRune(clean, c.policy.Decimal); i >= 0 {
			// keep only the first separator of the pasted text
			head, tail := clean[:i+1], clean[i+1:]
			clean = head + strings.ReplaceAll(tail, string(c.policy.Decimal), "")
		}
	}

	value := string(old[:start]) + clean + string(old[end:])
	c.Input(value, start+len([]rune(clean)))
}

// Blur runs the final validation for the field and reports whether it passed.
func (c *Controller) Blur() bool {
	if c.field.Kind == form.Number {
		if v := strings.TrimSuffix(c.field.Value, string(c.policy.Decimal)); v != c.field.Value {
			c.field.Value = v
			c.field.Caret = len([]rune(v))
		}
	}
	return c.validator.ValidateField(c.form, c.field.ID)
}

// Increment adds the field's step, clamped to its maximum.
func (c *Controller) Increment() {
	c.step(1)
}

// Decrement subtracts the field's step, clamped to its minimum.
func (c *Controller) Decrement() {
	c.step(-1)
}

func (c *Controller) step(dir float64) {
	if c.field.Kind != form.Number {
		return
	}
	r := c.field.Rule
	step := r.Step
	if step <= 0 {
		step = 1
	}

	x, ok := c.policy.Unformat(c.field.Value)
	if !ok {
		x = 0
	}
	x += dir * step
	if r.Max != nil && x > *r.Max {
		x = *r.Max
	}
	if r.Min != nil && x < *r.Min {
		x = *r.Min
	}
	if x < 0 {
		x = 0
	}

	decimals := r.Decimals
	if decimals < 0 {
		decimals = numfmt.UnitDecimals
	}
	value := c.policy.FromFloat(x, decimals)
	c.Input(value, len([]rune(value)))
}
