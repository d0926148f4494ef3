// Package form models the calculator and journal forms as plain data so they
// can be edited, validated and serialised without a browser.
package form

import (
	"regexp"
	"strings"
)

// Kind selects how a field's value is interpreted.
type Kind int

const (
	Text Kind = iota
	Number
	Choice
)

// Transform is applied to text values when the form is serialised.
type Transform int

const (
	Keep Transform = iota
	Upper
	Lower
)

// Apply returns s with the transform applied.
func (t Transform) Apply(s string) string {
	switch t {
	case Upper:
		return strings.ToUpper(s)
	case Lower:
		return strings.ToLower(s)
	default:
		return s
	}
}

// State is the visual validity of a field.
type State int

const (
	Unset State = iota
	Valid
	Invalid
)

func (s State) String() string {
	switch s {
	case Valid:
		return "is-valid"
	case Invalid:
		return "is-invalid"
	default:
		return ""
	}
}

// Rule holds the per-field constraints.
type Rule struct {
	Required bool
	Min      *float64
	Max      *float64
	Positive bool
	// Decimals limits the fractional digits of a number; negative means no limit.
	Decimals int
	Step     float64
	Pattern  *regexp.Regexp
}

// Field is one input of a form.
type Field struct {
	ID        string
	Name      string
	Label     string
	Kind      Kind
	Transform Transform
	Rule      Rule
	Options   []string
	Default   string

	Value string
	Caret int
	State State
	Err   string
}

// Key is the name used when the field is serialised.
func (f *Field) Key() string {
	if f.Name != "" {
		return f.Name
	}
	return f.ID
}

// FieldError reports why a field is invalid.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Form is an ordered set of fields.
type Form struct {
	Name   string
	fields []*Field
	byID   map[string]*Field
	errs   []FieldError
}

// New builds a form from its fields.
func New(name string, fields ...*Field) *Form {
	f := &Form{Name: name, byID: make(map[string]*Field, len(fields))}
	for _, fld := range fields {
		if fld.Value == "" {
			fld.Value = fld.Default
		}
		f.fields = append(f.fields, fld)
		f.byID[fld.ID] = fld
	}
	return f
}

// Field returns the field with the given id, or nil.
func (f *Form) Field(id string) *Field {
	return f.byID[id]
}

// Fields returns the fields in declaration order.
func (f *Form) Fields() []*Field {
	return f.fields
}

// Value returns the current value of a field, or "" if it does not exist.
func (f *Form) Value(id string) string {
	if fld := f.byID[id]; fld != nil {
		return fld.Value
	}
	return ""
}

// Set replaces a field value and puts the caret at its end.
func (f *Form) Set(id, value string) {
	if fld := f.byID[id]; fld != nil {
		fld.Value = value
		fld.Caret = len([]rune(value))
	}
}

// Errors returns the errors found by the last validation.
func (f *Form) Errors() []FieldError {
	return f.errs
}

// Reset restores every value to its default and clears validity state.
func (f *Form) Reset() {
	for _, fld := range f.fields {
		fld.Value = fld.Default
		fld.Caret = len([]rune(fld.Default))
		fld.State = Unset
		fld.Err = ""
	}
	f.errs = nil
}
