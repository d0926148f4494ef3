package form

import (
	"strings"

	"github.com/rustyeddy/tradesizer/l10n"
	"github.com/rustyeddy/tradesizer/numfmt"
)

// maxMessageDecimals bounds the digits of numbers quoted in messages.
const maxMessageDecimals = 8

// CrossRule checks a constraint that spans fields. Check returns a message
// when the constraint fails; Field is the field marked invalid.
type CrossRule struct {
	Field string
	Check func(f *Form, p numfmt.Policy) string
}

// Validator applies field rules and cross-field rules to a form.
type Validator struct {
	Policy numfmt.Policy
	Cross  []CrossRule
}

// NewValidator returns a Validator using the given number policy.
func NewValidator(p numfmt.Policy, cross ...CrossRule) *Validator {
	return &Validator{Policy: p, Cross: cross}
}

func (v *Validator) check(fld *Field) (msg string, skip bool) {
	value := strings.TrimSpace(fld.Value)
	r := fld.Rule

	if value == "" {
		if r.Required {
			return l10n.Sprintf(v.Policy, "is required"), false
		}
		return "", true
	}

	switch fld.Kind {
	case Number:
		x, ok := v.Policy.Unformat(value)
		if !ok {
			return l10n.Sprintf(v.Policy, "must be a number"), false
		}
		if r.Positive && x <= 0 {
			return l10n.Sprintf(v.Policy, "must be greater than zero"), false
		}
		if r.Min != nil && x < *r.Min {
			return l10n.Sprintf(v.Policy, "must be at least %s", v.Policy.FromFloat(*r.Min, maxMessageDecimals)), false
		}
		if r.Max != nil && x > *r.Max {
			return l10n.Sprintf(v.Policy, "must be at most %s", v.Policy.FromFloat(*r.Max, maxMessageDecimals)), false
		}
		if r.Decimals >= 0 && !v.Policy.FitsDecimals(value, r.Decimals) {
			return l10n.Sprintf(v.Policy, "must have at most %d decimal places", r.Decimals), false
		}
	default:
		if r.Pattern != nil && !r.Pattern.MatchString(value) {
			return l10n.Sprintf(v.Policy, "has an invalid format"), false
		}
		if len(fld.Options) > 0 && !contains(fld.Options, value) {
			return l10n.Sprintf(v.Policy, "must be one of %s", strings.Join(fld.Options, ", ")), false
		}
	}
	return "", false
}

func contains(opts []string, v string) bool {
	for _, o := range opts {
		if strings.EqualFold(o, v) {
			return true
		}
	}
	return false
}

func mark(fld *Field, msg string, skip bool) {
	switch {
	case msg != "":
		fld.State = Invalid
		fld.Err = msg
	case skip:
		fld.State = Unset
		fld.Err = ""
	default:
		fld.State = Valid
		fld.Err = ""
	}
}

// Validate checks every field, then the cross-field rules. It updates each
// field's state and the form's error list and reports whether the form is valid.
func (v *Validator) Validate(f *Form) bool {
	f.errs = nil
	for _, fld := range f.fields {
		msg, skip := v.check(fld)
		mark(fld, msg, skip)
		if msg != "" {
			f.errs = append(f.errs, FieldError{Field: fld.ID, Message: msg})
		}
	}
	for _, cr := range v.Cross {
		fld := f.Field(cr.Field)
		if fld == nil {
			continue
		}
		if msg := cr.Check(f, v.Policy); msg != "" && fld.State != Invalid {
			f.errs = append(f.errs, FieldError{Field: fld.ID, Message: msg})
			mark(fld, msg, false)
		}
	}
	return len(f.errs) == 0
}

// ValidateField re-checks a single field and the cross rules that mark it.
func (v *Validator) ValidateField(f *Form, id string) bool {
	fld := f.Field(id)
	if fld == nil {
		return false
	}
	msg, skip := v.check(fld)
	if msg == "" {
		for _, cr := range v.Cross {
			if cr.Field != id {
				continue
			}
			if m := cr.Check(f, v.Policy); m != "" {
				msg, skip = m, false
				break
			}
		}
	}
	mark(fld, msg, skip)
	return msg == ""
}

func number(f *Form, p numfmt.Policy, id string) (float64, bool) {
	return p.Unformat(f.Value(id))
}

// ExitBelowEntry requires the exit (stop) price to be strictly below the entry price.
func ExitBelowEntry(entryID, exitID string) CrossRule {
	return CrossRule{
		Field: exitID,
		Check: func(f *Form, p numfmt.Policy) string {
			entry, ok1 := number(f, p, entryID)
			exit, ok2 := number(f, p, exitID)
			if !ok1 || !ok2 {
				return ""
			}
			if exit >= entry {
				return l10n.Sprintf(p, "must be lower than the entry price")
			}
			return ""
		},
	}
}

// ExitRequiredWhenClosed requires an exit price when the status field is "Closed".
func ExitRequiredWhenClosed(statusID, exitID string) CrossRule {
	return CrossRule{
		Field: exitID,
		Check: func(f *Form, p numfmt.Policy) string {
			if !strings.EqualFold(strings.TrimSpace(f.Value(statusID)), "closed") {
				return ""
			}
			if strings.TrimSpace(f.Value(exitID)) == "" {
				return l10n.Sprintf(p, "is required when the trade is closed")
			}
			return ""
		},
	}
}

// RemainingFunc reports the remaining units of the trade a sale applies to.
type RemainingFunc func() (float64, bool)

// SaleWithinRemaining rejects a sale of more units than the trade has left.
func SaleWithinRemaining(unitsID string, remaining RemainingFunc) CrossRule {
	return CrossRule{
		Field: unitsID,
		Check: func(f *Form, p numfmt.Policy) string {
			units, ok := number(f, p, unitsID)
			if !ok {
				return ""
			}
			left, ok := remaining()
			if !ok {
				return l10n.Sprintf(p, "trade not found")
			}
			if units > left {
				return l10n.Sprintf(p, "cannot sell more than %s remaining units", p.FromFloat(left, maxMessageDecimals))
			}
			return ""
		},
	}
}
