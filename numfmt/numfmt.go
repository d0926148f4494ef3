// Package numfmt converts between locale display strings and canonical numbers.
//
// A display string uses a single decimal separator and groups the integer part
// with a thousands separator, e.g. "1.234,56" under es-ES or "1,234.56" under
// en-US. The input domain is non-negative: a minus sign is stripped by Format.
package numfmt

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Policy describes the separators and symbols of one locale.
type Policy struct {
	Name      string
	Thousands rune
	Decimal   rune

	// Symbols for USD; other currency codes are printed as-is.
	DollarSymbol string
	SymbolAfter  bool
	PercentSpace bool
}

var (
	// ES is the Spanish (Spain) convention: 1.234,56
	ES = Policy{
		Name:         "es-ES",
		Thousands:    '.',
		Decimal:      ',',
		DollarSymbol: "US$",
		SymbolAfter:  true,
		PercentSpace: true,
	}

	// US is the English (United States) convention: 1,234.56
	US = Policy{
		Name:         "en-US",
		Thousands:    ',',
		Decimal:      '.',
		DollarSymbol: "$",
	}
)

// Lookup returns the policy registered for a locale tag.
func Lookup(locale string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(locale)) {
	case "es-es", "es", "es_es":
		return ES, nil
	case "en-us", "en", "en_us":
		return US, nil
	default:
		return Policy{}, fmt.Errorf("unsupported locale %q", locale)
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// Allowed reports whether r may be typed into a numeric field.
func (p Policy) Allowed(r rune) bool {
	return isDigit(r) || r == p.Decimal
}

// Sanitize drops every rune that cannot be typed into a numeric field.
func (p Policy) Sanitize(text string) string {
	var b strings.Builder
	for _, r := range text {
		if p.Allowed(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Format normalises a raw or partially typed value into a display string.
//
// Format(Format(s)) == Format(s) for every s. Text without digits or a decimal
// separator formats to "" so an empty field stays empty.
func (p Policy) Format(raw string) string {
	cleaned := make([]rune, 0, len(raw))
	last := -1
	for _, r := range raw {
		switch {
		case isDigit(r):
			cleaned = append(cleaned, r)
		case r == p.Decimal:
			last = len(cleaned)
			cleaned = append(cleaned, r)
		}
	}
	if len(cleaned) == 0 {
		return ""
	}

	intPart := cleaned
	var frac []rune
	if last >= 0 {
		intPart = cleaned[:last]
		frac = cleaned[last+1:]
	}

	digits := make([]rune, 0, len(intPart))
	for _, r := range intPart {
		if isDigit(r) {
			digits = append(digits, r)
		}
	}
	integer := strings.TrimLeft(string(digits), "0")
	if integer == "" {
		integer = "0"
	}

	out := p.group(integer)
	if last >= 0 {
		out += string(p.Decimal) + string(frac)
	}
	return out
}

// group inserts the thousands separator every three digits from the right.
func (p Policy) group(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteRune(p.Thousands)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// ParseDecimal converts a display string to a decimal. ok is false for empty
// or malformed input, which callers must keep distinct from zero.
func (p Policy) ParseDecimal(display string) (d decimal.Decimal, ok bool) {
	s := strings.TrimSpace(display)
	s = strings.ReplaceAll(s, string(p.Thousands), "")
	s = strings.ReplaceAll(s, string(p.Decimal), ".")

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	s = strings.TrimSuffix(s, ".")
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	if s == "" || strings.Count(s, ".") > 1 {
		return decimal.Zero, false
	}
	for _, r := range s {
		if !isDigit(r) && r != '.' {
			return decimal.Zero, false
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if neg {
		d = d.Neg()
	}
	return d, true
}

// Unformat converts a display string to a canonical float.
func (p Policy) Unformat(display string) (float64, bool) {
	d, ok := p.ParseDecimal(display)
	if !ok {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}

// FitsDecimals reports whether the value carries at most n fractional digits.
// Trailing zeros do not count: "1,50" fits one decimal.
func (p Policy) FitsDecimals(display string, n int) bool {
	d, ok := p.ParseDecimal(display)
	if !ok {
		return false
	}
	return d.Equal(d.Truncate(int32(n)))
}

// FromFloat renders a canonical number as a display string with at most
// maxDecimals fractional digits.
func (p Policy) FromFloat(x float64, maxDecimals int) string {
	s := decimal.NewFromFloat(x).Round(int32(maxDecimals)).String()
	return p.Format(strings.Replace(s, ".", string(p.Decimal), 1))
}

// CaretPosition maps a caret offset in oldDisplay to the matching offset in
// newDisplay, shifting it by the thousands separators inserted or removed in
// front of it, and past the zero Format puts before a bare decimal part.
// The result is always within [0, len(newDisplay)] in runes.
func (p Policy) CaretPosition(oldDisplay, newDisplay string, oldCaret int) int {
	old := []rune(oldDisplay)
	cur := []rune(newDisplay)
	if oldCaret < 0 {
		oldCaret = 0
	}
	if oldCaret > len(old) {
		oldCaret = len(old)
	}

	seps := 0
	for _, r := range old[:oldCaret] {
		if r == p.Thousands {
			seps++
		}
	}
	want := oldCaret - seps
	if p.gainedLeadingZero(old, cur) {
		want++
	}

	pos, seen := 0, 0
	for pos < len(cur) && seen < want {
		if cur[pos] != p.Thousands {
			seen++
		}
		pos++
	}
	return pos
}

// gainedLeadingZero reports whether cur is old with a "0" prepended to its
// decimal separator, as in "," becoming "0,".
func (p Policy) gainedLeadingZero(old, cur []rune) bool {
	return len(old) > 0 && old[0] == p.Decimal &&
		len(cur) > 1 && cur[0] == '0' && cur[1] == p.Decimal
}
