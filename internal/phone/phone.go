// Package phone normalizes US phone numbers typed into the lead forms.
package phone

import "strings"

// Digits strips everything but ASCII digits.
func Digits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Format renders raw keystrokes as (XXX) XXX-XXXX, progressively. Digits past the
// tenth are dropped.
func Format(raw string) string {
	d := Digits(raw)
	switch {
	case len(d) <= 3:
		return d
	case len(d) <= 6:
		return "(" + d[:3] + ") " + d[3:]
	}
	end := len(d)
	if end > 10 {
		end = 10
	}
	return "(" + d[:3] + ") " + d[3:6] + "-" + d[6:end]
}

// Valid reports whether raw carries exactly ten digits.
func Valid(raw string) bool {
	return len(Digits(raw)) == 10
}
