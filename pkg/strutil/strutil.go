// Package strutil holds small string helpers shared across the module.
package strutil

import (
	"strings"
	"unicode"
)

// DigitsOnly strips every non-digit rune from s.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TruncateDigits returns the digit-filtered value of s capped at max runes.
func TruncateDigits(s string, max int) string {
	digits := DigitsOnly(s)
	if len(digits) > max {
		return digits[:max]
	}
	return digits
}

// JoinNonEmpty joins the non-empty parts with single spaces. Used to assemble
// full names from the first/middle/last parts a verification channel returns.
func JoinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, " ")
}

// ToSnakeCase converts a Go identifier to snake_case for error messages.
func ToSnakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 &&
			(unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
