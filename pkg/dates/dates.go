// Package dates normalizes the date formats returned by external identity
// registries into a single canonical YYYY-MM-DD representation.
package dates

import (
	"strings"
	"time"
)

// Canonical is the wire format every normalized date is rendered in.
const Canonical = "2006-01-02"

// genericLayouts are attempted, in order, when the input does not match one of
// the known registry shapes.
var genericLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02 Jan 2006",
	"Jan 2, 2006",
	"2006/01/02",
}

// Normalize converts a registry-supplied date string to YYYY-MM-DD.
//
// Registries disagree on formats: some return DD-MM-YYYY, some DD/MM/YYYY,
// some are already ISO-8601. Detection is by the length of the first digit
// group: a two-digit first group means day-first ordering. Input that is
// already canonical passes through unchanged.
//
// The second return value reports whether the input was understood. When it is
// false the input is returned unchanged; callers should log this as a
// data-quality signal rather than fail the verification.
func Normalize(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return raw, false
	}

	if sep := detectSeparator(s); sep != 0 {
		parts := strings.Split(s, string(sep))
		if len(parts) == 3 {
			switch {
			case len(parts[0]) == 2 && len(parts[2]) == 4:
				// Day-first: DD-MM-YYYY or DD/MM/YYYY.
				if t, err := time.Parse("02-01-2006", parts[0]+"-"+parts[1]+"-"+parts[2]); err == nil {
					return t.Format(Canonical), true
				}
			case len(parts[0]) == 4 && sep == '-':
				if t, err := time.Parse(Canonical, s); err == nil {
					return t.Format(Canonical), true
				}
			}
		}
	}

	for _, layout := range genericLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(Canonical), true
		}
	}

	return raw, false
}

// detectSeparator returns '-' or '/' when the string uses exactly one of them,
// and 0 otherwise.
func detectSeparator(s string) byte {
	switch {
	case strings.Contains(s, "-") && !strings.Contains(s, "/"):
		return '-'
	case strings.Contains(s, "/") && !strings.Contains(s, "-"):
		return '/'
	default:
		return 0
	}
}
