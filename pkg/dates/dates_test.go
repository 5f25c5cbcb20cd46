package dates

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"day first dashes", "17-04-2002", "2002-04-17", true},
		{"day first slashes", "17/04/2002", "2002-04-17", true},
		{"already canonical", "2002-04-17", "2002-04-17", true},
		{"iso timestamp", "2002-04-17T00:00:00Z", "2002-04-17", true},
		{"written month", "17 Apr 2002", "2002-04-17", true},
		{"year first slashes", "2002/04/17", "2002-04-17", true},
		{"unparseable returned unchanged", "seventeenth of april", "seventeenth of april", false},
		{"empty", "", "", false},
		{"impossible day", "45-04-2002", "45-04-2002", false},
		{"whitespace trimmed", "  17-04-2002 ", "2002-04-17", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	first, ok := Normalize("17-04-2002")
	assert.True(t, ok)

	second, ok := Normalize(first)
	assert.True(t, ok)
	assert.Equal(t, first, second)
}
