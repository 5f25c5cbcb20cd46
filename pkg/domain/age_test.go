package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMeetsAgeRequirement(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		birth time.Time
		want  bool
	}{
		{"clearly adult", time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"eighteenth birthday today", time.Date(2008, 6, 15, 0, 0, 0, 0, time.UTC), true},
		{"day before eighteenth birthday", time.Date(2008, 6, 16, 0, 0, 0, 0, time.UTC), false},
		{"clearly minor", time.Date(2015, 3, 3, 0, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MeetsAgeRequirement(tt.birth, now))
		})
	}
}

func TestMeetsAgeRequirementLeapDayBirth(t *testing.T) {
	birth := time.Date(2008, 2, 29, 0, 0, 0, 0, time.UTC)

	// AddDate lands on March 1st in non-leap years.
	assert.False(t, MeetsAgeRequirement(birth, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)))
	assert.True(t, MeetsAgeRequirement(birth, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
}
