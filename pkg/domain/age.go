package domain

import "time"

// MinProfileAge is the minimum age for an individual wallet profile.
const MinProfileAge = 18

// MeetsAgeRequirement reports whether a person born on birthDate is at least
// MinProfileAge years old at the reference time. Calendar arithmetic (AddDate)
// handles birthday boundaries correctly, including leap-day births.
func MeetsAgeRequirement(birthDate, now time.Time) bool {
	adultAt := birthDate.UTC().AddDate(MinProfileAge, 0, 0)
	return !now.UTC().Before(adultAt)
}
