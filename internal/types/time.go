package types

import (
	"time"
	_ "time/tzdata"
)

// LoadLocation resolves a configured timezone, falling back to UTC
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LaterOf returns the later of a and b, treating nil as absent
func LaterOf(a time.Time, b *time.Time) time.Time {
	if b != nil && b.After(a) {
		return *b
	}
	return a
}
