package domain

import (
	"fmt"
	"time"
)

const dateIDLayout = "20060102"

// DateID converts a time to the warehouse's integer date key (YYYYMMDD).
func DateID(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// ParseDateID converts an integer date key back to a UTC midnight time.
func ParseDateID(id int) (time.Time, error) {
	t, err := time.Parse(dateIDLayout, fmt.Sprintf("%08d", id))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date id %d: %w", id, err)
	}

	return t, nil
}

// ShiftDateID moves a date key by the given number of calendar days.
func ShiftDateID(id int, days int) (int, error) {
	t, err := ParseDateID(id)
	if err != nil {
		return 0, err
	}

	return DateID(t.AddDate(0, 0, days)), nil
}
