package domain

import (
	"fmt"
	"time"
)

// Period identifies one analysis month.
type Period struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// ParsePeriod parses a user-supplied "MM/YYYY" period string.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("01/2006", s)
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q, expected MM/YYYY", ErrInvalidPeriod, s)
	}
	return Period{Year: t.Year(), Month: t.Month()}, nil
}

// Start returns the first day of the month.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last day of the month.
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, -1)
}

// Days returns the number of calendar days in the month.
func (p Period) Days() int {
	return p.End().Day()
}

func (p Period) String() string {
	return fmt.Sprintf("%02d/%04d", p.Month, p.Year)
}
