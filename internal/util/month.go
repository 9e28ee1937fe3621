package util

import (
	"fmt"
	"time"
)

// MonthKey identifies a calendar month as "YYYY-MM". The zero-padded string
// form sorts lexicographically in chronological order.
type MonthKey string

// NewMonthKey builds a MonthKey from a year and a 1-12 month.
func NewMonthKey(year, month int) MonthKey {
	return MonthKey(fmt.Sprintf("%04d-%02d", year, month))
}

// MonthKeyFromDate builds a MonthKey for the month containing t.
func MonthKeyFromDate(t time.Time) MonthKey {
	return NewMonthKey(t.Year(), int(t.Month()))
}

// ParseMonthKey validates and parses a "YYYY-MM" string.
func ParseMonthKey(s string) (MonthKey, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return "", fmt.Errorf("invalid month %q: expected YYYY-MM", s)
	}
	return MonthKeyFromDate(t), nil
}

// YearMonth returns the year and 1-12 month of the key.
func (m MonthKey) YearMonth() (int, int) {
	t, err := time.Parse("2006-01", string(m))
	if err != nil {
		return 0, 0
	}
	return t.Year(), int(t.Month())
}

// Previous returns the key for the preceding month.
func (m MonthKey) Previous() MonthKey {
	year, month := m.YearMonth()
	if month == 1 {
		return NewMonthKey(year-1, 12)
	}
	return NewMonthKey(year, month-1)
}

// Next returns the key for the following month.
func (m MonthKey) Next() MonthKey {
	year, month := m.YearMonth()
	if month == 12 {
		return NewMonthKey(year+1, 1)
	}
	return NewMonthKey(year, month+1)
}

// Before reports whether m is chronologically earlier than other.
func (m MonthKey) Before(other MonthKey) bool {
	return string(m) < string(other)
}

func (m MonthKey) String() string { return string(m) }

// FirstDay returns midnight UTC on the first day of the month.
func (m MonthKey) FirstDay() time.Time {
	year, month := m.YearMonth()
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

// LastDay returns midnight UTC on the last day of the month.
func (m MonthKey) LastDay() time.Time {
	return m.FirstDay().AddDate(0, 1, -1)
}

// MonthsBetween lists every key from 'from' through 'to' inclusive.
// Returns nil when 'to' precedes 'from'.
func MonthsBetween(from, to MonthKey) []MonthKey {
	if to.Before(from) {
		return nil
	}
	var out []MonthKey
	for m := from; !to.Before(m); m = m.Next() {
		out = append(out, m)
	}
	return out
}
