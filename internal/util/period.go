package util

import "time"

// DateRange is an inclusive [From, To] interval of calendar dates.
// All dates are midnight UTC; date arithmetic never crosses time zones,
// so quarter boundaries cannot drift by a day.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether d falls inside the range, boundaries included.
func (r DateRange) Contains(d time.Time) bool {
	return !d.Before(r.From) && !d.After(r.To)
}

// QuarterDates resolves the concrete start and end dates of a quarter for a
// given financial year. Start is the first day of startMonth in year; end is
// the last day of endMonth. When startMonth > endMonth the quarter spans into
// the next calendar year (e.g. Dec-Feb), so the end date lands in year+1.
func QuarterDates(year, startMonth, endMonth int) DateRange {
	start := time.Date(year, time.Month(startMonth), 1, 0, 0, 0, 0, time.UTC)

	endYear := year
	if startMonth > endMonth {
		endYear = year + 1
	}
	// Day 0 of the following month is the last day of endMonth, leap years
	// included.
	end := time.Date(endYear, time.Month(endMonth)+1, 0, 0, 0, 0, 0, time.UTC)

	return DateRange{From: start, To: end}
}

// ParseDate parses a YYYY-MM-DD calendar date at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
