package domain

import (
	"errors"
	"time"
)

var (
	ErrQuarterNotFound     = errors.New("quarter not found in settings")
	ErrQuarterMonthInvalid = errors.New("quarter months must be between 1 and 12")
	ErrQuarterNameInvalid  = errors.New("quarter name must be one of Q1, Q2, Q3, Q4")
)

// QuarterNames are the four fixed reporting quarters of a financial year.
var QuarterNames = []string{"Q1", "Q2", "Q3", "Q4"}

// QuarterSetting maps a quarter label to its configurable month boundaries.
// An end month numerically below the start month means the quarter spans
// into the next calendar year.
type QuarterSetting struct {
	Quarter    string    `json:"quarter"`
	StartMonth int       `json:"startMonth"`
	EndMonth   int       `json:"endMonth"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (q *QuarterSetting) Validate() error {
	valid := false
	for _, name := range QuarterNames {
		if q.Quarter == name {
			valid = true
			break
		}
	}
	if !valid {
		return ErrQuarterNameInvalid
	}
	if q.StartMonth < 1 || q.StartMonth > 12 || q.EndMonth < 1 || q.EndMonth > 12 {
		return ErrQuarterMonthInvalid
	}
	return nil
}

// Months lists the calendar months the quarter covers, in order, wrapping
// across the year boundary when the quarter spans years.
func (q *QuarterSetting) Months() []int {
	var out []int
	m := q.StartMonth
	for {
		out = append(out, m)
		if m == q.EndMonth {
			return out
		}
		m++
		if m > 12 {
			m = 1
		}
		// An out-of-range EndMonth would never terminate the walk.
		if len(out) > 12 {
			return out
		}
	}
}

type QuarterRepository interface {
	GetAll() ([]*QuarterSetting, error)
	GetByName(name string) (*QuarterSetting, error)
	Update(setting *QuarterSetting) (*QuarterSetting, error)
}
