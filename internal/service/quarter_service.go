package service

import (
	"fmt"

	"github.com/sanchaya/society-backend/internal/domain"
	"github.com/sanchaya/society-backend/internal/util"
)

// QuarterService manages the configurable quarter boundaries of the
// financial year.
type QuarterService struct {
	quarterRepo domain.QuarterRepository
}

// NewQuarterService creates a new QuarterService
func NewQuarterService(quarterRepo domain.QuarterRepository) *QuarterService {
	return &QuarterService{quarterRepo: quarterRepo}
}

// GetSettings returns all four quarter settings.
func (s *QuarterService) GetSettings() ([]*domain.QuarterSetting, error) {
	return s.quarterRepo.GetAll()
}

// QuarterDates resolves the concrete start and end dates of a named quarter
// for a financial year.
func (s *QuarterService) QuarterDates(year int, quarter string) (util.DateRange, error) {
	setting, err := s.quarterRepo.GetByName(quarter)
	if err != nil {
		return util.DateRange{}, err
	}
	return util.QuarterDates(year, setting.StartMonth, setting.EndMonth), nil
}

// UpdateSetting changes one quarter's boundaries. The update is rejected
// unless the four quarters together cover each of the 12 months exactly
// once; overlapping or gapped configurations would make period reports
// double-count or drop data.
func (s *QuarterService) UpdateSetting(setting *domain.QuarterSetting) (*domain.QuarterSetting, error) {
	if err := setting.Validate(); err != nil {
		return nil, err
	}

	current, err := s.quarterRepo.GetAll()
	if err != nil {
		return nil, err
	}

	proposed := make([]*domain.QuarterSetting, 0, len(current))
	for _, q := range current {
		if q.Quarter == setting.Quarter {
			proposed = append(proposed, setting)
		} else {
			proposed = append(proposed, q)
		}
	}

	if err := validateYearCoverage(proposed); err != nil {
		return nil, err
	}

	return s.quarterRepo.Update(setting)
}

// validateYearCoverage checks that the quarters partition the 12 months.
func validateYearCoverage(settings []*domain.QuarterSetting) error {
	counts := make(map[int]int)
	for _, q := range settings {
		for _, m := range q.Months() {
			counts[m]++
		}
	}

	var overlapping, missing []int
	for m := 1; m <= 12; m++ {
		switch {
		case counts[m] == 0:
			missing = append(missing, m)
		case counts[m] > 1:
			overlapping = append(overlapping, m)
		}
	}
	if len(overlapping) > 0 {
		return fmt.Errorf("%w: months %v are covered by more than one quarter", domain.ErrInvalidInput, overlapping)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: months %v are not covered by any quarter", domain.ErrInvalidInput, missing)
	}
	return nil
}
