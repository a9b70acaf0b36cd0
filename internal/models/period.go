package models

import (
	"fmt"

	"github.com/pkg/errors"
)

const (
	MinWeek = 14
	MaxWeek = 44

	// SlotsPerWeek is the assumed number of members working one week. It only
	// feeds the available-slots figure and is never enforced on booking.
	SlotsPerWeek = 5

	// RequiredWeeksPerYear is how many weeks each member is asked to book.
	RequiredWeeksPerYear = 6
)

type PeriodID int

const (
	PeriodSpring PeriodID = 1
	PeriodSummer PeriodID = 2
	PeriodFall   PeriodID = 3
)

type Period struct {
	ID        PeriodID
	Name      string
	StartWeek int
	EndWeek   int
}

var periods = [...]Period{
	{ID: PeriodSpring, Name: "Spring", StartWeek: 14, EndWeek: 23},
	{ID: PeriodSummer, Name: "Summer", StartWeek: 24, EndWeek: 33},
	{ID: PeriodFall, Name: "Fall", StartWeek: 34, EndWeek: 44},
}

// Periods returns the three fixed periods in calendar order.
func Periods() []Period {
	result := make([]Period, len(periods))
	copy(result, periods[:])
	return result
}

func FindPeriod(id PeriodID) (Period, bool) {
	for _, period := range periods {
		if period.ID == id {
			return period, true
		}
	}
	return Period{}, false
}

func (period Period) TotalWeeks() int {
	return period.EndWeek - period.StartWeek + 1
}

func (period Period) Contains(week int) bool {
	return week >= period.StartWeek && week <= period.EndWeek
}

func (period Period) Weeks() []int {
	weeks := make([]int, 0, period.TotalWeeks())
	for week := period.StartWeek; week <= period.EndWeek; week++ {
		weeks = append(weeks, week)
	}
	return weeks
}

func (period Period) Label() string {
	return fmt.Sprintf("%s (weeks %d-%d)", period.Name, period.StartWeek, period.EndWeek)
}

func ValidateWeek(week int) error {
	if week < MinWeek || week > MaxWeek {
		return errors.Wrapf(ErrInvalidWeek, "week %d is outside %d-%d", week, MinWeek, MaxWeek)
	}
	return nil
}

// DerivePeriod maps a bookable week number onto its period.
func DerivePeriod(week int) (PeriodID, error) {
	for _, period := range periods {
		if period.Contains(week) {
			return period.ID, nil
		}
	}
	return 0, errors.Wrapf(ErrInvalidWeek, "week %d is not in any period", week)
}

func PeriodName(id PeriodID) string {
	if period, ok := FindPeriod(id); ok {
		return period.Name
	}
	return "Unknown"
}
