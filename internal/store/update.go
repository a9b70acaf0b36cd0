package store

import (
	"github.com/pkg/errors"
	"github.com/terraincognita07/gardenweeks/internal/models"
)

// ApplyBookingUpdate returns booking with the update applied and its period
// re-derived. Uniqueness is left to the caller, which knows the other rows.
func ApplyBookingUpdate(booking models.Booking, update BookingUpdate) (models.Booking, error) {
	if update.WeekNumber != nil {
		if err := models.ValidateWeek(*update.WeekNumber); err != nil {
			return models.Booking{}, err
		}
		booking.WeekNumber = *update.WeekNumber
	}
	if update.Year != nil {
		booking.Year = *update.Year
	}

	period, err := models.DerivePeriod(booking.WeekNumber)
	if err != nil {
		return models.Booking{}, err
	}
	booking.Period = period
	return booking, nil
}

// DuplicateBookingError is returned by every store when the (user, week, year)
// key is already taken.
func DuplicateBookingError(weekNumber int, year int) error {
	return errors.Wrapf(models.ErrDuplicateBooking, "user already has a booking for week %d in %d", weekNumber, year)
}
