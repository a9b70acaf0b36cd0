// Package store defines the booking store contract and its in-memory
// implementation. The store is the only component that creates, changes or
// removes users and bookings; it owns week validation, period derivation and
// the one-booking-per-user-week-year rule.
package store

import (
	"time"

	"github.com/terraincognita07/gardenweeks/internal/models"
)

type Store interface {
	CurrentYear() int

	CreateUser(username string, passwordHash string) (models.User, error)
	GetUser(id string) (models.User, error)
	GetUserByUsername(username string) (models.User, error)
	GetAllUsers() ([]models.User, error)
	SetAdmin(id string, isAdmin bool) error
	SetPasswordHash(id string, passwordHash string) error

	CreateBooking(userID string, weekNumber int, year *int) (models.Booking, error)
	UpdateBooking(id string, update BookingUpdate) (models.Booking, error)
	DeleteBooking(id string) (bool, error)
	DeleteBookingByUserAndWeek(userID string, weekNumber int, year *int) (bool, error)

	GetBooking(id string) (models.Booking, error)
	GetBookingsByUser(userID string, year *int) ([]models.Booking, error)
	GetBookingsByWeek(weekNumber int, year *int) ([]models.Booking, error)
	GetBookingsByPeriod(period models.PeriodID, year *int) ([]models.Booking, error)
	GetAllBookings(year *int) ([]models.Booking, error)
	GetWeekBookings(weekNumber int, year *int) ([]models.WeekBooking, error)
}

// BookingUpdate changes a booking's week and/or year. A nil field keeps the
// booking's current value.
type BookingUpdate struct {
	WeekNumber *int `json:"weekNumber"`
	Year       *int `json:"year"`
}

func (update BookingUpdate) IsEmpty() bool {
	return update.WeekNumber == nil && update.Year == nil
}

// Clock returns the current time; stores use it for CreatedAt and for the
// default booking year.
type Clock func() time.Time

func ResolveYear(year *int, currentYear int) int {
	if year == nil {
		return currentYear
	}
	return *year
}

func IntPtr(value int) *int {
	return &value
}
