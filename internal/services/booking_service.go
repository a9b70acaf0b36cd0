package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/terraincognita07/gardenweeks/internal/models"
	"github.com/terraincognita07/gardenweeks/internal/store"
)

const upcomingBookingsLimit = 3

// Updated bookings may be moved at most one year back and five years ahead.
const (
	yearsBackAllowed  = 1
	yearsAheadAllowed = 5
)

type BookingRepository interface {
	CurrentYear() int
	GetUser(id string) (models.User, error)
	GetAllUsers() ([]models.User, error)

	CreateBooking(userID string, weekNumber int, year *int) (models.Booking, error)
	UpdateBooking(id string, update store.BookingUpdate) (models.Booking, error)
	DeleteBooking(id string) (bool, error)
	DeleteBookingByUserAndWeek(userID string, weekNumber int, year *int) (bool, error)

	GetBooking(id string) (models.Booking, error)
	GetBookingsByUser(userID string, year *int) ([]models.Booking, error)
	GetBookingsByPeriod(period models.PeriodID, year *int) ([]models.Booking, error)
	GetAllBookings(year *int) ([]models.Booking, error)
	GetWeekBookings(weekNumber int, year *int) ([]models.WeekBooking, error)
}

// Actor is the authenticated caller of a mutation.
type Actor struct {
	UserID  string
	IsAdmin bool
}

func (actor Actor) canManage(ownerID string) bool {
	return actor.IsAdmin || (actor.UserID != "" && actor.UserID == ownerID)
}

type UpcomingBooking struct {
	PeriodName string `json:"periodName"`
	WeekNumber int    `json:"weekNumber"`
	Date       string `json:"date"`
}

type UserWithStats struct {
	models.User
	TotalBookings    int               `json:"totalBookings"`
	UpcomingBookings []UpcomingBooking `json:"upcomingBookings"`
}

type PeriodStats struct {
	ID             models.PeriodID `json:"id"`
	Name           string          `json:"name"`
	TotalWeeks     int             `json:"totalWeeks"`
	UserBookings   []int           `json:"userBookings"`
	AvailableSlots int             `json:"availableSlots"`
}

type WeekSlot struct {
	WeekNumber    int                  `json:"weekNumber"`
	Bookings      []models.WeekBooking `json:"bookings"`
	IsUserBooking bool                 `json:"isUserBooking"`
}

type PeriodDetail struct {
	ID            models.PeriodID `json:"id"`
	Name          string          `json:"name"`
	StartWeek     int             `json:"startWeek"`
	EndWeek       int             `json:"endWeek"`
	Year          int             `json:"year"`
	Weeks         []WeekSlot      `json:"weeks"`
	TotalBookings int             `json:"totalBookings"`
	UserBookings  int             `json:"userBookings"`
	UniqueUsers   int             `json:"uniqueUsers"`
}

type BookingProgress struct {
	Booked    int  `json:"booked"`
	Required  int  `json:"required"`
	Remaining int  `json:"remaining"`
	Completed bool `json:"completed"`
	Percent   int  `json:"percent"`
}

type BookingService struct {
	bookings BookingRepository
}

func NewBookingService(bookings BookingRepository) *BookingService {
	return &BookingService{bookings: bookings}
}

func (service *BookingService) CurrentYear() int {
	return service.bookings.CurrentYear()
}

func (service *BookingService) GetUserWithStats(userID string) (UserWithStats, error) {
	user, err := service.bookings.GetUser(userID)
	if err != nil {
		return UserWithStats{}, err
	}

	bookings, err := service.bookings.GetBookingsByUser(userID, nil)
	if err != nil {
		return UserWithStats{}, err
	}

	sorted := append([]models.Booking(nil), bookings...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].WeekNumber < sorted[j].WeekNumber
	})
	if len(sorted) > upcomingBookingsLimit {
		sorted = sorted[:upcomingBookingsLimit]
	}

	upcoming := make([]UpcomingBooking, 0, len(sorted))
	for _, booking := range sorted {
		upcoming = append(upcoming, UpcomingBooking{
			PeriodName: models.PeriodName(booking.Period),
			WeekNumber: booking.WeekNumber,
			Date:       service.WeekDateRange(booking.WeekNumber),
		})
	}

	return UserWithStats{
		User:             user,
		TotalBookings:    len(bookings),
		UpcomingBookings: upcoming,
	}, nil
}

// WeekDateRange formats the days covered by week as "D/M - D/M". Week 1 starts
// on January 1 of the current year; this is not ISO week numbering.
func (service *BookingService) WeekDateRange(week int) string {
	return WeekDateRange(service.bookings.CurrentYear(), week)
}

func WeekDateRange(year int, week int) string {
	start := time.Date(year, time.January, 1+(week-1)*7, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 6)
	return fmt.Sprintf("%d/%d - %d/%d", start.Day(), int(start.Month()), end.Day(), int(end.Month()))
}

// GetPeriodStats summarizes every period for year. UserBookings stays empty
// when userID is blank. AvailableSlots is advisory and may go negative.
func (service *BookingService) GetPeriodStats(userID string, year *int) ([]PeriodStats, error) {
	periods := models.Periods()
	stats := make([]PeriodStats, 0, len(periods))
	for _, period := range periods {
		bookings, err := service.bookings.GetBookingsByPeriod(period.ID, year)
		if err != nil {
			return nil, err
		}

		userWeeks := make([]int, 0)
		if userID != "" {
			for _, booking := range bookings {
				if booking.UserID == userID {
					userWeeks = append(userWeeks, booking.WeekNumber)
				}
			}
			sort.Ints(userWeeks)
		}

		stats = append(stats, PeriodStats{
			ID:             period.ID,
			Name:           period.Label(),
			TotalWeeks:     period.TotalWeeks(),
			UserBookings:   userWeeks,
			AvailableSlots: period.TotalWeeks()*models.SlotsPerWeek - len(bookings),
		})
	}
	return stats, nil
}

func (service *BookingService) GetPeriodName(id models.PeriodID) string {
	return models.PeriodName(id)
}

func (service *BookingService) GetPeriodDetail(periodID models.PeriodID, viewerID string, year *int) (PeriodDetail, error) {
	period, ok := models.FindPeriod(periodID)
	if !ok {
		return PeriodDetail{}, errors.Wrapf(models.ErrNotFound, "period %d", periodID)
	}

	detail := PeriodDetail{
		ID:        period.ID,
		Name:      period.Label(),
		StartWeek: period.StartWeek,
		EndWeek:   period.EndWeek,
		Year:      store.ResolveYear(year, service.bookings.CurrentYear()),
		Weeks:     make([]WeekSlot, 0, period.TotalWeeks()),
	}

	users := make(map[string]struct{})
	for _, week := range period.Weeks() {
		roster, err := service.bookings.GetWeekBookings(week, &detail.Year)
		if err != nil {
			return PeriodDetail{}, err
		}

		slot := WeekSlot{WeekNumber: week, Bookings: roster}
		for _, entry := range roster {
			users[entry.UserID] = struct{}{}
			if viewerID != "" && entry.UserID == viewerID {
				slot.IsUserBooking = true
				detail.UserBookings++
			}
		}
		detail.TotalBookings += len(roster)
		detail.Weeks = append(detail.Weeks, slot)
	}
	detail.UniqueUsers = len(users)
	return detail, nil
}

func (service *BookingService) GetWeekRoster(week int, year *int) ([]models.WeekBooking, error) {
	if err := models.ValidateWeek(week); err != nil {
		return nil, err
	}
	return service.bookings.GetWeekBookings(week, year)
}

func (service *BookingService) GetBookingProgress(userID string) (BookingProgress, error) {
	bookings, err := service.bookings.GetBookingsByUser(userID, nil)
	if err != nil {
		return BookingProgress{}, err
	}
	return NewBookingProgress(len(bookings)), nil
}

func NewBookingProgress(booked int) BookingProgress {
	required := models.RequiredWeeksPerYear
	progress := BookingProgress{
		Booked:    booked,
		Required:  required,
		Remaining: max(required-booked, 0),
		Completed: booked >= required,
		Percent:   min(booked*100/required, 100),
	}
	return progress
}

func (service *BookingService) BookWeek(actor Actor, week int, year *int) (models.Booking, error) {
	if actor.UserID == "" {
		return models.Booking{}, ErrForbidden
	}
	return service.bookings.CreateBooking(actor.UserID, week, year)
}

func (service *BookingService) BookWeekForUser(actor Actor, targetUserID string, week int, year *int) (models.Booking, error) {
	if !actor.IsAdmin {
		return models.Booking{}, ErrForbidden
	}
	if _, err := service.bookings.GetUser(targetUserID); err != nil {
		return models.Booking{}, err
	}
	return service.bookings.CreateBooking(targetUserID, week, year)
}

func (service *BookingService) RescheduleBooking(actor Actor, bookingID string, update store.BookingUpdate) (models.Booking, error) {
	booking, err := service.bookings.GetBooking(bookingID)
	if err != nil {
		return models.Booking{}, err
	}
	if !actor.canManage(booking.UserID) {
		return models.Booking{}, ErrForbidden
	}
	if update.Year != nil {
		if err := service.validateUpdateYear(*update.Year); err != nil {
			return models.Booking{}, err
		}
	}
	return service.bookings.UpdateBooking(bookingID, update)
}

func (service *BookingService) validateUpdateYear(year int) error {
	current := service.bookings.CurrentYear()
	if year < current-yearsBackAllowed || year > current+yearsAheadAllowed {
		return errors.Wrapf(ErrInvalidYear, "year %d must be between %d and %d", year, current-yearsBackAllowed, current+yearsAheadAllowed)
	}
	return nil
}

func (service *BookingService) CancelBooking(actor Actor, bookingID string) error {
	booking, err := service.bookings.GetBooking(bookingID)
	if err != nil {
		return err
	}
	if !actor.canManage(booking.UserID) {
		return ErrForbidden
	}

	deleted, err := service.bookings.DeleteBooking(bookingID)
	if err != nil {
		return err
	}
	if !deleted {
		return errors.Wrapf(models.ErrNotFound, "booking %s", bookingID)
	}
	return nil
}

func (service *BookingService) CancelWeek(actor Actor, targetUserID string, week int, year *int) error {
	if !actor.canManage(targetUserID) {
		return ErrForbidden
	}
	if err := models.ValidateWeek(week); err != nil {
		return err
	}

	deleted, err := service.bookings.DeleteBookingByUserAndWeek(targetUserID, week, year)
	if err != nil {
		return err
	}
	if !deleted {
		return errors.Wrapf(models.ErrNotFound, "no booking for week %d", week)
	}
	return nil
}

func (service *BookingService) ListBookings(actor Actor, year *int) ([]models.Booking, error) {
	if actor.UserID == "" {
		return nil, ErrForbidden
	}
	return service.bookings.GetBookingsByUser(actor.UserID, year)
}

func (service *BookingService) ListAllBookings(actor Actor, year *int) ([]models.Booking, error) {
	if !actor.IsAdmin {
		return nil, ErrForbidden
	}
	return service.bookings.GetAllBookings(year)
}

func (service *BookingService) ListUsers(actor Actor) ([]models.User, error) {
	if !actor.IsAdmin {
		return nil, ErrForbidden
	}
	return service.bookings.GetAllUsers()
}
