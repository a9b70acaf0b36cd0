// Package storetest holds the behaviour every store.Store implementation must
// share. Implementations run it from their own tests.
package storetest

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/gardenweeks/internal/models"
	"github.com/terraincognita07/gardenweeks/internal/store"
)

// Factory builds an empty store whose clock always returns now.
type Factory func(t *testing.T, now time.Time) store.Store

var FixedNow = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

func Run(t *testing.T, newStore Factory) {
	t.Helper()

	cases := []struct {
		name string
		run  func(*testing.T, store.Store)
	}{
		{"CreateUserNormalizesUsername", testCreateUserNormalizesUsername},
		{"GetUserReportsNotFound", testGetUserReportsNotFound},
		{"SetAdminAndPassword", testSetAdminAndPassword},
		{"CreateBookingDefaultsYearAndDerivesPeriod", testCreateBookingDefaultsYear},
		{"CreateBookingRejectsInvalidWeek", testCreateBookingRejectsInvalidWeek},
		{"CreateBookingRejectsUnknownUser", testCreateBookingRejectsUnknownUser},
		{"DuplicateBookingRejectedPerUser", testDuplicateBookingRejectedPerUser},
		{"SameWeekDifferentYearAllowed", testSameWeekDifferentYear},
		{"UpdateBookingYearRechecksUniqueness", testUpdateBookingYearRechecksUniqueness},
		{"UpdateBookingWeekRederivesPeriod", testUpdateBookingWeekRederivesPeriod},
		{"UpdateBookingRejectsInvalidWeek", testUpdateBookingRejectsInvalidWeek},
		{"UpdateBookingUnknownID", testUpdateBookingUnknownID},
		{"UpdateBookingToItsOwnKey", testUpdateBookingToItsOwnKey},
		{"DeleteBooking", testDeleteBooking},
		{"DeleteBookingByUserAndWeek", testDeleteBookingByUserAndWeek},
		{"QueriesFilterByYear", testQueriesFilterByYear},
		{"WeekBookingsJoinUsernames", testWeekBookingsJoinUsernames},
		{"ConcurrentDuplicateBookings", testConcurrentDuplicateBookings},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			testCase.run(t, newStore(t, FixedNow))
		})
	}
}

func mustUser(t *testing.T, s store.Store, username string) models.User {
	t.Helper()
	user, err := s.CreateUser(username, "hash-"+username)
	require.NoError(t, err)
	return user
}

func mustBook(t *testing.T, s store.Store, userID string, week int, year *int) models.Booking {
	t.Helper()
	booking, err := s.CreateBooking(userID, week, year)
	require.NoError(t, err)
	return booking
}

func weeksOf(bookings []models.Booking) []int {
	weeks := make([]int, 0, len(bookings))
	for _, booking := range bookings {
		weeks = append(weeks, booking.WeekNumber)
	}
	return weeks
}

func testCreateUserNormalizesUsername(t *testing.T, s store.Store) {
	user := mustUser(t, s, "  Anna ")
	assert.Equal(t, "anna", user.Username)
	assert.False(t, user.IsAdmin)
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	other := mustUser(t, s, "bertil")
	assert.NotEqual(t, user.ID, other.ID)

	found, err := s.GetUserByUsername("ANNA")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	byID, err := s.GetUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash-  Anna ", byID.PasswordHash)

	users, err := s.GetAllUsers()
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func testGetUserReportsNotFound(t *testing.T, s store.Store) {
	_, err := s.GetUser("missing")
	assert.True(t, errors.Is(err, models.ErrNotFound), "GetUser error = %v", err)

	_, err = s.GetUserByUsername("nobody")
	assert.True(t, errors.Is(err, models.ErrNotFound), "GetUserByUsername error = %v", err)

	_, err = s.GetBooking("missing")
	assert.True(t, errors.Is(err, models.ErrNotFound), "GetBooking error = %v", err)
}

func testSetAdminAndPassword(t *testing.T, s store.Store) {
	user := mustUser(t, s, "admin")
	require.NoError(t, s.SetAdmin(user.ID, true))
	require.NoError(t, s.SetPasswordHash(user.ID, "new-hash"))

	reloaded, err := s.GetUser(user.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.IsAdmin)
	assert.Equal(t, "new-hash", reloaded.PasswordHash)

	assert.True(t, errors.Is(s.SetAdmin("missing", true), models.ErrNotFound))
}

func testCreateBookingDefaultsYear(t *testing.T, s store.Store) {
	user := mustUser(t, s, "anna")

	booking := mustBook(t, s, user.ID, 16, nil)
	assert.Equal(t, FixedNow.Year(), s.CurrentYear())
	assert.Equal(t, FixedNow.Year(), booking.Year)
	assert.Equal(t, models.PeriodSpring, booking.Period)
	assert.Equal(t, user.ID, booking.UserID)
	assert.NotEmpty(t, booking.ID)

	summer := mustBook(t, s, user.ID, 24, store.IntPtr(2026))
	assert.Equal(t, 2026, summer.Year)
	assert.Equal(t, models.PeriodSummer, summer.Period)

	fall := mustBook(t, s, user.ID, 44, nil)
	assert.Equal(t, models.PeriodFall, fall.Period)
}

func testCreateBookingRejectsInvalidWeek(t *testing.T, s store.Store) {
	admin := mustUser(t, s, "admin")
	member := mustUser(t, s, "anna")
	require.NoError(t, s.SetAdmin(admin.ID, true))

	for _, week := range []int{13, 45, 50, 0, -3} {
		_, err := s.CreateBooking(member.ID, week, nil)
		assert.True(t, errors.Is(err, models.ErrInvalidWeek), "week %d error = %v", week, err)
	}

	all, err := s.GetAllBookings(nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func testCreateBookingRejectsUnknownUser(t *testing.T, s store.Store) {
	_, err := s.CreateBooking("no-such-user", 20, nil)
	assert.True(t, errors.Is(err, models.ErrNotFound), "error = %v", err)
}

func testDuplicateBookingRejectedPerUser(t *testing.T, s store.Store) {
	anna := mustUser(t, s, "anna")
	bertil := mustUser(t, s, "bertil")

	mustBook(t, s, anna.ID, 16, nil)
	_, err := s.CreateBooking(anna.ID, 16, nil)
	assert.True(t, errors.Is(err, models.ErrDuplicateBooking), "error = %v", err)

	_, err = s.CreateBooking(anna.ID, 16, store.IntPtr(FixedNow.Year()))
	assert.True(t, errors.Is(err, models.ErrDuplicateBooking), "explicit year error = %v", err)

	mustBook(t, s, bertil.ID, 16, nil)

	annaBookings, err := s.GetBookingsByUser(anna.ID, nil)
	require.NoError(t, err)
	assert.Len(t, annaBookings, 1)

	weekBookings, err := s.GetBookingsByWeek(16, nil)
	require.NoError(t, err)
	assert.Len(t, weekBookings, 2)
}

func testSameWeekDifferentYear(t *testing.T, s store.Store) {
	anna := mustUser(t, s, "anna")
	mustBook(t, s, anna.ID, 20, nil)
	mustBook(t, s, anna.ID, 20, store.IntPtr(FixedNow.Year()+1))

	current, err := s.GetBookingsByUser(anna.ID, nil)
	require.NoError(t, err)
	assert.Len(t, current, 1)

	next, err := s.GetBookingsByUser(anna.ID, store.IntPtr(FixedNow.Year()+1))
	require.NoError(t, err)
	assert.Len(t, next, 1)
}

func testUpdateBookingYearRechecksUniqueness(t *testing.T, s store.Store) {
	anna := mustUser(t, s, "anna")
	nextYear := FixedNow.Year() + 1

	first := mustBook(t, s, anna.ID, 30, nil)
	mustBook(t, s, anna.ID, 30, store.IntPtr(nextYear))

	_, err := s.UpdateBooking(first.ID, store.BookingUpdate{Year: store.IntPtr(nextYear)})
	assert.True(t, errors.Is(err, models.ErrDuplicateBooking), "error = %v", err)

	unchanged, err := s.GetBooking(first.ID)
	require.NoError(t, err)
	assert.Equal(t, FixedNow.Year(), unchanged.Year)

	moved, err := s.UpdateBooking(first.ID, store.BookingUpdate{Year: store.IntPtr(nextYear + 1)})
	require.NoError(t, err)
	assert.Equal(t, nextYear+1, moved.Year)
	assert.Equal(t, 30, moved.WeekNumber)
	assert.Equal(t, models.PeriodSummer, moved.Period)
}

func testUpdateBookingWeekRederivesPeriod(t *testing.T, s store.Store) {
	anna := mustUser(t, s, "anna")
	booking := mustBook(t, s, anna.ID, 16, nil)

	updated, err := s.UpdateBooking(booking.ID, store.BookingUpdate{WeekNumber: store.IntPtr(40)})
	require.NoError(t, err)
	assert.Equal(t, 40, updated.WeekNumber)
	assert.Equal(t, models.PeriodFall, updated.Period)
	assert.Equal(t, booking.Year, updated.Year)
	assert.Equal(t, booking.CreatedAt.Unix(), updated.CreatedAt.Unix())

	reloaded, err := s.GetBooking(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PeriodFall, reloaded.Period)

	byPeriod, err := s.GetBookingsByPeriod(models.PeriodSpring, nil)
	require.NoError(t, err)
	assert.Empty(t, byPeriod)
}

func testUpdateBookingRejectsInvalidWeek(t *testing.T, s store.Store) {
	anna := mustUser(t, s, "anna")
	booking := mustBook(t, s, anna.ID, 16, nil)

	_, err := s.UpdateBooking(booking.ID, store.BookingUpdate{WeekNumber: store.IntPtr(50)})
	assert.True(t, errors.Is(err, models.ErrInvalidWeek), "error = %v", err)

	reloaded, err := s.GetBooking(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, 16, reloaded.WeekNumber)
}

func testUpdateBookingUnknownID(t *testing.T, s store.Store) {
	_, err := s.UpdateBooking("missing", store.BookingUpdate{WeekNumber: store.IntPtr(20)})
	assert.True(t, errors.Is(err, models.ErrNotFound), "error = %v", err)
}

func testUpdateBookingToItsOwnKey(t *testing.T, s store.Store) {
	anna := mustUser(t, s, "anna")
	booking := mustBook(t, s, anna.ID, 22, nil)

	updated, err := s.UpdateBooking(booking.ID, store.BookingUpdate{WeekNumber: store.IntPtr(22)})
	require.NoError(t, err)
	assert.Equal(t, booking.ID, updated.ID)

	untouched, err := s.UpdateBooking(booking.ID, store.BookingUpdate{})
	require.NoError(t, err)
	assert.Equal(t, 22, untouched.WeekNumber)
}

func testDeleteBooking(t *testing.T, s store.Store) {
	anna := mustUser(t, s, "anna")
	booking := mustBook(t, s, anna.ID, 18, nil)

	removed, err := s.DeleteBooking(booking.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.DeleteBooking(booking.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	mustBook(t, s, anna.ID, 18, nil)
}

func testDeleteBookingByUserAndWeek(t *testing.T, s store.Store) {
	anna := mustUser(t, s, "anna")
	bertil := mustUser(t, s, "bertil")
	mustBook(t, s, anna.ID, 25, nil)
	mustBook(t, s, bertil.ID, 25, nil)

	removed, err := s.DeleteBookingByUserAndWeek(anna.ID, 25, store.IntPtr(FixedNow.Year()+1))
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = s.DeleteBookingByUserAndWeek(anna.ID, 25, nil)
	require.NoError(t, err)
	assert.True(t, removed)

	remaining, err := s.GetBookingsByWeek(25, nil)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, bertil.ID, remaining[0].UserID)
}

func testQueriesFilterByYear(t *testing.T, s store.Store) {
	anna := mustUser(t, s, "anna")
	bertil := mustUser(t, s, "bertil")
	nextYear := store.IntPtr(FixedNow.Year() + 1)

	mustBook(t, s, anna.ID, 30, nil)
	mustBook(t, s, anna.ID, 16, nil)
	mustBook(t, s, anna.ID, 40, nil)
	mustBook(t, s, bertil.ID, 17, nil)
	mustBook(t, s, bertil.ID, 17, nextYear)

	annaBookings, err := s.GetBookingsByUser(anna.ID, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{30, 16, 40}, weeksOf(annaBookings))

	spring, err := s.GetBookingsByPeriod(models.PeriodSpring, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{16, 17}, weeksOf(spring))

	all, err := s.GetAllBookings(nil)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	future, err := s.GetAllBookings(nextYear)
	require.NoError(t, err)
	assert.Len(t, future, 1)
}

func testWeekBookingsJoinUsernames(t *testing.T, s store.Store) {
	anna := mustUser(t, s, "Anna")
	bertil := mustUser(t, s, "bertil")
	mustBook(t, s, anna.ID, 21, nil)
	mustBook(t, s, bertil.ID, 21, nil)
	mustBook(t, s, bertil.ID, 22, nil)

	roster, err := s.GetWeekBookings(21, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.WeekBooking{
		{UserID: anna.ID, Username: "anna"},
		{UserID: bertil.ID, Username: "bertil"},
	}, roster)

	empty, err := s.GetWeekBookings(21, store.IntPtr(FixedNow.Year()-1))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testConcurrentDuplicateBookings(t *testing.T, s store.Store) {
	anna := mustUser(t, s, "anna")

	const attempts = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateBooking(anna.ID, 33, nil)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, models.ErrDuplicateBooking):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, rejected)

	bookings, err := s.GetBookingsByWeek(33, nil)
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
}
