package services

import (
	"errors"
	"testing"
	"time"

	"github.com/terraincognita07/gardenweeks/internal/models"
	"github.com/terraincognita07/gardenweeks/internal/store"
)

var serviceNow = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

func newTestBookingService(t *testing.T) (*BookingService, *store.MemoryStore) {
	t.Helper()
	memory := store.NewMemoryStore(store.WithClock(func() time.Time { return serviceNow }))
	return NewBookingService(memory), memory
}

func mustCreateUser(t *testing.T, memory *store.MemoryStore, username string, isAdmin bool) models.User {
	t.Helper()
	user, err := memory.CreateUser(username, "hash")
	if err != nil {
		t.Fatalf("CreateUser(%q) unexpected error: %v", username, err)
	}
	if isAdmin {
		if err := memory.SetAdmin(user.ID, true); err != nil {
			t.Fatalf("SetAdmin(%q) unexpected error: %v", username, err)
		}
		user.IsAdmin = true
	}
	return user
}

func actorFor(user models.User) Actor {
	return Actor{UserID: user.ID, IsAdmin: user.IsAdmin}
}

func TestBookWeekRejectsDuplicateButAllowsOtherMembers(t *testing.T) {
	service, memory := newTestBookingService(t)
	anna := mustCreateUser(t, memory, "anna", false)
	bob := mustCreateUser(t, memory, "bob", false)

	booking, err := service.BookWeek(actorFor(anna), 20, nil)
	if err != nil {
		t.Fatalf("BookWeek() unexpected error: %v", err)
	}
	if booking.Period != models.PeriodSpring || booking.Year != 2025 {
		t.Fatalf("unexpected booking %#v", booking)
	}

	if _, err := service.BookWeek(actorFor(anna), 20, nil); !errors.Is(err, models.ErrDuplicateBooking) {
		t.Fatalf("expected ErrDuplicateBooking, got %v", err)
	}
	if _, err := service.BookWeek(actorFor(bob), 20, nil); err != nil {
		t.Fatalf("second member booking same week unexpected error: %v", err)
	}

	roster, err := service.GetWeekRoster(20, nil)
	if err != nil {
		t.Fatalf("GetWeekRoster() unexpected error: %v", err)
	}
	if len(roster) != 2 {
		t.Fatalf("expected 2 members in week 20, got %#v", roster)
	}
}

func TestBookWeekForUserRejectsWeekOutsideRange(t *testing.T) {
	service, memory := newTestBookingService(t)
	admin := mustCreateUser(t, memory, "admin", true)
	anna := mustCreateUser(t, memory, "anna", false)

	if _, err := service.BookWeekForUser(actorFor(admin), anna.ID, 50, nil); !errors.Is(err, models.ErrInvalidWeek) {
		t.Fatalf("expected ErrInvalidWeek, got %v", err)
	}
	all, err := service.ListAllBookings(actorFor(admin), nil)
	if err != nil {
		t.Fatalf("ListAllBookings() unexpected error: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected no bookings, got %#v", all)
	}
}

func TestBookWeekForUserRequiresAdminAndExistingTarget(t *testing.T) {
	service, memory := newTestBookingService(t)
	admin := mustCreateUser(t, memory, "admin", true)
	anna := mustCreateUser(t, memory, "anna", false)
	bob := mustCreateUser(t, memory, "bob", false)

	if _, err := service.BookWeekForUser(actorFor(bob), anna.ID, 20, nil); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := service.BookWeekForUser(actorFor(admin), "missing", 20, nil); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	booking, err := service.BookWeekForUser(actorFor(admin), anna.ID, 34, store.IntPtr(2026))
	if err != nil {
		t.Fatalf("BookWeekForUser() unexpected error: %v", err)
	}
	if booking.UserID != anna.ID || booking.Period != models.PeriodFall || booking.Year != 2026 {
		t.Fatalf("unexpected booking %#v", booking)
	}
}

func TestGetPeriodStatsListsUserWeeksAndSlots(t *testing.T) {
	service, memory := newTestBookingService(t)
	anna := mustCreateUser(t, memory, "anna", false)
	bob := mustCreateUser(t, memory, "bob", false)

	for _, week := range []int{20, 16} {
		if _, err := service.BookWeek(actorFor(anna), week, nil); err != nil {
			t.Fatalf("BookWeek(%d) unexpected error: %v", week, err)
		}
	}
	if _, err := service.BookWeek(actorFor(bob), 16, nil); err != nil {
		t.Fatalf("BookWeek(bob) unexpected error: %v", err)
	}
	if _, err := service.BookWeek(actorFor(anna), 40, store.IntPtr(2024)); err != nil {
		t.Fatalf("BookWeek(2024) unexpected error: %v", err)
	}

	stats, err := service.GetPeriodStats(anna.ID, nil)
	if err != nil {
		t.Fatalf("GetPeriodStats() unexpected error: %v", err)
	}
	if len(stats) != 3 {
		t.Fatalf("expected 3 periods, got %d", len(stats))
	}

	spring := stats[0]
	if spring.ID != models.PeriodSpring || spring.Name != "Spring (weeks 14-23)" || spring.TotalWeeks != 10 {
		t.Fatalf("unexpected spring stats %#v", spring)
	}
	if len(spring.UserBookings) != 2 || spring.UserBookings[0] != 16 || spring.UserBookings[1] != 20 {
		t.Fatalf("expected spring user bookings [16 20], got %v", spring.UserBookings)
	}
	if spring.AvailableSlots != 47 {
		t.Fatalf("expected 47 spring slots, got %d", spring.AvailableSlots)
	}
	if stats[2].AvailableSlots != 55 || len(stats[2].UserBookings) != 0 {
		t.Fatalf("expected untouched fall stats for current year, got %#v", stats[2])
	}

	anonymous, err := service.GetPeriodStats("", nil)
	if err != nil {
		t.Fatalf("GetPeriodStats(anonymous) unexpected error: %v", err)
	}
	if len(anonymous[0].UserBookings) != 0 || anonymous[0].AvailableSlots != 47 {
		t.Fatalf("unexpected anonymous spring stats %#v", anonymous[0])
	}
}

func TestGetPeriodStatsAvailableSlotsAreNotClamped(t *testing.T) {
	service, memory := newTestBookingService(t)

	// 51 members in a 10-week period with 50 advisory slots.
	for index := 0; index < 51; index++ {
		user := mustCreateUser(t, memory, "member"+string(rune('a'+index%26))+string(rune('a'+index/26)), false)
		if _, err := service.BookWeek(actorFor(user), 14, nil); err != nil {
			t.Fatalf("BookWeek() unexpected error: %v", err)
		}
	}

	stats, err := service.GetPeriodStats("", nil)
	if err != nil {
		t.Fatalf("GetPeriodStats() unexpected error: %v", err)
	}
	if stats[0].AvailableSlots != -1 {
		t.Fatalf("expected -1 spring slots, got %d", stats[0].AvailableSlots)
	}
}

func TestGetUserWithStatsReturnsThreeEarliestWeeks(t *testing.T) {
	service, memory := newTestBookingService(t)
	anna := mustCreateUser(t, memory, "anna", false)

	for _, week := range []int{40, 16, 35, 30} {
		if _, err := service.BookWeek(actorFor(anna), week, nil); err != nil {
			t.Fatalf("BookWeek(%d) unexpected error: %v", week, err)
		}
	}

	stats, err := service.GetUserWithStats(anna.ID)
	if err != nil {
		t.Fatalf("GetUserWithStats() unexpected error: %v", err)
	}
	if stats.TotalBookings != 4 {
		t.Fatalf("expected 4 bookings, got %d", stats.TotalBookings)
	}
	if len(stats.UpcomingBookings) != 3 {
		t.Fatalf("expected 3 upcoming bookings, got %#v", stats.UpcomingBookings)
	}

	want := []UpcomingBooking{
		{PeriodName: "Spring", WeekNumber: 16, Date: "16/4 - 22/4"},
		{PeriodName: "Summer", WeekNumber: 30, Date: "23/7 - 29/7"},
		{PeriodName: "Fall", WeekNumber: 35, Date: "27/8 - 2/9"},
	}
	for index, expected := range want {
		if stats.UpcomingBookings[index] != expected {
			t.Fatalf("upcoming[%d] = %#v, want %#v", index, stats.UpcomingBookings[index], expected)
		}
	}
}

func TestGetUserWithStatsUnknownUser(t *testing.T) {
	service, _ := newTestBookingService(t)

	if _, err := service.GetUserWithStats("missing"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestWeekDateRange(t *testing.T) {
	t.Parallel()

	cases := []struct {
		year int
		week int
		want string
	}{
		{year: 2025, week: 1, want: "1/1 - 7/1"},
		{year: 2025, week: 14, want: "2/4 - 8/4"},
		{year: 2025, week: 44, want: "29/10 - 4/11"},
		{year: 2024, week: 14, want: "1/4 - 7/4"},
	}

	for _, testCase := range cases {
		if got := WeekDateRange(testCase.year, testCase.week); got != testCase.want {
			t.Fatalf("WeekDateRange(%d, %d) = %q, want %q", testCase.year, testCase.week, got, testCase.want)
		}
	}
}

func TestGetPeriodName(t *testing.T) {
	service, _ := newTestBookingService(t)

	if got := service.GetPeriodName(models.PeriodFall); got != "Fall" {
		t.Fatalf("GetPeriodName(3) = %q, want Fall", got)
	}
	if got := service.GetPeriodName(0); got != "Unknown" {
		t.Fatalf("GetPeriodName(0) = %q, want Unknown", got)
	}
}

func TestRescheduleBookingOwnershipAndYearWindow(t *testing.T) {
	service, memory := newTestBookingService(t)
	admin := mustCreateUser(t, memory, "admin", true)
	anna := mustCreateUser(t, memory, "anna", false)
	bob := mustCreateUser(t, memory, "bob", false)

	booking, err := service.BookWeek(actorFor(anna), 20, nil)
	if err != nil {
		t.Fatalf("BookWeek() unexpected error: %v", err)
	}

	if _, err := service.RescheduleBooking(actorFor(bob), booking.ID, store.BookingUpdate{WeekNumber: store.IntPtr(25)}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := service.RescheduleBooking(actorFor(anna), booking.ID, store.BookingUpdate{Year: store.IntPtr(2031)}); !errors.Is(err, ErrInvalidYear) {
		t.Fatalf("expected ErrInvalidYear, got %v", err)
	}
	if _, err := service.RescheduleBooking(actorFor(anna), booking.ID, store.BookingUpdate{Year: store.IntPtr(2023)}); !errors.Is(err, ErrInvalidYear) {
		t.Fatalf("expected ErrInvalidYear for 2023, got %v", err)
	}
	if _, err := service.RescheduleBooking(actorFor(anna), "missing", store.BookingUpdate{}); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	moved, err := service.RescheduleBooking(actorFor(admin), booking.ID, store.BookingUpdate{WeekNumber: store.IntPtr(25), Year: store.IntPtr(2024)})
	if err != nil {
		t.Fatalf("RescheduleBooking() unexpected error: %v", err)
	}
	if moved.WeekNumber != 25 || moved.Year != 2024 || moved.Period != models.PeriodSummer {
		t.Fatalf("unexpected rescheduled booking %#v", moved)
	}
}

func TestCancelBookingAndCancelWeek(t *testing.T) {
	service, memory := newTestBookingService(t)
	admin := mustCreateUser(t, memory, "admin", true)
	anna := mustCreateUser(t, memory, "anna", false)
	bob := mustCreateUser(t, memory, "bob", false)

	first, err := service.BookWeek(actorFor(anna), 20, nil)
	if err != nil {
		t.Fatalf("BookWeek() unexpected error: %v", err)
	}
	if _, err := service.BookWeek(actorFor(anna), 21, nil); err != nil {
		t.Fatalf("BookWeek() unexpected error: %v", err)
	}

	if err := service.CancelBooking(actorFor(bob), first.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := service.CancelBooking(actorFor(anna), first.ID); err != nil {
		t.Fatalf("CancelBooking() unexpected error: %v", err)
	}
	if err := service.CancelBooking(actorFor(anna), first.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second cancel, got %v", err)
	}

	if err := service.CancelWeek(actorFor(bob), anna.ID, 21, nil); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := service.CancelWeek(actorFor(anna), anna.ID, 50, nil); !errors.Is(err, models.ErrInvalidWeek) {
		t.Fatalf("expected ErrInvalidWeek, got %v", err)
	}
	if err := service.CancelWeek(actorFor(admin), anna.ID, 21, nil); err != nil {
		t.Fatalf("CancelWeek() unexpected error: %v", err)
	}
	if err := service.CancelWeek(actorFor(anna), anna.ID, 21, nil); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAdminListingsRequireAdmin(t *testing.T) {
	service, memory := newTestBookingService(t)
	admin := mustCreateUser(t, memory, "admin", true)
	anna := mustCreateUser(t, memory, "anna", false)

	if _, err := service.ListAllBookings(actorFor(anna), nil); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := service.ListUsers(actorFor(anna)); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	users, err := service.ListUsers(actorFor(admin))
	if err != nil {
		t.Fatalf("ListUsers() unexpected error: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
}

func TestGetPeriodDetailBuildsWeekGrid(t *testing.T) {
	service, memory := newTestBookingService(t)
	anna := mustCreateUser(t, memory, "anna", false)
	bob := mustCreateUser(t, memory, "bob", false)

	for _, booking := range []struct {
		user models.User
		week int
	}{
		{user: anna, week: 24},
		{user: bob, week: 24},
		{user: bob, week: 33},
	} {
		if _, err := service.BookWeek(actorFor(booking.user), booking.week, nil); err != nil {
			t.Fatalf("BookWeek(%d) unexpected error: %v", booking.week, err)
		}
	}

	detail, err := service.GetPeriodDetail(models.PeriodSummer, anna.ID, nil)
	if err != nil {
		t.Fatalf("GetPeriodDetail() unexpected error: %v", err)
	}
	if len(detail.Weeks) != 10 || detail.Weeks[0].WeekNumber != 24 || detail.Weeks[9].WeekNumber != 33 {
		t.Fatalf("unexpected week grid %#v", detail.Weeks)
	}
	if detail.TotalBookings != 3 || detail.UserBookings != 1 || detail.UniqueUsers != 2 || detail.Year != 2025 {
		t.Fatalf("unexpected totals %#v", detail)
	}
	if !detail.Weeks[0].IsUserBooking || detail.Weeks[9].IsUserBooking {
		t.Fatalf("unexpected viewer markers %#v", detail.Weeks)
	}

	if _, err := service.GetPeriodDetail(models.PeriodID(4), anna.ID, nil); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetBookingProgress(t *testing.T) {
	service, memory := newTestBookingService(t)
	anna := mustCreateUser(t, memory, "anna", false)

	for _, week := range []int{14, 15} {
		if _, err := service.BookWeek(actorFor(anna), week, nil); err != nil {
			t.Fatalf("BookWeek(%d) unexpected error: %v", week, err)
		}
	}

	progress, err := service.GetBookingProgress(anna.ID)
	if err != nil {
		t.Fatalf("GetBookingProgress() unexpected error: %v", err)
	}
	if progress != (BookingProgress{Booked: 2, Required: 6, Remaining: 4, Completed: false, Percent: 33}) {
		t.Fatalf("unexpected progress %#v", progress)
	}

	if done := NewBookingProgress(8); !done.Completed || done.Remaining != 0 || done.Percent != 100 {
		t.Fatalf("unexpected completed progress %#v", done)
	}
}

type failingBookingRepo struct {
	BookingRepository
	err error
}

func (stub *failingBookingRepo) CurrentYear() int {
	return 2025
}

func (stub *failingBookingRepo) GetBookingsByPeriod(models.PeriodID, *int) ([]models.Booking, error) {
	return nil, stub.err
}

func TestGetPeriodStatsPropagatesStoreErrors(t *testing.T) {
	storeErr := errors.New("storage offline")
	service := NewBookingService(&failingBookingRepo{err: storeErr})

	if _, err := service.GetPeriodStats("user", nil); !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
}
