package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/terraincognita07/gardenweeks/internal/models"
)

// MemoryStore keeps every record in process memory behind one lock. Records
// are lost on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	clock Clock

	users     map[string]models.User
	userOrder []string

	bookings     map[string]models.Booking
	bookingOrder []string
}

type MemoryOption func(*MemoryStore)

func WithClock(clock Clock) MemoryOption {
	return func(store *MemoryStore) {
		if clock != nil {
			store.clock = clock
		}
	}
}

func NewMemoryStore(options ...MemoryOption) *MemoryStore {
	store := &MemoryStore{
		clock:    time.Now,
		users:    make(map[string]models.User),
		bookings: make(map[string]models.Booking),
	}
	for _, option := range options {
		option(store)
	}
	return store
}

var _ Store = (*MemoryStore)(nil)

func (store *MemoryStore) CurrentYear() int {
	return store.clock().Year()
}

func (store *MemoryStore) CreateUser(username string, passwordHash string) (models.User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	user := models.User{
		ID:           uuid.NewString(),
		Username:     models.NormalizeUsername(username),
		PasswordHash: passwordHash,
		IsAdmin:      false,
		CreatedAt:    store.clock(),
	}
	store.users[user.ID] = user
	store.userOrder = append(store.userOrder, user.ID)
	return user, nil
}

func (store *MemoryStore) GetUser(id string) (models.User, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	user, ok := store.users[id]
	if !ok {
		return models.User{}, errors.Wrapf(models.ErrNotFound, "user %s", id)
	}
	return user, nil
}

func (store *MemoryStore) GetUserByUsername(username string) (models.User, error) {
	normalized := models.NormalizeUsername(username)

	store.mu.RLock()
	defer store.mu.RUnlock()

	for _, id := range store.userOrder {
		if user := store.users[id]; user.Username == normalized {
			return user, nil
		}
	}
	return models.User{}, errors.Wrapf(models.ErrNotFound, "user %q", normalized)
}

func (store *MemoryStore) GetAllUsers() ([]models.User, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	users := make([]models.User, 0, len(store.userOrder))
	for _, id := range store.userOrder {
		users = append(users, store.users[id])
	}
	return users, nil
}

func (store *MemoryStore) SetAdmin(id string, isAdmin bool) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	user, ok := store.users[id]
	if !ok {
		return errors.Wrapf(models.ErrNotFound, "user %s", id)
	}
	user.IsAdmin = isAdmin
	store.users[id] = user
	return nil
}

func (store *MemoryStore) SetPasswordHash(id string, passwordHash string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	user, ok := store.users[id]
	if !ok {
		return errors.Wrapf(models.ErrNotFound, "user %s", id)
	}
	user.PasswordHash = passwordHash
	store.users[id] = user
	return nil
}

func (store *MemoryStore) CreateBooking(userID string, weekNumber int, year *int) (models.Booking, error) {
	resolvedYear := ResolveYear(year, store.CurrentYear())
	if err := models.ValidateWeek(weekNumber); err != nil {
		return models.Booking{}, err
	}
	period, err := models.DerivePeriod(weekNumber)
	if err != nil {
		return models.Booking{}, err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	if _, ok := store.users[userID]; !ok {
		return models.Booking{}, errors.Wrapf(models.ErrNotFound, "user %s", userID)
	}
	if _, exists := store.findLocked(userID, weekNumber, resolvedYear, ""); exists {
		return models.Booking{}, DuplicateBookingError(weekNumber, resolvedYear)
	}

	booking := models.Booking{
		ID:         uuid.NewString(),
		UserID:     userID,
		WeekNumber: weekNumber,
		Year:       resolvedYear,
		Period:     period,
		CreatedAt:  store.clock(),
	}
	store.bookings[booking.ID] = booking
	store.bookingOrder = append(store.bookingOrder, booking.ID)
	return booking, nil
}

func (store *MemoryStore) UpdateBooking(id string, update BookingUpdate) (models.Booking, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	existing, ok := store.bookings[id]
	if !ok {
		return models.Booking{}, errors.Wrapf(models.ErrNotFound, "booking %s", id)
	}

	updated, err := ApplyBookingUpdate(existing, update)
	if err != nil {
		return models.Booking{}, err
	}
	if _, exists := store.findLocked(updated.UserID, updated.WeekNumber, updated.Year, updated.ID); exists {
		return models.Booking{}, DuplicateBookingError(updated.WeekNumber, updated.Year)
	}

	store.bookings[id] = updated
	return updated, nil
}

func (store *MemoryStore) DeleteBooking(id string) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	return store.deleteLocked(id), nil
}

func (store *MemoryStore) DeleteBookingByUserAndWeek(userID string, weekNumber int, year *int) (bool, error) {
	resolvedYear := ResolveYear(year, store.CurrentYear())

	store.mu.Lock()
	defer store.mu.Unlock()

	booking, exists := store.findLocked(userID, weekNumber, resolvedYear, "")
	if !exists {
		return false, nil
	}
	return store.deleteLocked(booking.ID), nil
}

func (store *MemoryStore) GetBooking(id string) (models.Booking, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	booking, ok := store.bookings[id]
	if !ok {
		return models.Booking{}, errors.Wrapf(models.ErrNotFound, "booking %s", id)
	}
	return booking, nil
}

func (store *MemoryStore) GetBookingsByUser(userID string, year *int) ([]models.Booking, error) {
	resolvedYear := ResolveYear(year, store.CurrentYear())
	return store.filter(func(booking models.Booking) bool {
		return booking.UserID == userID && booking.Year == resolvedYear
	}), nil
}

func (store *MemoryStore) GetBookingsByWeek(weekNumber int, year *int) ([]models.Booking, error) {
	resolvedYear := ResolveYear(year, store.CurrentYear())
	return store.filter(func(booking models.Booking) bool {
		return booking.WeekNumber == weekNumber && booking.Year == resolvedYear
	}), nil
}

func (store *MemoryStore) GetBookingsByPeriod(period models.PeriodID, year *int) ([]models.Booking, error) {
	resolvedYear := ResolveYear(year, store.CurrentYear())
	return store.filter(func(booking models.Booking) bool {
		return booking.Period == period && booking.Year == resolvedYear
	}), nil
}

func (store *MemoryStore) GetAllBookings(year *int) ([]models.Booking, error) {
	resolvedYear := ResolveYear(year, store.CurrentYear())
	return store.filter(func(booking models.Booking) bool {
		return booking.Year == resolvedYear
	}), nil
}

func (store *MemoryStore) GetWeekBookings(weekNumber int, year *int) ([]models.WeekBooking, error) {
	resolvedYear := ResolveYear(year, store.CurrentYear())

	store.mu.RLock()
	defer store.mu.RUnlock()

	roster := make([]models.WeekBooking, 0)
	for _, id := range store.bookingOrder {
		booking := store.bookings[id]
		if booking.WeekNumber != weekNumber || booking.Year != resolvedYear {
			continue
		}
		user, ok := store.users[booking.UserID]
		if !ok {
			continue
		}
		roster = append(roster, models.WeekBooking{UserID: user.ID, Username: user.Username})
	}
	return roster, nil
}

func (store *MemoryStore) filter(match func(models.Booking) bool) []models.Booking {
	store.mu.RLock()
	defer store.mu.RUnlock()

	result := make([]models.Booking, 0)
	for _, id := range store.bookingOrder {
		if booking := store.bookings[id]; match(booking) {
			result = append(result, booking)
		}
	}
	return result
}

// findLocked looks up the booking holding (userID, week, year), ignoring the
// booking with excludeID. Callers hold mu.
func (store *MemoryStore) findLocked(userID string, weekNumber int, year int, excludeID string) (models.Booking, bool) {
	for _, id := range store.bookingOrder {
		if id == excludeID {
			continue
		}
		booking := store.bookings[id]
		if booking.UserID == userID && booking.WeekNumber == weekNumber && booking.Year == year {
			return booking, true
		}
	}
	return models.Booking{}, false
}

func (store *MemoryStore) deleteLocked(id string) bool {
	if _, ok := store.bookings[id]; !ok {
		return false
	}
	delete(store.bookings, id)
	for index, candidate := range store.bookingOrder {
		if candidate == id {
			store.bookingOrder = append(store.bookingOrder[:index], store.bookingOrder[index+1:]...)
			break
		}
	}
	return true
}
