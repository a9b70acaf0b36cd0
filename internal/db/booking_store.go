package db

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/terraincognita07/gardenweeks/internal/models"
	"github.com/terraincognita07/gardenweeks/internal/store"
	"gorm.io/gorm"
)

// BookingStore is the persistent store.Store. Writes that can collide on the
// (user, week, year) key are serialized in process and backed by the unique
// index for writers outside it.
type BookingStore struct {
	database *gorm.DB
	clock    store.Clock
	writeMu  sync.Mutex
}

func NewBookingStore(database *gorm.DB, clock store.Clock) *BookingStore {
	if clock == nil {
		clock = time.Now
	}
	return &BookingStore{database: database, clock: clock}
}

var _ store.Store = (*BookingStore)(nil)

func (s *BookingStore) CurrentYear() int {
	return s.clock().Year()
}

func (s *BookingStore) CreateUser(username string, passwordHash string) (models.User, error) {
	user := models.User{
		ID:           uuid.NewString(),
		Username:     models.NormalizeUsername(username),
		PasswordHash: passwordHash,
		CreatedAt:    s.clock(),
	}
	if err := s.database.Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return models.User{}, errors.Wrapf(models.ErrUsernameTaken, "create user %q", user.Username)
		}
		return models.User{}, errors.Wrapf(err, "create user %q", user.Username)
	}
	return user, nil
}

func (s *BookingStore) GetUser(id string) (models.User, error) {
	var user models.User
	if err := s.database.Where("id = ?", id).First(&user).Error; err != nil {
		return models.User{}, notFound(err, "user %s", id)
	}
	return user, nil
}

func (s *BookingStore) GetUserByUsername(username string) (models.User, error) {
	normalized := models.NormalizeUsername(username)
	var user models.User
	if err := s.database.Where("username = ?", normalized).First(&user).Error; err != nil {
		return models.User{}, notFound(err, "user %q", normalized)
	}
	return user, nil
}

func (s *BookingStore) GetAllUsers() ([]models.User, error) {
	users := make([]models.User, 0)
	if err := s.database.Order("created_at ASC").Order("username ASC").Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "load users")
	}
	return users, nil
}

func (s *BookingStore) SetAdmin(id string, isAdmin bool) error {
	return s.updateUser(id, "is_admin", isAdmin)
}

func (s *BookingStore) SetPasswordHash(id string, passwordHash string) error {
	return s.updateUser(id, "password_hash", passwordHash)
}

func (s *BookingStore) updateUser(id string, column string, value any) error {
	result := s.database.Model(&models.User{}).Where("id = ?", id).Update(column, value)
	if result.Error != nil {
		return errors.Wrapf(result.Error, "update user %s", id)
	}
	if result.RowsAffected == 0 {
		// MySQL reports zero affected rows when the value is unchanged.
		if _, err := s.GetUser(id); err != nil {
			return err
		}
	}
	return nil
}

func (s *BookingStore) CreateBooking(userID string, weekNumber int, year *int) (models.Booking, error) {
	resolvedYear := store.ResolveYear(year, s.CurrentYear())
	if err := models.ValidateWeek(weekNumber); err != nil {
		return models.Booking{}, err
	}
	period, err := models.DerivePeriod(weekNumber)
	if err != nil {
		return models.Booking{}, err
	}

	booking := models.Booking{
		ID:         uuid.NewString(),
		UserID:     userID,
		WeekNumber: weekNumber,
		Year:       resolvedYear,
		Period:     period,
		CreatedAt:  s.clock(),
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err = s.database.Transaction(func(tx *gorm.DB) error {
		var owners int64
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&owners).Error; err != nil {
			return errors.Wrap(err, "check booking owner")
		}
		if owners == 0 {
			return errors.Wrapf(models.ErrNotFound, "user %s", userID)
		}
		if err := ensureFree(tx, booking, ""); err != nil {
			return err
		}
		if err := tx.Create(&booking).Error; err != nil {
			if isUniqueViolation(err) {
				return store.DuplicateBookingError(weekNumber, resolvedYear)
			}
			return errors.Wrap(err, "insert booking")
		}
		return nil
	})
	if err != nil {
		return models.Booking{}, err
	}
	return booking, nil
}

func (s *BookingStore) UpdateBooking(id string, update store.BookingUpdate) (models.Booking, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var updated models.Booking
	err := s.database.Transaction(func(tx *gorm.DB) error {
		var existing models.Booking
		if err := tx.Where("id = ?", id).First(&existing).Error; err != nil {
			return notFound(err, "booking %s", id)
		}

		next, err := store.ApplyBookingUpdate(existing, update)
		if err != nil {
			return err
		}
		if err := ensureFree(tx, next, next.ID); err != nil {
			return err
		}

		result := tx.Model(&models.Booking{}).Where("id = ?", id).Updates(map[string]any{
			"week_number": next.WeekNumber,
			"year":        next.Year,
			"period":      next.Period,
		})
		if result.Error != nil {
			if isUniqueViolation(result.Error) {
				return store.DuplicateBookingError(next.WeekNumber, next.Year)
			}
			return errors.Wrapf(result.Error, "update booking %s", id)
		}
		updated = next
		return nil
	})
	if err != nil {
		return models.Booking{}, err
	}
	return updated, nil
}

func (s *BookingStore) DeleteBooking(id string) (bool, error) {
	result := s.database.Where("id = ?", id).Delete(&models.Booking{})
	if result.Error != nil {
		return false, errors.Wrapf(result.Error, "delete booking %s", id)
	}
	return result.RowsAffected > 0, nil
}

func (s *BookingStore) DeleteBookingByUserAndWeek(userID string, weekNumber int, year *int) (bool, error) {
	resolvedYear := store.ResolveYear(year, s.CurrentYear())
	result := s.database.
		Where("user_id = ? AND week_number = ? AND year = ?", userID, weekNumber, resolvedYear).
		Delete(&models.Booking{})
	if result.Error != nil {
		return false, errors.Wrapf(result.Error, "delete booking for week %d in %d", weekNumber, resolvedYear)
	}
	return result.RowsAffected > 0, nil
}

func (s *BookingStore) GetBooking(id string) (models.Booking, error) {
	var booking models.Booking
	if err := s.database.Where("id = ?", id).First(&booking).Error; err != nil {
		return models.Booking{}, notFound(err, "booking %s", id)
	}
	return booking, nil
}

func (s *BookingStore) GetBookingsByUser(userID string, year *int) ([]models.Booking, error) {
	return s.listBookings(year, "user_id = ?", userID)
}

func (s *BookingStore) GetBookingsByWeek(weekNumber int, year *int) ([]models.Booking, error) {
	return s.listBookings(year, "week_number = ?", weekNumber)
}

func (s *BookingStore) GetBookingsByPeriod(period models.PeriodID, year *int) ([]models.Booking, error) {
	return s.listBookings(year, "period = ?", period)
}

func (s *BookingStore) GetAllBookings(year *int) ([]models.Booking, error) {
	return s.listBookings(year, "")
}

func (s *BookingStore) GetWeekBookings(weekNumber int, year *int) ([]models.WeekBooking, error) {
	resolvedYear := store.ResolveYear(year, s.CurrentYear())
	roster := make([]models.WeekBooking, 0)
	err := s.database.
		Table("bookings").
		Select("users.id AS user_id, users.username AS username").
		Joins("JOIN users ON users.id = bookings.user_id").
		Where("bookings.week_number = ? AND bookings.year = ?", weekNumber, resolvedYear).
		Order("bookings.created_at ASC").
		Scan(&roster).Error
	if err != nil {
		return nil, errors.Wrapf(err, "load roster for week %d in %d", weekNumber, resolvedYear)
	}
	return roster, nil
}

func (s *BookingStore) listBookings(year *int, condition string, args ...any) ([]models.Booking, error) {
	resolvedYear := store.ResolveYear(year, s.CurrentYear())
	query := s.database.Where("year = ?", resolvedYear)
	if condition != "" {
		query = query.Where(condition, args...)
	}

	bookings := make([]models.Booking, 0)
	if err := query.Order("week_number ASC").Order("created_at ASC").Find(&bookings).Error; err != nil {
		return nil, errors.Wrap(err, "load bookings")
	}
	return bookings, nil
}

func ensureFree(tx *gorm.DB, booking models.Booking, excludeID string) error {
	query := tx.Model(&models.Booking{}).
		Where("user_id = ? AND week_number = ? AND year = ?", booking.UserID, booking.WeekNumber, booking.Year)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var taken int64
	if err := query.Count(&taken).Error; err != nil {
		return errors.Wrap(err, "check booking uniqueness")
	}
	if taken > 0 {
		return store.DuplicateBookingError(booking.WeekNumber, booking.Year)
	}
	return nil
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Wrapf(models.ErrNotFound, format, args...)
	}
	return errors.Wrapf(err, format, args...)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
