package db_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/gardenweeks/internal/db"
	"github.com/terraincognita07/gardenweeks/internal/models"
	"github.com/terraincognita07/gardenweeks/internal/store"
	"github.com/terraincognita07/gardenweeks/internal/store/storetest"
)

func TestBookingStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T, now time.Time) store.Store {
		t.Helper()

		database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "gardenweeks.db"), false)
		require.NoError(t, err)
		sqlDB, err := database.DB()
		require.NoError(t, err)
		t.Cleanup(func() { _ = sqlDB.Close() })

		return db.NewBookingStore(database, func() time.Time { return now })
	})
}

func TestBookingStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gardenweeks.db")
	clock := func() time.Time { return storetest.FixedNow }

	first, err := db.OpenSQLite(path, false)
	require.NoError(t, err)
	writer := db.NewBookingStore(first, clock)
	user, err := writer.CreateUser("anna", "hash")
	require.NoError(t, err)
	booking, err := writer.CreateBooking(user.ID, 20, nil)
	require.NoError(t, err)
	sqlDB, err := first.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	second, err := db.OpenSQLite(path, false)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := second.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	reader := db.NewBookingStore(second, clock)

	stored, err := reader.GetBooking(booking.ID)
	require.NoError(t, err)
	require.Equal(t, 20, stored.WeekNumber)
	require.Equal(t, storetest.FixedNow.Year(), stored.Year)
}

func TestBookingStoreCreateUserRejectsTakenUsername(t *testing.T) {
	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "gardenweeks.db"), false)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	bookings := db.NewBookingStore(database, func() time.Time { return storetest.FixedNow })

	_, err = bookings.CreateUser("anna", "hash")
	require.NoError(t, err)
	_, err = bookings.CreateUser(" ANNA ", "other-hash")
	require.ErrorIs(t, err, models.ErrUsernameTaken)

	users, err := bookings.GetAllUsers()
	require.NoError(t, err)
	require.Len(t, users, 1)
}
