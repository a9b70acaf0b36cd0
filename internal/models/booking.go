package models

import "time"

type Booking struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID     string    `gorm:"type:varchar(36);not null;uniqueIndex:uidx_bookings_user_week_year;index" json:"userId"`
	WeekNumber int       `gorm:"not null;uniqueIndex:uidx_bookings_user_week_year" json:"weekNumber"`
	Year       int       `gorm:"not null;uniqueIndex:uidx_bookings_user_week_year;index:idx_bookings_year_period" json:"year"`
	Period     PeriodID  `gorm:"not null;index:idx_bookings_year_period" json:"period"`
	CreatedAt  time.Time `gorm:"not null" json:"createdAt"`
}

// WeekBooking is one row of a week roster.
type WeekBooking struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}
