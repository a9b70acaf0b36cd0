package api

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/gardenweeks/internal/store"
)

type credentialsInput struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type bookingInput struct {
	UserID     string `json:"userId"`
	WeekNumber *int   `json:"weekNumber"`
	Year       *int   `json:"year"`
}

type rescheduleInput struct {
	WeekNumber *int `json:"weekNumber"`
	Year       *int `json:"year"`
}

func (input rescheduleInput) update() store.BookingUpdate {
	return store.BookingUpdate{WeekNumber: input.WeekNumber, Year: input.Year}
}

type inputError string

func (err inputError) Error() string {
	return string(err)
}

// queryYear reads the optional ?year= filter. A missing value means the
// store's current year.
func queryYear(c *fiber.Ctx) (*int, error) {
	raw := strings.TrimSpace(c.Query("year"))
	if raw == "" {
		return nil, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year <= 0 {
		return nil, inputError("year must be a positive integer")
	}
	return &year, nil
}

func paramInt(c *fiber.Ctx, name string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(c.Params(name)))
	if err != nil {
		return 0, inputError(name + " must be an integer")
	}
	return value, nil
}
