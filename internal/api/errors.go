package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"github.com/terraincognita07/gardenweeks/internal/models"
	"github.com/terraincognita07/gardenweeks/internal/services"
)

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// respondServiceError maps domain and service errors onto HTTP statuses.
// Anything unrecognized is logged and reported as a generic 500.
func respondServiceError(c *fiber.Ctx, err error, fallback string) error {
	var badInput inputError
	switch {
	case errors.As(err, &badInput):
		return apiError(c, fiber.StatusBadRequest, badInput.Error())
	case errors.Is(err, models.ErrInvalidWeek):
		return apiError(c, fiber.StatusBadRequest, "week must be between 14 and 44")
	case errors.Is(err, services.ErrInvalidYear),
		errors.Is(err, services.ErrInvalidUsername),
		errors.Is(err, services.ErrInvalidPassword):
		return apiError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrDuplicateBooking):
		return apiError(c, fiber.StatusConflict, "you already have a booking for this week")
	case errors.Is(err, services.ErrUsernameTaken):
		return apiError(c, fiber.StatusConflict, "username already exists")
	case errors.Is(err, models.ErrNotFound):
		return apiError(c, fiber.StatusNotFound, "not found")
	case errors.Is(err, services.ErrForbidden):
		return apiError(c, fiber.StatusForbidden, "forbidden")
	case errors.Is(err, services.ErrInvalidCredentials):
		return apiError(c, fiber.StatusUnauthorized, "invalid credentials")
	}

	entry := log.WithError(err).WithField("path", c.Path())
	if user, ok := currentUser(c); ok {
		entry = entry.WithField("user_id", user.ID)
	}
	if bookingID := c.Params("id"); bookingID != "" {
		entry = entry.WithField("booking_id", bookingID)
	}
	entry.Error(fallback)
	return apiError(c, fiber.StatusInternalServerError, fallback)
}
