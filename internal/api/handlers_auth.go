package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"github.com/terraincognita07/gardenweeks/internal/metrics"
	"github.com/terraincognita07/gardenweeks/internal/services"
)

type meResponse struct {
	services.UserWithStats
	Progress services.BookingProgress `json:"progress"`
}

func (handler *Handler) Register(c *fiber.Ctx) error {
	var input credentialsInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	user, err := handler.auth.Register(input.Username, input.Password)
	if err != nil {
		return respondServiceError(c, err, "failed to create account")
	}
	handler.metrics.Registrations.Inc()
	log.WithField("user_id", user.ID).Info("account registered")

	if err := handler.setAuthCookie(c, &user); err != nil {
		return respondServiceError(c, err, "failed to create session")
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	limiterKey := clientKey(c)
	now := handler.now()
	if handler.loginLimiter.blocked(limiterKey, now) {
		handler.metrics.Logins.WithLabelValues(metrics.ResultThrottled).Inc()
		return apiError(c, fiber.StatusTooManyRequests, "too many login attempts")
	}

	var input credentialsInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	user, err := handler.auth.Authenticate(input.Username, input.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			handler.loginLimiter.recordFailure(limiterKey, now)
			handler.metrics.Logins.WithLabelValues(metrics.ResultFailure).Inc()
		}
		return respondServiceError(c, err, "failed to sign in")
	}
	handler.loginLimiter.clear(limiterKey)
	handler.metrics.Logins.WithLabelValues(metrics.ResultSuccess).Inc()

	if err := handler.setAuthCookie(c, &user); err != nil {
		return respondServiceError(c, err, "failed to create session")
	}

	stats, err := handler.bookings.GetUserWithStats(user.ID)
	if err != nil {
		return respondServiceError(c, err, "failed to load user")
	}
	return c.JSON(stats)
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	claims, _ := currentClaims(c)
	if err := handler.revokeSession(c, claims); err != nil {
		return respondServiceError(c, err, "failed to end session")
	}
	handler.clearAuthCookie(c)
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) Me(c *fiber.Ctx) error {
	user, _ := currentUser(c)

	stats, err := handler.bookings.GetUserWithStats(user.ID)
	if err != nil {
		return respondServiceError(c, err, "failed to load user")
	}
	progress, err := handler.bookings.GetBookingProgress(user.ID)
	if err != nil {
		return respondServiceError(c, err, "failed to load booking progress")
	}
	return c.JSON(meResponse{UserWithStats: stats, Progress: progress})
}
