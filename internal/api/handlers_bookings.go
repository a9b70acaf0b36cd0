package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"github.com/terraincognita07/gardenweeks/internal/metrics"
	"github.com/terraincognita07/gardenweeks/internal/models"
	"github.com/terraincognita07/gardenweeks/internal/services"
)

func (handler *Handler) ListBookings(c *fiber.Ctx) error {
	year, err := queryYear(c)
	if err != nil {
		return respondServiceError(c, err, "")
	}

	bookings, err := handler.bookings.ListBookings(currentActor(c), year)
	if err != nil {
		return respondServiceError(c, err, "failed to load bookings")
	}
	return c.JSON(bookings)
}

func (handler *Handler) CreateBooking(c *fiber.Ctx) error {
	input, err := parseBookingInput(c)
	if err != nil {
		return respondServiceError(c, err, "")
	}

	booking, err := handler.bookings.BookWeek(currentActor(c), *input.WeekNumber, input.Year)
	return handler.respondCreatedBooking(c, booking, err)
}

func (handler *Handler) UpdateBooking(c *fiber.Ctx) error {
	var input rescheduleInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	update := input.update()
	if update.IsEmpty() {
		return apiError(c, fiber.StatusBadRequest, "nothing to update")
	}

	booking, err := handler.bookings.RescheduleBooking(currentActor(c), c.Params("id"), update)
	if err != nil {
		return respondServiceError(c, err, "failed to update booking")
	}
	handler.metrics.BookingsMoved.Inc()
	return c.JSON(booking)
}

func (handler *Handler) DeleteBooking(c *fiber.Ctx) error {
	if err := handler.bookings.CancelBooking(currentActor(c), c.Params("id")); err != nil {
		return respondServiceError(c, err, "failed to delete booking")
	}
	handler.metrics.BookingsCancelled.Inc()
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) DeleteBookingByWeek(c *fiber.Ctx) error {
	actor := currentActor(c)
	return handler.cancelWeek(c, actor, actor.UserID)
}

func (handler *Handler) cancelWeek(c *fiber.Ctx, actor services.Actor, targetUserID string) error {
	week, err := paramInt(c, "week")
	if err != nil {
		return respondServiceError(c, err, "")
	}
	year, err := queryYear(c)
	if err != nil {
		return respondServiceError(c, err, "")
	}

	if err := handler.bookings.CancelWeek(actor, targetUserID, week, year); err != nil {
		return respondServiceError(c, err, "failed to delete booking")
	}
	handler.metrics.BookingsCancelled.Inc()
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) respondCreatedBooking(c *fiber.Ctx, booking models.Booking, err error) error {
	if err != nil {
		handler.metrics.BookingsCreated.WithLabelValues(bookingResult(err)).Inc()
		return respondServiceError(c, err, "failed to create booking")
	}

	handler.metrics.BookingsCreated.WithLabelValues(metrics.ResultSuccess).Inc()
	log.WithFields(log.Fields{
		"booking_id": booking.ID,
		"user_id":    booking.UserID,
		"week":       booking.WeekNumber,
		"year":       booking.Year,
	}).Info("week booked")
	return c.Status(fiber.StatusCreated).JSON(booking)
}

func parseBookingInput(c *fiber.Ctx) (bookingInput, error) {
	var input bookingInput
	if err := c.BodyParser(&input); err != nil {
		return bookingInput{}, inputError("invalid input")
	}
	if input.WeekNumber == nil {
		return bookingInput{}, inputError("weekNumber is required")
	}
	return input, nil
}

func bookingResult(err error) string {
	switch {
	case errors.Is(err, models.ErrDuplicateBooking):
		return metrics.ResultConflict
	case errors.Is(err, models.ErrInvalidWeek), errors.Is(err, models.ErrNotFound):
		return metrics.ResultInvalid
	default:
		return metrics.ResultFailure
	}
}
