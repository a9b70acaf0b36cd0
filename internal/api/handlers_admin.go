package api

import "github.com/gofiber/fiber/v2"

func (handler *Handler) AdminListBookings(c *fiber.Ctx) error {
	year, err := queryYear(c)
	if err != nil {
		return respondServiceError(c, err, "")
	}

	bookings, err := handler.bookings.ListAllBookings(currentActor(c), year)
	if err != nil {
		return respondServiceError(c, err, "failed to load bookings")
	}
	return c.JSON(bookings)
}

func (handler *Handler) AdminCreateBooking(c *fiber.Ctx) error {
	input, err := parseBookingInput(c)
	if err != nil {
		return respondServiceError(c, err, "")
	}
	if input.UserID == "" {
		return apiError(c, fiber.StatusBadRequest, "userId is required")
	}

	booking, err := handler.bookings.BookWeekForUser(currentActor(c), input.UserID, *input.WeekNumber, input.Year)
	return handler.respondCreatedBooking(c, booking, err)
}

func (handler *Handler) AdminDeleteUserWeek(c *fiber.Ctx) error {
	return handler.cancelWeek(c, currentActor(c), c.Params("userId"))
}

func (handler *Handler) AdminListUsers(c *fiber.Ctx) error {
	users, err := handler.bookings.ListUsers(currentActor(c))
	if err != nil {
		return respondServiceError(c, err, "failed to load users")
	}
	return c.JSON(users)
}
