package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/gardenweeks/internal/models"
)

func (handler *Handler) GetPeriods(c *fiber.Ctx) error {
	year, err := queryYear(c)
	if err != nil {
		return respondServiceError(c, err, "")
	}
	user, _ := currentUser(c)

	stats, err := handler.bookings.GetPeriodStats(user.ID, year)
	if err != nil {
		return respondServiceError(c, err, "failed to load periods")
	}
	return c.JSON(stats)
}

func (handler *Handler) GetPeriod(c *fiber.Ctx) error {
	periodID, err := paramInt(c, "id")
	if err != nil {
		return respondServiceError(c, err, "")
	}
	year, err := queryYear(c)
	if err != nil {
		return respondServiceError(c, err, "")
	}
	user, _ := currentUser(c)

	detail, err := handler.bookings.GetPeriodDetail(models.PeriodID(periodID), user.ID, year)
	if err != nil {
		return respondServiceError(c, err, "failed to load period")
	}
	return c.JSON(detail)
}

func (handler *Handler) GetWeekBookings(c *fiber.Ctx) error {
	week, err := paramInt(c, "week")
	if err != nil {
		return respondServiceError(c, err, "")
	}
	year, err := queryYear(c)
	if err != nil {
		return respondServiceError(c, err, "")
	}

	roster, err := handler.bookings.GetWeekRoster(week, year)
	if err != nil {
		return respondServiceError(c, err, "failed to load week bookings")
	}
	return c.JSON(roster)
}
