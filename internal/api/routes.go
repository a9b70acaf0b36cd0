package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	app.Get("/metrics", adaptor.HTTPHandler(handler.metrics.Handler()))
	registerAPIRoutes(app, handler)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api")

	api.Post("/register", handler.Register)
	api.Post("/login", handler.Login)
	api.Post("/logout", handler.AuthRequired, handler.Logout)
	api.Get("/me", handler.AuthRequired, handler.Me)

	periods := api.Group("/periods", handler.AuthRequired)
	periods.Get("", handler.GetPeriods)
	periods.Get("/:id", handler.GetPeriod)

	api.Get("/weeks/:week/bookings", handler.AuthRequired, handler.GetWeekBookings)

	bookings := api.Group("/bookings", handler.AuthRequired)
	bookings.Get("", handler.ListBookings)
	bookings.Post("", handler.CreateBooking)
	bookings.Delete("/week/:week", handler.DeleteBookingByWeek)
	bookings.Patch("/:id", handler.UpdateBooking)
	bookings.Delete("/:id", handler.DeleteBooking)

	admin := api.Group("/admin", handler.AuthRequired, handler.AdminOnly)
	admin.Get("/bookings", handler.AdminListBookings)
	admin.Post("/bookings", handler.AdminCreateBooking)
	admin.Get("/users", handler.AdminListUsers)
	admin.Delete("/users/:userId/weeks/:week", handler.AdminDeleteUserWeek)
}
