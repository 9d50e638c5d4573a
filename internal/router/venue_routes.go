package router

import (
	"github.com/labstack/echo/v4"

	"github.com/stagelink/artist-venue-booking/internal/handler"
	"github.com/stagelink/artist-venue-booking/internal/middleware"
)

// RegisterVenue registers venue-scoped endpoints under /v1. Opening a
// booking is the one action only venues can take; everything after that
// is shared with the artist and lives in RegisterWorkflow.
func RegisterVenue(e *echo.Echo, bookings *handler.BookingHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("VENUE"),
	)
	g.POST("/bookings", bookings.Create)
}
