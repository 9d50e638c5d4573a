package router

import (
	"github.com/labstack/echo/v4"

	"github.com/stagelink/artist-venue-booking/internal/handler"
	"github.com/stagelink/artist-venue-booking/internal/middleware"
)

// RegisterArtist registers artist-scoped endpoints under /v1. All
// routes require a valid JWT and the ARTIST role. Artists manage their
// public profile and rider templates, and share a rider on a booking
// to open the acknowledgment workflow.
func RegisterArtist(e *echo.Echo, profiles *handler.ArtistHandler, riders *handler.RiderHandler, acks *handler.AckHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ARTIST"),
	)
	g.PUT("/artist/profile", profiles.UpsertProfile)
	g.GET("/artist/profile", profiles.GetOwnProfile)

	g.POST("/riders", riders.Create)
	g.GET("/riders", riders.List)
	g.GET("/riders/:id", riders.Get)
	g.PUT("/riders/:id", riders.Update)
	g.DELETE("/riders/:id", riders.Delete)

	// Sharing is artist-only; the rest of the acknowledgment workflow
	// is two-sided and registered in RegisterWorkflow.
	g.POST("/bookings/:id/rider/share", acks.Share)
}
