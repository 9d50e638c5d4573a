package router

import (
	"github.com/labstack/echo/v4"

	"github.com/stagelink/artist-venue-booking/internal/handler"
	"github.com/stagelink/artist-venue-booking/internal/middleware"
)

// RegisterWorkflow registers the endpoints both parties of a booking
// share: lifecycle transitions, rider acknowledgment negotiation and
// contract sign-off. Routes accept either role; which side may perform
// which action on which booking is decided per request by the workflow
// guards, not by route-level role checks.
func RegisterWorkflow(e *echo.Echo, bookings *handler.BookingHandler, acks *handler.AckHandler, contracts *handler.ContractHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ARTIST", "VENUE"),
	)

	g.GET("/bookings", bookings.List)
	g.GET("/bookings/:id", bookings.Get)
	g.PATCH("/bookings/:id/status", bookings.UpdateStatus)

	g.GET("/acknowledgments/:id", acks.Timeline)
	g.POST("/acknowledgments/:id/acknowledge", acks.Acknowledge)
	g.POST("/acknowledgments/:id/proposals", acks.Propose)
	g.POST("/acknowledgments/:id/respond", acks.Respond)
	g.POST("/acknowledgments/:id/finalize", acks.Finalize)

	g.POST("/bookings/:id/contracts", contracts.Generate)
	g.GET("/bookings/:id/contracts", contracts.ListVersions)
	g.GET("/contracts/:id", contracts.Get)
	g.POST("/contracts/:id/send", contracts.Send)
	g.POST("/contracts/:id/sign", contracts.Sign)
	g.POST("/contracts/:id/reject", contracts.Reject)
	g.POST("/contracts/:id/cancel", contracts.Cancel)
}
