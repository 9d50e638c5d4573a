package handler

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stagelink/artist-venue-booking/internal/lifecycle"
	"github.com/stagelink/artist-venue-booking/internal/model"
	"github.com/stagelink/artist-venue-booking/internal/queue"
	"github.com/stagelink/artist-venue-booking/internal/repository"
	queuepublisher "github.com/stagelink/artist-venue-booking/internal/service"
)

// BookingHandler drives the booking lifecycle. Transitions run inside
// a transaction: the booking row is locked, the transition guard is
// evaluated against the locked snapshot, and the status write is a
// compare-and-swap. Notifications are published after commit and never
// affect the outcome.
type BookingHandler struct {
	Bookings *repository.BookingRepo
	Artists  *repository.ArtistRepo
	Riders   *repository.RiderRepo
	Notifier *queuepublisher.Publisher
}

func NewBookingHandler(bookings *repository.BookingRepo, artists *repository.ArtistRepo, riders *repository.RiderRepo, notifier *queuepublisher.Publisher) *BookingHandler {
	if bookings == nil || artists == nil || riders == nil {
		panic("nil repository passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: bookings, Artists: artists, Riders: riders, Notifier: notifier}
}

type createBookingReq struct {
	ArtistID        uint64  `json:"artist_id"` // public artist profile id
	EventAt         string  `json:"event_at"`  // RFC 3339
	VenueName       string  `json:"venue_name"`
	VenueAddress    string  `json:"venue_address"`
	OfferedFeeCents uint32  `json:"offered_fee_cents"`
	EventDetails    string  `json:"event_details"`
	RiderTemplateID *uint64 `json:"rider_template_id"` // optional, must belong to the artist
}

type bookingResp struct {
	ID              uint64    `json:"id"`
	ArtistID        uint64    `json:"artist_id"`
	VenueID         uint64    `json:"venue_id"`
	EventAt         time.Time `json:"event_at"`
	VenueName       string    `json:"venue_name"`
	VenueAddress    string    `json:"venue_address"`
	OfferedFeeCents uint32    `json:"offered_fee_cents"`
	EventDetails    string    `json:"event_details,omitempty"`
	Status          string    `json:"status"`
	RiderTemplateID *uint64   `json:"rider_template_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toBookingResp(b model.Booking) bookingResp {
	return bookingResp{
		ID:              b.ID,
		ArtistID:        b.ArtistID,
		VenueID:         b.VenueID,
		EventAt:         b.EventAt,
		VenueName:       b.VenueName,
		VenueAddress:    b.VenueAddress,
		OfferedFeeCents: b.OfferedFeeCents,
		EventDetails:    b.EventDetails,
		Status:          b.Status,
		RiderTemplateID: b.RiderTemplateID,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func (h *BookingHandler) notify(c echo.Context, ev queue.NotificationEvent) {
	if h.Notifier == nil {
		return
	}
	ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	_ = h.Notifier.Notify(c.Request().Context(), ev)
}

// Create handles POST /v1/bookings. Only venues open bookings; the
// artist is addressed by public profile id and stored by account id so
// party checks compare like with like. New bookings start PENDING.
func (h *BookingHandler) Create(c echo.Context) error {
	venueID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.VenueName = strings.TrimSpace(req.VenueName)
	req.VenueAddress = strings.TrimSpace(req.VenueAddress)
	if req.ArtistID == 0 || req.VenueName == "" || req.VenueAddress == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "artist_id, venue_name and venue_address are required"})
	}
	eventAt, err := time.Parse(time.RFC3339, req.EventAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_at must be RFC 3339"})
	}
	eventAt = eventAt.UTC()
	if !eventAt.After(time.Now().UTC()) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_at must be in the future"})
	}

	ctx := c.Request().Context()
	profile, err := h.Artists.GetByID(ctx, req.ArtistID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "artist not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if profile.UserID == venueID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot book yourself"})
	}
	if req.RiderTemplateID != nil {
		rider, err := h.Riders.GetByID(ctx, *req.RiderTemplateID)
		if err != nil {
			return workflowError(c, err, "rider not found")
		}
		if rider.ArtistID != profile.UserID {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "rider does not belong to this artist"})
		}
	}

	b := model.Booking{
		ArtistID:        profile.UserID,
		VenueID:         venueID,
		EventAt:         eventAt,
		VenueName:       req.VenueName,
		VenueAddress:    req.VenueAddress,
		OfferedFeeCents: req.OfferedFeeCents,
		EventDetails:    req.EventDetails,
		Status:          string(lifecycle.BookingPending),
		RiderTemplateID: req.RiderTemplateID,
	}
	if err := h.Bookings.Create(ctx, &b); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create booking failed"})
	}

	h.notify(c, queue.NotificationEvent{
		RecipientID: b.ArtistID,
		Kind:        queue.KindBookingRequested,
		BookingID:   b.ID,
		Payload: map[string]string{
			"venue_name": b.VenueName,
			"event_at":   b.EventAt.Format(time.RFC3339),
		},
	})
	return c.JSON(http.StatusCreated, toBookingResp(b))
}

type bookingStatusReq struct {
	Status string `json:"status"` // CONFIRMED | CANCELLED | COMPLETED
}

// UpdateStatus handles POST /v1/bookings/:id/status. The target status
// names the edge; who may walk it and when is decided by the lifecycle
// rules against the row locked in this transaction.
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req bookingStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	to := lifecycle.BookingStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if !to.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	ctx := c.Request().Context()
	tx, err := h.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := h.Bookings.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		return workflowError(c, err, "booking not found")
	}
	caller, err := lifecycle.PartyOf(userID, b.ArtistID, b.VenueID)
	if err != nil {
		return workflowError(c, err, "")
	}
	from := lifecycle.BookingStatus(b.Status)
	if err := lifecycle.CanTransitionBooking(from, to, caller, b.EventAt, time.Now().UTC()); err != nil {
		return workflowError(c, err, "transition not allowed from "+b.Status)
	}
	if err := h.Bookings.UpdateStatusCAS(ctx, tx, id, from, to); err != nil {
		return workflowError(c, err, "booking status changed concurrently")
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	recipient := b.VenueID
	if caller == lifecycle.PartyVenue {
		recipient = b.ArtistID
	}
	h.notify(c, queue.NotificationEvent{
		RecipientID: recipient,
		Kind:        queue.KindBookingStatus,
		BookingID:   b.ID,
		Payload:     map[string]string{"from": string(from), "to": string(to)},
	})

	b.Status = string(to)
	return c.JSON(http.StatusOK, toBookingResp(b))
}

// Get handles GET /v1/bookings/:id. Only the two parties may view a
// booking.
func (h *BookingHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Bookings.GetByID(c.Request().Context(), id)
	if err != nil {
		return workflowError(c, err, "booking not found")
	}
	if _, err := lifecycle.PartyOf(userID, b.ArtistID, b.VenueID); err != nil {
		return workflowError(c, err, "")
	}
	return c.JSON(http.StatusOK, toBookingResp(b))
}

// List handles GET /v1/bookings and returns the caller's side of the
// marketplace: artists see bookings addressed to them, venues see
// bookings they opened.
func (h *BookingHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	role, _ := c.Get("role").(string)

	var items []model.Booking
	switch role {
	case "ARTIST":
		items, err = h.Bookings.ListByArtist(c.Request().Context(), userID)
	case "VENUE":
		items, err = h.Bookings.ListByVenue(c.Request().Context(), userID)
	default:
		return c.JSON(http.StatusForbidden, echo.Map{"error": "unknown role"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]bookingResp, 0, len(items))
	for _, b := range items {
		out = append(out, toBookingResp(b))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}
