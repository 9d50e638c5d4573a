package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/stagelink/artist-venue-booking/internal/document"
	"github.com/stagelink/artist-venue-booking/internal/lifecycle"
	"github.com/stagelink/artist-venue-booking/internal/model"
	"github.com/stagelink/artist-venue-booking/internal/queue"
	"github.com/stagelink/artist-venue-booking/internal/repository"
	queuepublisher "github.com/stagelink/artist-venue-booking/internal/service"
)

// ContractHandler drives contract generation and sign-off. A contract's
// content is rendered once at generation time and never edited;
// regenerating after the booking or rider changed produces a new
// version row, which is what the version listing compares.
type ContractHandler struct {
	Contracts *repository.ContractRepo
	Bookings  *repository.BookingRepo
	Riders    *repository.RiderRepo
	Artists   *repository.ArtistRepo
	Users     *repository.UserRepo
	Notifier  *queuepublisher.Publisher
}

func NewContractHandler(contracts *repository.ContractRepo, bookings *repository.BookingRepo, riders *repository.RiderRepo, artists *repository.ArtistRepo, users *repository.UserRepo, notifier *queuepublisher.Publisher) *ContractHandler {
	if contracts == nil || bookings == nil || riders == nil || artists == nil || users == nil {
		panic("nil repository passed to NewContractHandler")
	}
	return &ContractHandler{
		Contracts: contracts,
		Bookings:  bookings,
		Riders:    riders,
		Artists:   artists,
		Users:     users,
		Notifier:  notifier,
	}
}

type contractResp struct {
	ID              uint64     `json:"id"`
	BookingID       uint64     `json:"booking_id"`
	RiderTemplateID *uint64    `json:"rider_template_id,omitempty"`
	Number          string     `json:"number"`
	Type            string     `json:"type"`
	Title           string     `json:"title"`
	Version         uint32     `json:"version"`
	Content         string     `json:"content,omitempty"`
	Status          string     `json:"status"`
	RejectReason    *string    `json:"reject_reason,omitempty"`
	ArtistSignedAt  *time.Time `json:"artist_signed_at,omitempty"`
	VenueSignedAt   *time.Time `json:"venue_signed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func toContractResp(m model.Contract, withContent bool) contractResp {
	r := contractResp{
		ID:              m.ID,
		BookingID:       m.BookingID,
		RiderTemplateID: m.RiderTemplateID,
		Number:          m.Number,
		Type:            m.Type,
		Title:           m.Title,
		Version:         m.Version,
		Status:          m.Status,
		RejectReason:    m.RejectReason,
		ArtistSignedAt:  m.ArtistSignedAt,
		VenueSignedAt:   m.VenueSignedAt,
		CreatedAt:       m.CreatedAt,
	}
	if withContent {
		r.Content = m.Content
	}
	return r
}

func (h *ContractHandler) notify(c echo.Context, ev queue.NotificationEvent) {
	if h.Notifier == nil {
		return
	}
	ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	_ = h.Notifier.Notify(c.Request().Context(), ev)
}

// loadParties resolves the booking behind a contract and checks the
// caller is one of its two sides.
func (h *ContractHandler) loadParties(c echo.Context, userID uint64, m model.Contract) (model.Booking, lifecycle.Party, error) {
	b, err := h.Bookings.GetByID(c.Request().Context(), m.BookingID)
	if err != nil {
		return b, "", err
	}
	caller, err := lifecycle.PartyOf(userID, b.ArtistID, b.VenueID)
	return b, caller, err
}

type generateContractReq struct {
	Type  string `json:"type"`
	Title string `json:"title"`
}

// Generate handles POST /v1/bookings/:id/contracts. Either party of a
// confirmed (or still pending) booking can generate; the rendered text
// snapshots the booking and attached rider as they are right now.
func (h *ContractHandler) Generate(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req generateContractReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctype := strings.ToUpper(strings.TrimSpace(req.Type))
	if ctype == "" {
		ctype = "PERFORMANCE"
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "PERFORMANCE AGREEMENT"
	}

	ctx := c.Request().Context()
	tx, err := h.Contracts.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Locking the booking serializes version assignment per booking.
	b, err := h.Bookings.GetForUpdateTx(ctx, tx, bookingID)
	if err != nil {
		return workflowError(c, err, "booking not found")
	}
	caller, err := lifecycle.PartyOf(userID, b.ArtistID, b.VenueID)
	if err != nil {
		return workflowError(c, err, "")
	}
	if lifecycle.BookingStatus(b.Status) == lifecycle.BookingCancelled {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking is cancelled"})
	}

	snap := document.Snapshot{
		Number:       uuid.NewString(),
		Title:        title,
		VenueName:    b.VenueName,
		VenueAddress: b.VenueAddress,
		EventAt:      b.EventAt,
		FeeCents:     b.OfferedFeeCents,
		EventDetails: b.EventDetails,
		GeneratedAt:  time.Now().UTC(),
	}
	if profile, err := h.Artists.GetByUserID(ctx, b.ArtistID); err == nil {
		snap.ArtistName = profile.StageName
	} else if u, err := h.Users.GetByID(ctx, b.ArtistID); err == nil {
		snap.ArtistName = u.Email
	} else {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load artist failed"})
	}
	if b.RiderTemplateID != nil {
		rider, err := h.Riders.GetByID(ctx, *b.RiderTemplateID)
		if err != nil {
			return workflowError(c, err, "rider not found")
		}
		snap.RiderName = rider.Name
		snap.RiderSound = rider.Sound
		snap.RiderLighting = rider.Lighting
		snap.RiderStage = rider.Stage
		snap.RiderHosp = rider.Hospitality
		snap.RiderPayTerms = rider.PaymentTerms
		snap.RiderExtras = rider.Extras
	}

	m := model.Contract{
		BookingID:       b.ID,
		RiderTemplateID: b.RiderTemplateID,
		Number:          snap.Number,
		Type:            ctype,
		Title:           title,
	}
	// Version is assigned in CreateTx; render after so the header shows it.
	if err := h.Contracts.CreateTx(ctx, tx, &m); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create contract failed"})
	}
	snap.Version = m.Version
	content, err := document.Render(snap)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "render contract failed"})
	}
	m.Content = content
	if err := h.Contracts.SetContentTx(ctx, tx, m.ID, content); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store contract failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	h.notify(c, queue.NotificationEvent{
		RecipientID: counterpartID(caller, b.ArtistID, b.VenueID),
		Kind:        queue.KindContractGenerated,
		BookingID:   b.ID,
		Payload:     map[string]string{"number": m.Number, "version": itoa(uint64(m.Version))},
	})
	return c.JSON(http.StatusCreated, toContractResp(m, true))
}

// Send handles POST /v1/contracts/:id/send and moves a draft out for
// signatures.
func (h *ContractHandler) Send(c echo.Context) error {
	return h.transition(c, "send")
}

// Cancel handles POST /v1/contracts/:id/cancel. A contract that is not
// fully signed yet can be withdrawn by either party.
func (h *ContractHandler) Cancel(c echo.Context) error {
	return h.transition(c, "cancel")
}

// transition covers the two unconditional status moves, send and
// cancel, which share everything but the guard and the target state.
func (h *ContractHandler) transition(c echo.Context, action string) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid contract id"})
	}

	ctx := c.Request().Context()
	tx, err := h.Contracts.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	m, err := h.Contracts.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		return workflowError(c, err, "contract not found")
	}
	b, caller, err := h.loadParties(c, userID, m)
	if err != nil {
		return workflowError(c, err, "booking not found")
	}

	from := lifecycle.ContractStatus(m.Status)
	var to lifecycle.ContractStatus
	switch action {
	case "send":
		if err := lifecycle.CanSend(from); err != nil {
			return workflowError(c, err, "only a draft can be sent")
		}
		to = lifecycle.ContractPendingSignatures
	case "cancel":
		if err := lifecycle.CanCancel(from); err != nil {
			return workflowError(c, err, "contract can no longer be cancelled")
		}
		to = lifecycle.ContractCancelled
	}
	if err := h.Contracts.UpdateStatusCAS(ctx, tx, id, from, to); err != nil {
		return workflowError(c, err, "contract changed concurrently")
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	h.notify(c, queue.NotificationEvent{
		RecipientID: counterpartID(caller, b.ArtistID, b.VenueID),
		Kind:        queue.KindContractStatus,
		BookingID:   m.BookingID,
		Payload:     map[string]string{"from": string(from), "to": string(to)},
	})
	m.Status = string(to)
	return c.JSON(http.StatusOK, toContractResp(m, false))
}

// Sign handles POST /v1/contracts/:id/sign. Each side signs at most
// once; signing a draft implicitly sends it, and the second signature
// closes the contract as SIGNED.
func (h *ContractHandler) Sign(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid contract id"})
	}

	ctx := c.Request().Context()
	tx, err := h.Contracts.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	m, err := h.Contracts.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		return workflowError(c, err, "contract not found")
	}
	b, caller, err := h.loadParties(c, userID, m)
	if err != nil {
		return workflowError(c, err, "booking not found")
	}

	from := lifecycle.ContractStatus(m.Status)
	alreadySigned := m.ArtistSignedAt != nil
	if caller == lifecycle.PartyVenue {
		alreadySigned = m.VenueSignedAt != nil
	}
	if err := lifecycle.CanSign(from, alreadySigned); err != nil {
		return workflowError(c, err, "contract is not open for your signature")
	}

	artistSigned := m.ArtistSignedAt != nil || caller == lifecycle.PartyArtist
	venueSigned := m.VenueSignedAt != nil || caller == lifecycle.PartyVenue
	to := lifecycle.StatusAfterSign(artistSigned, venueSigned)
	now := time.Now().UTC()
	if err := h.Contracts.SignTx(ctx, tx, id, caller, now, to); err != nil {
		return workflowError(c, err, "already signed by your side")
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	h.notify(c, queue.NotificationEvent{
		RecipientID: counterpartID(caller, b.ArtistID, b.VenueID),
		Kind:        queue.KindContractStatus,
		BookingID:   m.BookingID,
		Payload:     map[string]string{"from": string(from), "to": string(to), "signed_by": string(caller)},
	})

	m.Status = string(to)
	if caller == lifecycle.PartyArtist {
		m.ArtistSignedAt = &now
	} else {
		m.VenueSignedAt = &now
	}
	return c.JSON(http.StatusOK, toContractResp(m, false))
}

type rejectContractReq struct {
	Reason string `json:"reason"`
}

// Reject handles POST /v1/contracts/:id/reject. Any non-terminal
// contract can be rejected with a reason, no matter how many
// signatures it has collected.
func (h *ContractHandler) Reject(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid contract id"})
	}
	var req rejectContractReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reason is required"})
	}

	ctx := c.Request().Context()
	tx, err := h.Contracts.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	m, err := h.Contracts.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		return workflowError(c, err, "contract not found")
	}
	b, caller, err := h.loadParties(c, userID, m)
	if err != nil {
		return workflowError(c, err, "booking not found")
	}

	from := lifecycle.ContractStatus(m.Status)
	if err := lifecycle.CanReject(from); err != nil {
		return workflowError(c, err, "contract is already closed")
	}
	if err := h.Contracts.RejectTx(ctx, tx, id, from, reason); err != nil {
		return workflowError(c, err, "contract changed concurrently")
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	h.notify(c, queue.NotificationEvent{
		RecipientID: counterpartID(caller, b.ArtistID, b.VenueID),
		Kind:        queue.KindContractStatus,
		BookingID:   m.BookingID,
		Payload:     map[string]string{"from": string(from), "to": string(lifecycle.ContractRejected), "reason": reason},
	})
	m.Status = string(lifecycle.ContractRejected)
	m.RejectReason = &reason
	return c.JSON(http.StatusOK, toContractResp(m, false))
}

// Get handles GET /v1/contracts/:id and returns the full contract
// including its rendered text.
func (h *ContractHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid contract id"})
	}
	m, err := h.Contracts.GetByID(c.Request().Context(), id)
	if err != nil {
		return workflowError(c, err, "contract not found")
	}
	if _, _, err := h.loadParties(c, userID, m); err != nil {
		return workflowError(c, err, "")
	}
	return c.JSON(http.StatusOK, toContractResp(m, true))
}

// ListVersions handles GET /v1/bookings/:id/contracts. All versions are
// returned newest first so clients can diff regenerations; content is
// omitted from the listing.
func (h *ContractHandler) ListVersions(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Bookings.GetByID(c.Request().Context(), bookingID)
	if err != nil {
		return workflowError(c, err, "booking not found")
	}
	if _, err := lifecycle.PartyOf(userID, b.ArtistID, b.VenueID); err != nil {
		return workflowError(c, err, "")
	}
	items, err := h.Contracts.ListByBooking(c.Request().Context(), bookingID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]contractResp, 0, len(items))
	for _, m := range items {
		out = append(out, toContractResp(m, false))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}
