package handler

import (
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

// AckHandler drives the rider acknowledgment workflow: the artist
// shares a rider on a booking, the venue acknowledges it as-is or opens
// a modification negotiation, and the parties alternate proposals until
// one side accepts or rejects. Every mutation locks the acknowledgment
// row so the turn-taking check and the write observe the same state.
type AckHandler struct {
	Acks     *repository.AckRepo
	Bookings *repository.BookingRepo
	Riders   *repository.RiderRepo
	Notifier *queuepublisher.Publisher
}

func NewAckHandler(acks *repository.AckRepo, bookings *repository.BookingRepo, riders *repository.RiderRepo, notifier *queuepublisher.Publisher) *AckHandler {
	if acks == nil || bookings == nil || riders == nil {
		panic("nil repository passed to NewAckHandler")
	}
	return &AckHandler{Acks: acks, Bookings: bookings, Riders: riders, Notifier: notifier}
}

type ackResp struct {
	ID              uint64    `json:"id"`
	BookingID       uint64    `json:"booking_id"`
	RiderTemplateID uint64    `json:"rider_template_id"`
	Status          string    `json:"status"`
	Notes           *string   `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toAckResp(a model.RiderAcknowledgment) ackResp {
	return ackResp{
		ID:              a.ID,
		BookingID:       a.BookingID,
		RiderTemplateID: a.RiderTemplateID,
		Status:          a.Status,
		Notes:           a.Notes,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

type proposalResp struct {
	Position      uint32    `json:"position"`
	ProposedBy    string    `json:"proposed_by"`
	FieldName     string    `json:"field_name"`
	ProposedValue string    `json:"proposed_value"`
	Reason        string    `json:"reason"`
	CreatedAt     time.Time `json:"created_at"`
}

func toProposalResp(p model.ModificationProposal) proposalResp {
	return proposalResp{
		Position:      p.Position,
		ProposedBy:    p.ProposedBy,
		FieldName:     p.FieldName,
		ProposedValue: p.ProposedValue,
		Reason:        p.Reason,
		CreatedAt:     p.CreatedAt,
	}
}

func (h *AckHandler) notify(c echo.Context, ev queue.NotificationEvent) {
	if h.Notifier == nil {
		return
	}
	ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	_ = h.Notifier.Notify(c.Request().Context(), ev)
}

// counterpartID returns the user id of the side opposite the caller.
func counterpartID(caller lifecycle.Party, artistID, venueID uint64) uint64 {
	if caller == lifecycle.PartyArtist {
		return venueID
	}
	return artistID
}

type shareReq struct {
	RiderTemplateID uint64 `json:"rider_template_id"`
}

// Share handles POST /v1/bookings/:id/rider/share. The artist attaches
// one of their rider templates to the booking and opens the
// acknowledgment in PENDING state. Repeating the call returns the
// existing acknowledgment unchanged, so shares are idempotent; swapping
// in a different rider after the venue has seen one is a conflict.
func (h *AckHandler) Share(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req shareReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx := c.Request().Context()
	tx, err := h.Acks.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := h.Bookings.GetForUpdateTx(ctx, tx, bookingID)
	if err != nil {
		return workflowError(c, err, "booking not found")
	}
	caller, err := lifecycle.PartyOf(userID, b.ArtistID, b.VenueID)
	if err != nil {
		return workflowError(c, err, "")
	}
	if caller != lifecycle.PartyArtist {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the artist shares a rider"})
	}
	if lifecycle.BookingStatus(b.Status).Terminal() {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking is closed"})
	}

	if req.RiderTemplateID != 0 {
		switch {
		case b.RiderTemplateID == nil:
			rider, err := h.Riders.GetByID(ctx, req.RiderTemplateID)
			if err != nil {
				return workflowError(c, err, "rider not found")
			}
			if rider.ArtistID != userID {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "not your rider template"})
			}
			if err := h.Bookings.AttachRiderTx(ctx, tx, b.ID, rider.ID); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "attach rider failed"})
			}
			b.RiderTemplateID = &rider.ID
		case *b.RiderTemplateID != req.RiderTemplateID:
			return c.JSON(http.StatusConflict, echo.Map{"error": "a different rider is already shared on this booking"})
		}
	}

	a, created, err := h.Acks.GetOrCreateTx(ctx, tx, b)
	if err != nil {
		return workflowError(c, err, "booking has no rider to share")
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	if created {
		h.notify(c, queue.NotificationEvent{
			RecipientID: b.VenueID,
			Kind:        queue.KindRiderShared,
			BookingID:   b.ID,
			Payload:     map[string]string{"acknowledgment_id": itoa(a.ID)},
		})
		return c.JSON(http.StatusCreated, toAckResp(a))
	}
	return c.JSON(http.StatusOK, toAckResp(a))
}

// Acknowledge handles POST /v1/acknowledgments/:id/acknowledge. The
// venue accepts the rider exactly as shared; ACKNOWLEDGED is terminal.
func (h *AckHandler) Acknowledge(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid acknowledgment id"})
	}

	ctx := c.Request().Context()
	tx, err := h.Acks.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	a, err := h.Acks.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		return workflowError(c, err, "acknowledgment not found")
	}
	caller, err := lifecycle.PartyOf(userID, a.ArtistID, a.VenueID)
	if err != nil {
		return workflowError(c, err, "")
	}
	status := lifecycle.AckStatus(a.Status)
	if err := lifecycle.CanAcknowledge(status, caller); err != nil {
		return workflowError(c, err, "rider is not awaiting acknowledgment")
	}
	if err := h.Acks.UpdateStatusCAS(ctx, tx, id, status, lifecycle.AckAcknowledged); err != nil {
		return workflowError(c, err, "acknowledgment changed concurrently")
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	h.notify(c, queue.NotificationEvent{
		RecipientID: a.ArtistID,
		Kind:        queue.KindRiderAcknowledged,
		BookingID:   a.BookingID,
	})
	a.Status = string(lifecycle.AckAcknowledged)
	return c.JSON(http.StatusOK, toAckResp(a))
}

type proposalReq struct {
	FieldName     string `json:"field_name"`
	ProposedValue string `json:"proposed_value"`
	Reason        string `json:"reason"`
}

// Propose handles POST /v1/acknowledgments/:id/proposals. The first
// proposal must come from the venue and moves the acknowledgment to
// MODIFICATIONS_PROPOSED; after that the sides strictly alternate.
func (h *AckHandler) Propose(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid acknowledgment id"})
	}
	var req proposalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := lifecycle.ValidateProposal(req.FieldName, req.ProposedValue, req.Reason); err != nil {
		return workflowError(c, err, "field_name, proposed_value and reason are required")
	}

	ctx := c.Request().Context()
	tx, err := h.Acks.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	a, err := h.Acks.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		return workflowError(c, err, "acknowledgment not found")
	}
	caller, err := lifecycle.PartyOf(userID, a.ArtistID, a.VenueID)
	if err != nil {
		return workflowError(c, err, "")
	}
	last, has, err := h.Acks.LastProposalTx(ctx, tx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	status := lifecycle.AckStatus(a.Status)
	if err := lifecycle.CanPropose(status, lifecycle.Party(last.ProposedBy), has, caller); err != nil {
		return workflowError(c, err, "it is not your turn to propose")
	}

	p := model.ModificationProposal{
		AcknowledgmentID: id,
		ProposedBy:       string(caller),
		FieldName:        strings.TrimSpace(req.FieldName),
		ProposedValue:    req.ProposedValue,
		Reason:           req.Reason,
	}
	if err := h.Acks.AppendProposalTx(ctx, tx, &p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "append proposal failed"})
	}
	if status != lifecycle.AckModificationsProposed {
		if err := h.Acks.UpdateStatusCAS(ctx, tx, id, status, lifecycle.AckModificationsProposed); err != nil {
			return workflowError(c, err, "acknowledgment changed concurrently")
		}
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	h.notify(c, queue.NotificationEvent{
		RecipientID: counterpartID(caller, a.ArtistID, a.VenueID),
		Kind:        queue.KindRiderProposal,
		BookingID:   a.BookingID,
		Payload:     map[string]string{"field_name": p.FieldName},
	})
	return c.JSON(http.StatusCreated, toProposalResp(p))
}

type respondReq struct {
	Decision      string `json:"decision"` // accept | reject | counter-propose
	FieldName     string `json:"field_name"`
	ProposedValue string `json:"proposed_value"`
	Reason        string `json:"reason"`
}

// Respond handles POST /v1/acknowledgments/:id/respond. Only the side
// that did not author the latest proposal may answer it: accept closes
// the workflow as ACCEPTED, reject closes it as REJECTED, and
// counter-propose appends a new entry and keeps negotiating.
func (h *AckHandler) Respond(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid acknowledgment id"})
	}
	var req respondReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	decision := lifecycle.RespondDecision(strings.ToLower(strings.TrimSpace(req.Decision)))
	switch decision {
	case lifecycle.DecisionAccept, lifecycle.DecisionReject, lifecycle.DecisionCounterPropose:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "decision must be accept, reject or counter-propose"})
	}

	ctx := c.Request().Context()
	tx, err := h.Acks.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	a, err := h.Acks.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		return workflowError(c, err, "acknowledgment not found")
	}
	caller, err := lifecycle.PartyOf(userID, a.ArtistID, a.VenueID)
	if err != nil {
		return workflowError(c, err, "")
	}
	last, has, err := h.Acks.LastProposalTx(ctx, tx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !has {
		return c.JSON(http.StatusConflict, echo.Map{"error": "no proposal to respond to"})
	}
	status := lifecycle.AckStatus(a.Status)
	if err := lifecycle.CanRespond(status, lifecycle.Party(last.ProposedBy), caller); err != nil {
		return workflowError(c, err, "no open proposal to respond to")
	}

	switch decision {
	case lifecycle.DecisionAccept, lifecycle.DecisionReject:
		outcome := lifecycle.AckAccepted
		if decision == lifecycle.DecisionReject {
			outcome = lifecycle.AckRejected
		}
		if err := h.Acks.UpdateStatusCAS(ctx, tx, id, status, outcome); err != nil {
			return workflowError(c, err, "acknowledgment changed concurrently")
		}
		if err := tx.Commit(); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
		}
		committed = true

		h.notify(c, queue.NotificationEvent{
			RecipientID: counterpartID(caller, a.ArtistID, a.VenueID),
			Kind:        queue.KindRiderResolved,
			BookingID:   a.BookingID,
			Payload:     map[string]string{"outcome": string(outcome)},
		})
		a.Status = string(outcome)
		return c.JSON(http.StatusOK, toAckResp(a))

	default: // counter-propose
		if err := lifecycle.ValidateProposal(req.FieldName, req.ProposedValue, req.Reason); err != nil {
			return workflowError(c, err, "field_name, proposed_value and reason are required")
		}
		p := model.ModificationProposal{
			AcknowledgmentID: id,
			ProposedBy:       string(caller),
			FieldName:        strings.TrimSpace(req.FieldName),
			ProposedValue:    req.ProposedValue,
			Reason:           req.Reason,
		}
		if err := h.Acks.AppendProposalTx(ctx, tx, &p); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "append proposal failed"})
		}
		if err := tx.Commit(); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
		}
		committed = true

		h.notify(c, queue.NotificationEvent{
			RecipientID: counterpartID(caller, a.ArtistID, a.VenueID),
			Kind:        queue.KindRiderProposal,
			BookingID:   a.BookingID,
			Payload:     map[string]string{"field_name": p.FieldName},
		})
		return c.JSON(http.StatusCreated, toProposalResp(p))
	}
}

type finalizeReq struct {
	Outcome string `json:"outcome"` // ACCEPTED | REJECTED
}

// Finalize handles POST /v1/acknowledgments/:id/finalize. Either party
// can close the workflow directly with an explicit terminal outcome,
// regardless of whose turn it is in the proposal log.
func (h *AckHandler) Finalize(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid acknowledgment id"})
	}
	var req finalizeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	outcome := lifecycle.AckStatus(strings.ToUpper(strings.TrimSpace(req.Outcome)))

	ctx := c.Request().Context()
	tx, err := h.Acks.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	a, err := h.Acks.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		return workflowError(c, err, "acknowledgment not found")
	}
	caller, err := lifecycle.PartyOf(userID, a.ArtistID, a.VenueID)
	if err != nil {
		return workflowError(c, err, "")
	}
	status := lifecycle.AckStatus(a.Status)
	if err := lifecycle.CanFinalize(status, outcome); err != nil {
		return workflowError(c, err, "outcome must be ACCEPTED or REJECTED and the rider must still be open")
	}
	if err := h.Acks.UpdateStatusCAS(ctx, tx, id, status, outcome); err != nil {
		return workflowError(c, err, "acknowledgment changed concurrently")
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	h.notify(c, queue.NotificationEvent{
		RecipientID: counterpartID(caller, a.ArtistID, a.VenueID),
		Kind:        queue.KindRiderResolved,
		BookingID:   a.BookingID,
		Payload:     map[string]string{"outcome": string(outcome)},
	})
	a.Status = string(outcome)
	return c.JSON(http.StatusOK, toAckResp(a))
}

// Timeline handles GET /v1/acknowledgments/:id. It returns the
// acknowledgment together with its full proposal log in the order the
// entries were written.
func (h *AckHandler) Timeline(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid acknowledgment id"})
	}

	ctx := c.Request().Context()
	a, err := h.Acks.GetByID(ctx, id)
	if err != nil {
		return workflowError(c, err, "acknowledgment not found")
	}
	if _, err := lifecycle.PartyOf(userID, a.ArtistID, a.VenueID); err != nil {
		return workflowError(c, err, "")
	}
	proposals, err := h.Acks.ListProposals(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]proposalResp, 0, len(proposals))
	for _, p := range proposals {
		out = append(out, toProposalResp(p))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"acknowledgment": toAckResp(a),
		"proposals":      out,
	})
}
