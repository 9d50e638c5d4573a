package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stagelink/artist-venue-booking/internal/model"
	"github.com/stagelink/artist-venue-booking/internal/repository"
)

// RiderHandler manages the artist's reusable rider templates. All
// routes require the ARTIST role; ownership of individual templates is
// checked in the repository against the caller's user id.
type RiderHandler struct {
	Riders *repository.RiderRepo
}

func NewRiderHandler(riders *repository.RiderRepo) *RiderHandler {
	if riders == nil {
		panic("nil repository passed to NewRiderHandler")
	}
	return &RiderHandler{Riders: riders}
}

type riderReq struct {
	Name         string `json:"name"`
	Sound        string `json:"sound"`
	Lighting     string `json:"lighting"`
	Stage        string `json:"stage"`
	Hospitality  string `json:"hospitality"`
	PaymentTerms string `json:"payment_terms"`
	Extras       string `json:"extras"`
}

type riderResp struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Sound        string    `json:"sound"`
	Lighting     string    `json:"lighting"`
	Stage        string    `json:"stage"`
	Hospitality  string    `json:"hospitality"`
	PaymentTerms string    `json:"payment_terms"`
	Extras       string    `json:"extras"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toRiderResp(t model.RiderTemplate) riderResp {
	return riderResp{
		ID:           t.ID,
		Name:         t.Name,
		Sound:        t.Sound,
		Lighting:     t.Lighting,
		Stage:        t.Stage,
		Hospitality:  t.Hospitality,
		PaymentTerms: t.PaymentTerms,
		Extras:       t.Extras,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// Create handles POST /v1/riders.
func (h *RiderHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req riderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	t := model.RiderTemplate{
		ArtistID:     userID,
		Name:         req.Name,
		Sound:        req.Sound,
		Lighting:     req.Lighting,
		Stage:        req.Stage,
		Hospitality:  req.Hospitality,
		PaymentTerms: req.PaymentTerms,
		Extras:       req.Extras,
	}
	if err := h.Riders.Create(c.Request().Context(), &t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create rider failed"})
	}
	return c.JSON(http.StatusCreated, toRiderResp(t))
}

// List handles GET /v1/riders and returns the caller's templates.
func (h *RiderHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Riders.ListByArtist(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]riderResp, 0, len(items))
	for _, t := range items {
		out = append(out, toRiderResp(t))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Get handles GET /v1/riders/:id.
func (h *RiderHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid rider id"})
	}
	t, err := h.Riders.GetByID(c.Request().Context(), id)
	if err != nil {
		return workflowError(c, err, "rider not found")
	}
	if t.ArtistID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your rider template"})
	}
	return c.JSON(http.StatusOK, toRiderResp(t))
}

// Update handles PUT /v1/riders/:id.
func (h *RiderHandler) Update(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid rider id"})
	}
	var req riderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	t := model.RiderTemplate{
		ID:           id,
		Name:         req.Name,
		Sound:        req.Sound,
		Lighting:     req.Lighting,
		Stage:        req.Stage,
		Hospitality:  req.Hospitality,
		PaymentTerms: req.PaymentTerms,
		Extras:       req.Extras,
	}
	if err := h.Riders.Update(c.Request().Context(), userID, &t); err != nil {
		return workflowError(c, err, "rider not found")
	}
	return c.JSON(http.StatusOK, toRiderResp(t))
}

// Delete handles DELETE /v1/riders/:id. Templates referenced by a
// contract cannot be removed; the repository reports that as a
// conflict.
func (h *RiderHandler) Delete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid rider id"})
	}
	if err := h.Riders.Delete(c.Request().Context(), userID, id); err != nil {
		return workflowError(c, err, "rider template is referenced by a contract")
	}
	return c.NoContent(http.StatusNoContent)
}
