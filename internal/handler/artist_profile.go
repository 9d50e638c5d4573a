package handler

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stagelink/artist-venue-booking/internal/model"
	"github.com/stagelink/artist-venue-booking/internal/repository"
)

// ArtistHandler serves the artist's own profile. Browsing other
// artists' profiles is a public concern and lives in PublicHandler.
type ArtistHandler struct {
	Artists *repository.ArtistRepo
}

func NewArtistHandler(artists *repository.ArtistRepo) *ArtistHandler {
	if artists == nil {
		panic("nil repository passed to NewArtistHandler")
	}
	return &ArtistHandler{Artists: artists}
}

type profileReq struct {
	StageName    string `json:"stage_name"`
	Genre        string `json:"genre"`
	Bio          string `json:"bio"`
	HomeCity     string `json:"home_city"`
	BaseFeeCents uint32 `json:"base_fee_cents"`
}

type profileResp struct {
	ID           uint64    `json:"id"`
	StageName    string    `json:"stage_name"`
	Genre        string    `json:"genre"`
	Bio          string    `json:"bio"`
	HomeCity     string    `json:"home_city"`
	BaseFeeCents uint32    `json:"base_fee_cents"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toProfileResp(p model.ArtistProfile) profileResp {
	return profileResp{
		ID:           p.ID,
		StageName:    p.StageName,
		Genre:        p.Genre,
		Bio:          p.Bio,
		HomeCity:     p.HomeCity,
		BaseFeeCents: p.BaseFeeCents,
		UpdatedAt:    p.UpdatedAt,
	}
}

// UpsertProfile handles PUT /v1/artist/profile. First call creates the
// profile, later calls overwrite it; one profile per artist account.
func (h *ArtistHandler) UpsertProfile(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.StageName = strings.TrimSpace(req.StageName)
	if req.StageName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "stage_name is required"})
	}

	p := model.ArtistProfile{
		UserID:       userID,
		StageName:    req.StageName,
		Genre:        strings.TrimSpace(req.Genre),
		Bio:          req.Bio,
		HomeCity:     strings.TrimSpace(req.HomeCity),
		BaseFeeCents: req.BaseFeeCents,
	}
	if err := h.Artists.Upsert(c.Request().Context(), &p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save profile failed"})
	}
	return c.JSON(http.StatusOK, toProfileResp(p))
}

// GetOwnProfile handles GET /v1/artist/profile.
func (h *ArtistHandler) GetOwnProfile(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	p, err := h.Artists.GetByUserID(c.Request().Context(), userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toProfileResp(p))
}
