// Package handler exposes HTTP handlers for both authenticated and public
// endpoints. This file defines the public browsing API: unauthenticated
// users can search and view artist profiles when deciding who to book.
// Sensitive fields (account ids, emails) are filtered from responses.

package handler

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/stagelink/artist-venue-booking/internal/model"
	"github.com/stagelink/artist-venue-booking/internal/repository"
)

// PublicHandler aggregates repositories needed for unauthenticated
// browsing. It produces sanitized responses suitable for public
// consumption.
type PublicHandler struct {
	Artists *repository.ArtistRepo
}

// PublicArtist represents an artist profile exposed via the public API.
// It contains only safe fields.
type PublicArtist struct {
	ID           uint64 `json:"id"`
	StageName    string `json:"stage_name"`
	Genre        string `json:"genre"`
	Bio          string `json:"bio,omitempty"`
	HomeCity     string `json:"home_city"`
	BaseFeeCents uint32 `json:"base_fee_cents"`
}

func toPublicArtist(p model.ArtistProfile) PublicArtist {
	return PublicArtist{
		ID:           p.ID,
		StageName:    p.StageName,
		Genre:        p.Genre,
		Bio:          p.Bio,
		HomeCity:     p.HomeCity,
		BaseFeeCents: p.BaseFeeCents,
	}
}

// SearchArtists handles GET /v1/artists. Filters (name, genre, city)
// are optional substrings; page and page_size control pagination.
// Response JSON contains an "items" array plus paging metadata.
func (h *PublicHandler) SearchArtists(c echo.Context) error {
	q := repository.ArtistSearchQuery{
		Name:  strings.TrimSpace(c.QueryParam("name")),
		Genre: strings.TrimSpace(c.QueryParam("genre")),
		City:  strings.TrimSpace(c.QueryParam("city")),
	}
	if v := c.QueryParam("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			q.Page = n
		}
	}
	if v := c.QueryParam("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			q.PageSize = n
		}
	}

	items, total, err := h.Artists.Search(c.Request().Context(), q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicArtist, 0, len(items))
	for _, p := range items {
		out = append(out, toPublicArtist(p))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items": out,
		"total": total,
	})
}

// GetArtist handles GET /v1/artists/:id and returns one public profile.
func (h *PublicHandler) GetArtist(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	p, err := h.Artists.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "artist not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toPublicArtist(p))
}
