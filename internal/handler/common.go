package handler // handler exposes the HTTP layer over the repositories

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/stagelink/artist-venue-booking/internal/lifecycle"
)

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses the named path parameter as a positive uint64.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, lifecycle.ErrValidation
	}
	return id, nil
}

// itoa formats an id for notification payload values.
func itoa(id uint64) string { return strconv.FormatUint(id, 10) }

// workflowError translates lifecycle sentinel errors into JSON
// responses. Every workflow handler funnels its guard and repository
// errors through here so the status mapping stays in one place:
// validation 400, forbidden 403, not found 404, conflict 409, anything
// else 500.
func workflowError(c echo.Context, err error, msg string) error {
	switch {
	case errors.Is(err, lifecycle.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	case errors.Is(err, lifecycle.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not a party to this booking or action not allowed for your role"})
	case errors.Is(err, lifecycle.ErrNotFound):
		if msg == "" {
			msg = "not found"
		}
		return c.JSON(http.StatusNotFound, echo.Map{"error": msg})
	case errors.Is(err, lifecycle.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": msg})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}
