package middleware

// identity.go provides the user identifier used for rate-limit bucket
// keys. Authenticated requests are keyed per user; everything else
// shares the "guest" identity and is distinguished by IP.

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// currentUserID returns a string form of the authenticated user's ID,
// or "guest" when the request carries no valid token. The value stored
// by JWTAuth is whatever the JSON decoder produced for the sub claim,
// so numbers arrive as float64.
func currentUserID(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return fmt.Sprintf("%.0f", v)
	case uint64:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	}
	return "guest"
}
