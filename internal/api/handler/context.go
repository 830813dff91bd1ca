package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/magicstays/villa-api/internal/api/middleware"
)

// claimsUserID returns the subject claim injected by the token guard, or
// "anonymous" on unguarded lines where no token was required.
func claimsUserID(c echo.Context) string {
	if sub, ok := c.Get(middleware.CtxUserID).(string); ok && sub != "" {
		return sub
	}
	return "anonymous"
}
