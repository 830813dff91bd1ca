package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/magicstays/villa-api/internal/core/domain"
)

// RBAC gates a route on the role claim injected by Auth. A valid token with
// an insufficient role is forbidden, distinct from the unauthorized result of
// a missing or invalid token.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r.String()] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			if _, ok := allowed[role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}
