package middleware

import (
	"net/http"
	"strings"

	"garageflow/internal/common"

	"github.com/labstack/echo/v4"
)

const (
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleAdvisor    = "advisor"
	RoleAccountant = "accountant"
)

// RequireRole allows the request through when the caller holds any of roles.
// Admins pass every check.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles)+1)
	allowed[RoleAdmin] = struct{}{}
	for _, r := range roles {
		allowed[strings.ToLower(r)] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := common.GetRoleFromContext(c.Request().Context())
			if !ok {
				return c.JSON(http.StatusForbidden, common.CreateErrorResponse("FORBIDDEN", "No role assigned", nil))
			}
			if _, permitted := allowed[role]; !permitted {
				return c.JSON(http.StatusForbidden, common.CreateErrorResponse("FORBIDDEN", "Insufficient permissions", nil))
			}
			return next(c)
		}
	}
}
