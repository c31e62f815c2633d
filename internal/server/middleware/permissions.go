package middleware

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
)

// HasPermission reports whether user holds every one of perms.
func HasPermission(user *AppUser, perms ...string) bool {
	if user == nil {
		return false
	}
	for _, p := range perms {
		if !slices.Contains(user.Permissions, p) {
			return false
		}
	}
	return true
}

// RequirePermission rejects requests whose user lacks one of perms. It runs
// after AuthMiddleware, which always sets a user on success.
func RequirePermission(perms ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ac, ok := c.(*AppContext)
			if !ok || ac.User == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			}
			for _, p := range perms {
				if !HasPermission(ac.User, p) {
					return c.JSON(http.StatusForbidden, map[string]string{"error": "Missing permission " + p})
				}
			}
			return next(c)
		}
	}
}
