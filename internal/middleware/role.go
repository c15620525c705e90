package middleware

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// RequireRole enforces that the resolved member carries one of the
// given roles ("user", "admin").  It assumes ResolveMember ran
// earlier and stored the role under ContextRoleKey; a missing or
// unknown role yields 403.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            role, ok := c.Get(ContextRoleKey).(string)
            if !ok || !allowed[role] {
                return c.JSON(http.StatusForbidden, echo.Map{
                    "success": false,
                    "error":   echo.Map{"message": "Forbidden", "code": "FORBIDDEN"},
                })
            }
            return next(c)
        }
    }
}
