package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireRoles lets the request through only when AuthMiddleware stored one
// of allowedRoles, e.g. r.POST("/routes", RequireRoles("admin"), handler).
func RequireRoles(allowedRoles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[strings.ToLower(strings.TrimSpace(r))] = struct{}{}
	}

	return func(c *gin.Context) {
		role := c.GetString(UserRoleKey)
		if role == "" {
			abort(c, http.StatusUnauthorized, "Not authorized")
			return
		}

		if _, ok := allowed[strings.ToLower(strings.TrimSpace(role))]; !ok {
			abort(c, http.StatusForbidden, "User role is not authorized to access this route")
			return
		}
		c.Next()
	}
}
