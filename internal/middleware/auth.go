package middleware

import (
	"net/http"
	"strings"

	"github.com/chachabrian/busbooking-backend/internal/logging"
	"github.com/chachabrian/busbooking-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	UserIDKey   = "userId"
	UserRoleKey = "userRole"
)

// AuthMiddleware accepts a Bearer token. Websocket upgrade requests may pass
// it as the token query parameter instead, since browsers cannot set headers
// on them; plain requests never read the query.
func AuthMiddleware(tokens *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" && websocket.IsWebSocketUpgrade(c.Request) {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			abort(c, http.StatusUnauthorized, "Not authorized, no token")
			return
		}

		claims, err := tokens.ValidateToken(tokenString)
		if err != nil {
			abort(c, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserRoleKey, claims.Role)
		ctx := logging.ToContext(c.Request.Context(), logging.FromContext(c.Request.Context()).WithField("user_id", claims.UserID))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}
