package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chachabrian/busbooking-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(tokens *utils.JWTManager) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Logger())
	authed := r.Group("/", AuthMiddleware(tokens))
	authed.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.GetUint(UserIDKey), "role": c.GetString(UserRoleKey)})
	})
	authed.GET("/admin", RequireRoles("admin"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	tokens := utils.NewJWTManager("secret", time.Hour)
	r := newRouter(tokens)
	userToken, err := tokens.GenerateToken(7, "a@b.co", "user")
	require.NoError(t, err)

	tests := []struct {
		name    string
		target  string
		header  string
		upgrade bool
		status  int
	}{
		{"no token", "/me", "", false, http.StatusUnauthorized},
		{"garbage token", "/me", "Bearer nope", false, http.StatusUnauthorized},
		{"bearer header", "/me", "Bearer " + userToken, false, http.StatusOK},
		{"query token on plain request", "/me?token=" + userToken, "", false, http.StatusUnauthorized},
		{"query token on websocket upgrade", "/me?token=" + userToken, "", true, http.StatusOK},
		{"user on admin route", "/admin", "Bearer " + userToken, false, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.upgrade {
				req.Header.Set("Connection", "Upgrade")
				req.Header.Set("Upgrade", "websocket")
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRequireRolesAdmitsAdmin(t *testing.T) {
	tokens := utils.NewJWTManager("secret", time.Hour)
	token, err := tokens.GenerateToken(1, "admin@b.co", "admin")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	newRouter(tokens).ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRequestIDEchoesOrGenerates(t *testing.T) {
	r := newRouter(utils.NewJWTManager("secret", time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}
