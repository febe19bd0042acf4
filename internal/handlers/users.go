package handlers

import (
	"net/http"

	"github.com/chachabrian/busbooking-backend/internal/middleware"
	"github.com/chachabrian/busbooking-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// GetProfile retrieves the user's profile
func GetProfile(accounts *services.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := accounts.Profile(c.Request.Context(), c.GetUint(middleware.UserIDKey))
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, user)
	}
}

// UpdateProfile updates name, phone or password
func UpdateProfile(accounts *services.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.ProfileInput
		if !bindJSON(c, &input, "Invalid profile payload") {
			return
		}
		user, err := accounts.UpdateProfile(c.Request.Context(), c.GetUint(middleware.UserIDKey), input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, user)
	}
}
