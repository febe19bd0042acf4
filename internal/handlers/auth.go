package handlers

import (
	"net/http"

	"github.com/chachabrian/busbooking-backend/internal/services"
	"github.com/gin-gonic/gin"
)

func Register(accounts *services.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.RegisterInput
		if !bindJSON(c, &input, "Please provide name, email and password") {
			return
		}
		session, err := accounts.Register(c.Request.Context(), input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusCreated, session)
	}
}

func Login(accounts *services.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.LoginInput
		if !bindJSON(c, &input, "Please provide email and password") {
			return
		}
		session, err := accounts.Login(c.Request.Context(), input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, session)
	}
}
