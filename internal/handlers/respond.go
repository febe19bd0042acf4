package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/chachabrian/busbooking-backend/internal/apperrors"
	"github.com/chachabrian/busbooking-backend/internal/logging"
	"github.com/gin-gonic/gin"
)

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Count   *int        `json:"count,omitempty"`
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, envelope{Success: true, Data: data})
}

func respondList(c *gin.Context, data interface{}, count int) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data, Count: &count})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, envelope{Success: status < http.StatusBadRequest, Message: message})
}

// respondError maps a service error to its status. Internal errors are
// logged and replaced with a generic message.
func respondError(c *gin.Context, err error) {
	var internal apperrors.InternalError
	switch {
	case apperrors.IsValidation(err):
		respondMessage(c, http.StatusBadRequest, err.Error())
	case apperrors.IsUnauthorized(err):
		respondMessage(c, http.StatusUnauthorized, err.Error())
	case apperrors.IsForbidden(err):
		respondMessage(c, http.StatusForbidden, err.Error())
	case apperrors.IsNotFound(err):
		respondMessage(c, http.StatusNotFound, err.Error())
	case apperrors.IsConflict(err):
		respondMessage(c, http.StatusConflict, err.Error())
	default:
		entry := logging.FromContext(c.Request.Context()).WithError(err)
		if errors.As(err, &internal) {
			entry = entry.WithField("op", internal.Msg)
		}
		entry.Error("request failed")
		respondMessage(c, http.StatusInternalServerError, "Internal server error")
	}
}

// paramID parses a positive numeric path parameter.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondMessage(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}
