package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// bindJSON decodes and validates the request body into obj. On failure it
// writes a 400 and returns false; required-field misses get fallback.
func bindJSON(c *gin.Context, obj interface{}, fallback string) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		respondMessage(c, http.StatusBadRequest, bindMessage(err, fallback))
		return false
	}
	return true
}

func bindMessage(err error, fallback string) string {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return fallback
	}

	fe := fields[0]
	switch fe.Tag() {
	case "email":
		return "Please provide a valid email"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	default:
		return fallback
	}
}
