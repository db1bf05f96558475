package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jakechorley/camp-signup/pkg/core/services"
)

type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

// errorStatus maps the service error taxonomy onto an HTTP status and a stable code
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrAlreadyApplied):
		return http.StatusConflict, "already_applied"
	case errors.Is(err, services.ErrSeasideConflict):
		return http.StatusConflict, "seaside_conflict"
	case errors.Is(err, services.ErrSlotFull):
		return http.StatusConflict, "slot_full"
	case errors.Is(err, services.ErrNotEligible):
		return http.StatusUnprocessableEntity, "not_eligible"
	case errors.Is(err, services.ErrWrongPool):
		return http.StatusForbidden, "wrong_pool"
	case errors.Is(err, services.ErrNoGroup):
		return http.StatusNotFound, "no_group"
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, services.ErrPersistence):
		return http.StatusInternalServerError, "persistence"
	}
	return http.StatusInternalServerError, "internal"
}

// respondError writes a service error. Server-side failures hide their details.
func respondError(c *gin.Context, err error) {
	status, code := errorStatus(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		message = http.StatusText(status)
	}
	abortWithError(c, status, code, message)
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorEnvelope{Error: apiError{Message: message, Code: code}})
}
