package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tripbuddy/internal/repository"
	"tripbuddy/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	if code == http.StatusInternalServerError {
		// Do not leak internals; the logs have the detail.
		c.Error(err)
		c.JSON(code, ErrorResponse{Error: "internal error"})
		return
	}
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation - Bad Request
	case errors.Is(err, service.ErrInvalidUsername),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidPassword),
		errors.Is(err, service.ErrPasswordMismatch),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrInvalidSeats),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrTokenExpired),
		errors.Is(err, service.ErrInvalidMessage):
		return http.StatusBadRequest

	// Conflict
	case errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrPhoneTaken),
		errors.Is(err, service.ErrNotEnoughSeats),
		errors.Is(err, service.ErrOwnRide),
		errors.Is(err, service.ErrRideUnavailable),
		errors.Is(err, service.ErrRideBusy),
		errors.Is(err, service.ErrOfferingAlreadyActive),
		errors.Is(err, service.ErrFindingAlreadyActive):
		return http.StatusConflict

	// Authentication
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrNotVerified):
		return http.StatusUnauthorized

	// Authorization / capability
	case errors.Is(err, service.ErrOfferingNotActivated),
		errors.Is(err, service.ErrFindingNotActivated),
		errors.Is(err, service.ErrNotYourNotification):
		return http.StatusForbidden

	default:
		return http.StatusInternalServerError
	}
}
