// Package httpkit provides HTTP response utilities.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"net/http"

	"webhook_relay_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error string `json:"error"`
}

// FailureResponse is the error format for endpoints reporting a success flag.
type FailureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// JSON sends a JSON response with the given status code.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// Error sends the standard error body for a domain error, using the status
// its kind maps to.
func Error(c *gin.Context, err *apperr.Error) {
	c.JSON(err.HTTPStatus(), ErrorResponse{Error: err.Message})
}

// OK sends a 200 OK response with the given payload.
func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// NotFound sends the standard 404 body.
func NotFound(c *gin.Context) {
	Error(c, apperr.NotFound("Not Found"))
}

// HandleFailure maps an error to a {success:false} response.
// Typed *apperr.Error values pick their own status; anything else is a 500.
// Returns true if an error was handled, false otherwise.
func HandleFailure(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	if domainErr, ok := apperr.As(err); ok {
		c.JSON(domainErr.HTTPStatus(), FailureResponse{Error: domainErr.Message})
		return true
	}

	c.JSON(http.StatusInternalServerError, FailureResponse{Error: err.Error()})
	return true
}
