package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the error object carried by failure envelopes.
type ErrorBody struct {
	Message string `json:"message"`
	Name    string `json:"name"`
}

// Envelope is the uniform response wrapper used by every operation.
// Success responses carry {success: true, data, message}; failures carry
// {success: false, error: {message, name}, message}.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Error   *ErrorBody  `json:"error,omitempty"`
	Message string      `json:"message"`
}

// SendResponse writes a success envelope.
func SendResponse(c *gin.Context, statusCode int, data interface{}, message string) {
	c.JSON(statusCode, Envelope{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// RespondWithError writes a failure envelope.
// statusCode: HTTP status code
// message: human readable failure description
// name: error name constant (names.go)
func RespondWithError(c *gin.Context, statusCode int, message, name string) {
	c.JSON(statusCode, Envelope{
		Success: false,
		Error:   &ErrorBody{Message: message, Name: name},
		Message: message,
	})
}

// Frequently used shortcuts

func BadRequest(c *gin.Context, message, name string) {
	RespondWithError(c, http.StatusBadRequest, message, name)
}

func NotFound(c *gin.Context, message, name string) {
	RespondWithError(c, http.StatusNotFound, message, name)
}

func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, message, NameAuthError)
}

func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Access denied"
	}
	RespondWithError(c, http.StatusForbidden, message, NameAuthError)
}

func InternalError(c *gin.Context, message, name string) {
	if message == "" {
		message = "Something went wrong. Please try again later"
	}
	if name == "" {
		name = NameInternalError
	}
	RespondWithError(c, http.StatusInternalServerError, message, name)
}
