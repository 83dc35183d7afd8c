package apiutil

import (
	"net/http"

	"github.com/Aidin1998/trivia/pkg/errors"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the standard error response structure for all APIs
//
// Example:
//
//	{
//	  "success": false,
//	  "error": 422,
//	  "message": "unprocessable"
//	}
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   int    `json:"error"`
	Message string `json:"message"`
}

var statusMessages = map[int]string{
	http.StatusBadRequest:          "bad request",
	http.StatusNotFound:            "resource not found",
	http.StatusMethodNotAllowed:    "method not allowed",
	http.StatusConflict:            "conflict",
	http.StatusUnprocessableEntity: "unprocessable",
	http.StatusTooManyRequests:     "too many requests",
	http.StatusInternalServerError: "internal server error",
}

// StatusMessage returns the envelope message for an HTTP status
func StatusMessage(status int) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return http.StatusText(status)
}

// WriteErrorResponse writes a consistent error response to the client
func WriteErrorResponse(c *gin.Context, status int) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Success: false,
		Error:   status,
		Message: StatusMessage(status),
	})
}

// AbortWithError records err on the context, so the request logger reports
// it, and writes the envelope for the status the error maps to
func AbortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	WriteErrorResponse(c, errors.HTTPStatus(err))
}
