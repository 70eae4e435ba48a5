package middleware

import (
	"github.com/labstack/echo/v4"
)

// Envelope is the uniform JSON response body. Every endpoint, success or
// failure, returns this shape; the transport never leaks any other format.
type Envelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    any      `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// JSON writes a success envelope with the given status, message, and payload.
func JSON(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// JSONError writes a failure envelope. Used by middleware that rejects a
// request before it reaches the central error handler (rate limiting).
func JSONError(c echo.Context, status int, message string, errs ...string) error {
	return c.JSON(status, Envelope{
		Success: false,
		Message: message,
		Errors:  errs,
	})
}
