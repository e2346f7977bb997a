// Package handlers provides HTTP handler implementations for the public API.
//
// Response helpers: fail writes the ErrorResponse envelope and logs 5xx with
// the request-scoped logger; ok, data and noContent write successes.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-support-desk/internal/http/middleware"
)

// ErrorResponse is the error envelope returned by all endpoints.
type ErrorResponse struct {
	// Always false.
	Success bool `json:"success" example:"false"`
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go)
	Code string `json:"code" example:"escalation_not_found"`
	// Human-readable message
	Message string `json:"message" example:"Escalation not found"`
}

// fail aborts with an ErrorResponse; 5xx are logged.
func fail(c *gin.Context, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	})
}

// Fail is the exported fail for the router's fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// data writes 200 with the {"success": true, "data": v} envelope.
func data(c *gin.Context, v any) {
	ok(c, http.StatusOK, DataResponse{Success: true, Data: v})
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
