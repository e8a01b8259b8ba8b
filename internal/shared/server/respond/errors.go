package respond

import (
	"github.com/gin-gonic/gin"

	"lawxpert-backend/internal/shared/telemetry"
)

// ErrorResponse is the error body returned by every endpoint.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Error logs the failure and aborts with {"detail": detail}.
func Error(c *gin.Context, status int, detail string) {
	fields := map[string]any{
		"status":     status,
		"detail":     detail,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if status >= 500 {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{Detail: detail})
}
