package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jeiu/caffeine-backend/internal/http/middleware"
)

// ErrorResponse is the error envelope every endpoint returns: a stable
// machine-readable code (errors.go constants), a message safe to show in the
// app, and the request id so a support report can be matched to the server
// logs.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	Code      string `json:"code" example:"not_found"`
	Message   string `json:"message" example:"resource not found"`
}

// fail aborts the request with an ErrorResponse. 5xx responses are also
// logged through the request-scoped logger, tagged with the member when the
// request was authenticated; 4xx are the client's problem and stay out of
// the error log.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		ev := middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg)
		if id := memberID(c); id != "" {
			ev = ev.Str("member_id", id)
		}
		ev.Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported form of fail for callers outside the package, such as
// the router's no-route handler.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes body as JSON with the given status.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent writes a bare 204.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
