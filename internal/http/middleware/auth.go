// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements bearer-token authentication. The middleware extracts a
// JWT from the Authorization header, verifies it through a pluggable parser,
// and stashes the authenticated member ID in the Gin context under "memberID"
// where handlers, logging, and rate limiting pick it up.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ctxKeyMemberID is the Gin context key carrying the authenticated member ID.
const ctxKeyMemberID = "memberID"

// TokenParser verifies an access token and returns the member ID it was
// issued to. Implementations return an error for expired, forged, or
// otherwise unusable tokens.
type TokenParser interface {
	ParseToken(token string) (string, error)
}

// MemberID returns the authenticated member ID stored by RequireAuth.
// The second return value indicates presence.
func MemberID(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyMemberID)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// RequireAuth returns a Gin middleware that rejects requests lacking a valid
// bearer token.
//
// Behavior:
//   - Reads the Authorization header and requires the "Bearer <token>" scheme.
//   - Verifies the token via the supplied parser.
//   - On success, stores the member ID under "memberID" and continues.
//   - On failure, responds 401 with a compact JSON error body and aborts.
func RequireAuth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			unauthorized(c, "missing bearer token")
			return
		}
		uid, err := parser.ParseToken(token)
		if err != nil || uid == "" {
			unauthorized(c, "invalid or expired token")
			return
		}
		c.Set(ctxKeyMemberID, uid)
		c.Next()
	}
}

// bearerToken extracts the token from an Authorization header value.
// Returns "" when the scheme is not Bearer or the token is empty.
func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       "unauthorized",
		"message":    msg,
	})
}
