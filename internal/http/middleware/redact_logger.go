package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Patterns for identifiers that must never reach the logs verbatim. UUIDs go
// first so the phone pattern cannot latch onto their digit runs; member,
// intake-event and chat-room ids are all UUIDs.
var (
	redactUUIDRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	redactEmailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	redactPhoneRE = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

// Headers replaced wholesale rather than pattern-scrubbed: credentials, the
// raw member identity header, and Idempotency-Key values, which are
// client-chosen and may embed anything.
var alwaysMaskedHeaders = []string{
	"authorization",
	"cookie",
	"set-cookie",
	"x-member-id",
	"idempotency-key",
}

// RedactOptions configures extra scrubbing for RedactingLogger.
type RedactOptions struct {
	// MaskHeaders lists additional header names (case-insensitive) whose
	// values are fully replaced with "[REDACTED]". Merged with the
	// built-in masked set.
	MaskHeaders []string
}

// redactPII scrubs identifier patterns out of a free-form value.
func redactPII(s string) string {
	if s == "" {
		return s
	}
	s = redactUUIDRE.ReplaceAllString(s, "[REDACTED:id]")
	s = redactEmailRE.ReplaceAllString(s, "[REDACTED:email]")
	s = redactPhoneRE.ReplaceAllString(s, "[REDACTED:phone]")
	return s
}

// RedactingLogger returns the access-log middleware: one structured line per
// request with method, route pattern, scrubbed query and headers, status,
// response bytes and latency. Bodies are never logged. The authenticated
// member id is attached as its own field when the auth middleware has
// resolved one, so support can trace a member's requests without the logs
// carrying incidental emails, phone numbers or foreign ids. Level follows
// the status: info, warn for 4xx, error for 5xx.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	masked := make(map[string]struct{}, len(alwaysMaskedHeaders)+len(opts.MaskHeaders))
	for _, h := range alwaysMaskedHeaders {
		masked[h] = struct{}{}
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			masked[h] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		start := time.Now()

		// The route pattern keeps path params (member ids, room ids) out
		// of the logs; unmatched requests fall back to the raw path.
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		safeQuery := redactPII(c.Request.URL.RawQuery)

		safeHeaders := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			if _, ok := masked[strings.ToLower(k)]; ok {
				safeHeaders[k] = "[REDACTED]"
				continue
			}
			safeHeaders[k] = redactPII(strings.Join(vv, ", "))
		}

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		reqID := c.Writer.Header().Get("X-Request-ID")
		if reqID == "" {
			reqID = c.GetHeader("X-Request-ID")
		}

		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}
		if id := c.GetString("memberID"); id != "" {
			ev = ev.Str("member_id", id)
		}
		ev.
			Str("request_id", reqID).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", safeQuery).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", latency).
			Interface("headers", safeHeaders).
			Msg("http_request")
	}
}
