package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_CountersInflightAndPathFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())
	r.GET("/ok", func(c *gin.Context) {
		c.String(http.StatusOK, "hello")
	})
	// Status-only response keeps c.Writer.Size() at -1, exercising the
	// size-histogram skip.
	r.GET("/statusonly", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	// Collectors are package globals, so diff against the current values.
	baseOK := testutil.ToFloat64(reqCount.WithLabelValues("GET", "/ok", "200"))
	base404 := testutil.ToFloat64(reqCount.WithLabelValues("GET", "/does-not-exist", "404"))

	for _, path := range []string{"/ok", "/does-not-exist", "/statusonly"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(reqCount.WithLabelValues("GET", "/ok", "200")); got != baseOK+1 {
		t.Fatalf("counter /ok 200 = %v; want %v", got, baseOK+1)
	}
	// No route matched, so the label falls back to the raw URL path.
	if got := testutil.ToFloat64(reqCount.WithLabelValues("GET", "/does-not-exist", "404")); got != base404+1 {
		t.Fatalf("counter 404 fallback = %v; want %v", got, base404+1)
	}
	if inFlight := testutil.ToFloat64(reqInFlight); inFlight != 0 {
		t.Fatalf("in-flight gauge = %v; want 0 at rest", inFlight)
	}
}
