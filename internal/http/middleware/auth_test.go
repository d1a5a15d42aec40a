package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

type fakeParser struct {
	memberID string
	err      error
	gotToken string
}

func (f *fakeParser) ParseToken(token string) (string, error) {
	f.gotToken = token
	return f.memberID, f.err
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer", ""},
		{"Bearer ", ""},
		{"Basic abc", ""},
		{"Bearer tok-1", "tok-1"},
		{"bearer tok-2", "tok-2"}, // scheme is case-insensitive
		{"Bearer   tok-3  ", "tok-3"},
	}
	for _, tc := range cases {
		if got := bearerToken(tc.header); got != tc.want {
			t.Fatalf("bearerToken(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequireAuth(&fakeParser{memberID: "m1"}))
	r.GET("/p", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireAuth_BadToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequireAuth(&fakeParser{err: errors.New("expired")}))
	r.GET("/p", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Bearer stale")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireAuth_SetsMemberID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	p := &fakeParser{memberID: "m7"}
	r := gin.New()
	r.Use(RequireAuth(p))
	r.GET("/p", func(c *gin.Context) {
		uid, ok := MemberID(c)
		if !ok || uid != "m7" {
			t.Fatalf("expected memberID m7, got %q ok=%v", uid, ok)
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if p.gotToken != "good-token" {
		t.Fatalf("parser saw token %q", p.gotToken)
	}
}
