package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/slotmail/internal/config"
	"github.com/slotmail/internal/http/handlers/public"

	"github.com/gin-gonic/gin"
)

func TestCORSPolicyAllowOrigin(t *testing.T) {
	wildcard := newCORSPolicy(config.CORSConfig{})
	if got := wildcard.allowOrigin("https://example.com"); got != "*" {
		t.Fatalf("wildcard without credentials should return *, got %s", got)
	}
	withCreds := newCORSPolicy(config.CORSConfig{AllowCredentials: true})
	if got := withCreds.allowOrigin("https://example.com"); got != "https://example.com" {
		t.Fatalf("wildcard with credentials should echo origin, got %s", got)
	}
	list := newCORSPolicy(config.CORSConfig{AllowedOrigins: []string{"https://A.example.com", " "}})
	if got := list.allowOrigin("https://a.example.com"); got != "https://a.example.com" {
		t.Fatalf("allow-list match should be case-insensitive, got %s", got)
	}
	if got := list.allowOrigin("https://x.example.com"); got != "" {
		t.Fatalf("unmatched origin should be empty, got %s", got)
	}
}

func TestCORSMiddlewarePreflightAndWebhook(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware(config.CORSConfig{AllowedOrigins: []string{"https://app.example.com"}, MaxAge: 600}))
	r.POST("/hook", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/hook", nil)
	req.Header.Set("Origin", "https://app.example.com")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight want 204 got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "https://app.example.com" {
		t.Fatalf("unexpected allow origin %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
	if w.Header().Get("Access-Control-Expose-Headers") == "" || w.Header().Get("Access-Control-Max-Age") != "600" {
		t.Fatalf("expose/max-age headers missing: %v", w.Header())
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/hook", nil)
	req.Header.Set(public.PaymentSignatureHeader, "abc")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Header().Get("Access-Control-Allow-Methods") != "" {
		t.Fatalf("signed gateway call should bypass cors, code=%d headers=%v", w.Code, w.Header())
	}
}
