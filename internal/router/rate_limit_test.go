package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestKeyByUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/bookings", nil)
	c.Request.RemoteAddr = "1.2.3.4:5678"

	if key := KeyByUser(c); key != "ip:1.2.3.4" {
		t.Fatalf("anonymous key want ip:1.2.3.4 got %s", key)
	}
	c.Set("user_id", uint(42))
	if key := KeyByUser(c); key != "user:42" {
		t.Fatalf("user key want user:42 got %s", key)
	}
}

func TestRateLimitMiddlewareWithoutClient(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimitMiddleware(nil, RateLimitRule{WindowSeconds: 60, MaxRequests: 1}, KeyByIP))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok":true`) {
			t.Fatalf("request %d should pass through, got %d %s", i, w.Code, w.Body.String())
		}
	}
}

func TestParseRateLimitResult(t *testing.T) {
	cases := []struct {
		name  string
		input interface{}
		count int64
		ttl   int64
		ok    bool
	}{
		{name: "redis ints", input: []interface{}{int64(3), int64(40)}, count: 3, ttl: 40, ok: true},
		{name: "float count", input: []interface{}{float64(2), int64(1)}, count: 2, ttl: 1, ok: true},
		{name: "short", input: []interface{}{int64(1)}, ok: false},
		{name: "bad count", input: []interface{}{"x", int64(1)}, ok: false},
		{name: "not a list", input: "OK", ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			count, ttl, ok := parseRateLimitResult(tc.input)
			if ok != tc.ok {
				t.Fatalf("ok want %v got %v", tc.ok, ok)
			}
			if ok && (count != tc.count || ttl != tc.ttl) {
				t.Fatalf("want %d/%d got %d/%d", tc.count, tc.ttl, count, ttl)
			}
		})
	}
}
