package shared

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestPageFromQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		query    string
		page     int
		pageSize int
	}{
		{"", 1, 20},
		{"page=3&page_size=50", 3, 50},
		{"page=0&page_size=-1", 1, 20},
		{"page=abc&page_size=500", 1, 100},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/items?"+tc.query, nil)
		page, pageSize := PageFromQuery(c)
		if page != tc.page || pageSize != tc.pageSize {
			t.Fatalf("query %q want (%d,%d) got (%d,%d)", tc.query, tc.page, tc.pageSize, page, pageSize)
		}
	}
}
