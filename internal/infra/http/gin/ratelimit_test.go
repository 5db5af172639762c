package ginserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	gin "github.com/gin-gonic/gin"

	"venuedash/internal/infra/obs"
)

func TestWriteLimiterPerOperator(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(obs.Middleware{}.Operator())
	router.Use(newWriteLimiter(0.001, 1).Middleware())
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }
	router.POST("/w", ok)
	router.GET("/r", ok)

	send := func(method, path, operator string) int {
		req := httptest.NewRequest(method, path, nil)
		if operator != "" {
			req.Header.Set(obs.HeaderOperatorID, operator)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	if got := send(http.MethodPost, "/w", "owner-1"); got != http.StatusNoContent {
		t.Fatalf("first write = %d", got)
	}
	if got := send(http.MethodPost, "/w", "owner-1"); got != http.StatusTooManyRequests {
		t.Fatalf("second write = %d, want 429", got)
	}
	if got := send(http.MethodPost, "/w", "owner-2"); got != http.StatusNoContent {
		t.Fatalf("other operator write = %d", got)
	}
	for i := 0; i < 3; i++ {
		if got := send(http.MethodGet, "/r", "owner-1"); got != http.StatusNoContent {
			t.Fatalf("read %d = %d", i, got)
		}
	}
}
