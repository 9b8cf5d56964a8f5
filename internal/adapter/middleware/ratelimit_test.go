package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestRateLimiter_PerCaller(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	e := echo.New()
	e.Use(JWTAuth(testSecret), rl.Middleware())
	e.GET("/ping", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	hit := func(account string) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(echo.HeaderAuthorization, bearer(t, account))
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	// burst of 2, refill of one per minute
	for i := 0; i < 2; i++ {
		if code := hit(testCaller); code != http.StatusNoContent {
			t.Fatalf("request %d => %d", i, code)
		}
	}
	if code := hit(testCaller); code != http.StatusTooManyRequests {
		t.Fatalf("third request => want 429, got %d", code)
	}
	// another caller has its own bucket
	if code := hit("cccccccccccccccccccccccccccccccc"); code != http.StatusNoContent {
		t.Fatalf("other caller => %d", code)
	}
}

func TestRateLimiter_DisabledAndSweep(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	now := time.Now()
	for i := 0; i < 100; i++ {
		if !rl.get("k", now).Allow() {
			t.Fatalf("unlimited limiter refused request %d", i)
		}
	}
	if n := rl.Sweep(now.Add(time.Minute)); n != 0 {
		t.Fatalf("swept %d fresh visitors", n)
	}
	if n := rl.Sweep(now.Add(10 * time.Minute)); n != 1 {
		t.Fatalf("swept %d, want 1", n)
	}
}
