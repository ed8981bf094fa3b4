package blogfront

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestRateLimiterAllow(t *testing.T) {
	type hit struct {
		ip    string
		sleep time.Duration
		want  bool
	}
	tests := []struct {
		name   string
		max    int
		window time.Duration
		hits   []hit
	}{
		{
			name: "blocks after max", max: 2, window: time.Second,
			hits: []hit{{ip: "203.0.113.10", want: true}, {ip: "203.0.113.10", want: true}, {ip: "203.0.113.10", want: false}},
		},
		{
			name: "resets after window", max: 1, window: 150 * time.Millisecond,
			hits: []hit{{ip: "203.0.113.20", want: true}, {ip: "203.0.113.20", want: false}, {ip: "203.0.113.20", sleep: 200 * time.Millisecond, want: true}},
		},
		{
			name: "counts each ip apart", max: 1, window: time.Second,
			hits: []hit{{ip: "203.0.113.30", want: true}, {ip: "203.0.113.31", want: true}, {ip: "203.0.113.30", want: false}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := NewRateLimiter(tt.max, tt.window)
			defer limiter.Stop()
			for i, h := range tt.hits {
				time.Sleep(h.sleep)
				if got := limiter.Allow(h.ip); got != h.want {
					t.Fatalf("hit %d from %s: Allow = %v, want %v", i, h.ip, got, h.want)
				}
			}
		})
	}
}

func TestRateLimiterStopIsIdempotent(t *testing.T) {
	limiter := NewRateLimiter(1, time.Second)
	limiter.Stop()
	limiter.Stop()
}

func TestRateLimiterMiddleware(t *testing.T) {
	limiter := NewRateLimiter(1, 1500*time.Millisecond)
	defer limiter.Stop()

	e := echo.New()
	calls := 0
	h := limiter.Middleware(func(c echo.Context) error {
		calls++
		return c.NoContent(http.StatusOK)
	})
	serve := func(ip string) (*httptest.ResponseRecorder, error) {
		req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
		req.Header.Set(echo.HeaderXRealIP, ip)
		rec := httptest.NewRecorder()
		return rec, h(e.NewContext(req, rec))
	}

	rec, err := serve("203.0.113.40")
	if err != nil || rec.Code != http.StatusOK {
		t.Fatalf("first request: code %d, err %v", rec.Code, err)
	}

	rec, err = serve("203.0.113.40")
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: err = %v, want 429", err)
	}
	if got := rec.Header().Get("Retry-After"); got != "2" {
		t.Errorf("Retry-After = %q, want %q", got, "2")
	}

	if _, err := serve("203.0.113.41"); err != nil {
		t.Errorf("other ip blocked: %v", err)
	}
	if calls != 2 {
		t.Errorf("handler ran %d times, want 2", calls)
	}
}

func TestRetryAfter(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{time.Minute, "60"},
		{1500 * time.Millisecond, "2"},
		{100 * time.Millisecond, "1"},
		{0, "1"},
	}
	for _, tt := range tests {
		if got := retryAfter(tt.in); got != tt.want {
			t.Errorf("retryAfter(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
