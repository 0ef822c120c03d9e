package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/sitecraft/internal/app/service/auth"
	"github.com/fatflowers/sitecraft/internal/platform/redisclient"
	"github.com/fatflowers/sitecraft/pkg/logctx"
)

func TestTraceMiddleware_PropagatesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TraceMiddleware(), RequestLoggerMiddleware(zap.NewNop().Sugar()))
	var seen string
	r.GET("/", func(c *gin.Context) {
		seen = logctx.TraceID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, "req-123", seen)
	require.Equal(t, "req-123", w.Header().Get(HeaderRequestID))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Len(t, w.Header().Get(HeaderRequestID), 36)
}

type fakeVerifier struct{}

func (fakeVerifier) Verify(token string) (*auth.Claims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &auth.Claims{Username: "staff"}, nil
}

func TestAdminAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AdminAuthMiddleware(fakeVerifier{}, zap.NewNop().Sugar()))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(logctx.KeyAdmin)) })

	cases := []struct {
		name   string
		setup  func(*http.Request)
		admin  string
	}{
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") }, "staff"},
		{"lowercase scheme", func(r *http.Request) { r.Header.Set("Authorization", "bearer good") }, "staff"},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: "good"}) }, "staff"},
		{"bad token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer bad") }, ""},
		{"basic scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic good") }, ""},
		{"nothing", func(*http.Request) {}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tc.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if tc.admin != "" {
				require.Equal(t, tc.admin, w.Body.String())
				return
			}
			require.Contains(t, w.Body.String(), `"code":40100`)
		})
	}
}

// countingLimiter allows the first limit calls per key.
type countingLimiter struct {
	limit int64
	seen  map[string]int64
	keys  []string
}

func (l *countingLimiter) Allow(_ context.Context, key string) (redisclient.Decision, error) {
	l.keys = append(l.keys, key)
	l.seen[key]++
	n := l.seen[key]
	if n > l.limit {
		return redisclient.Decision{Limit: l.limit, RetryAfter: 1500 * time.Millisecond}, nil
	}
	return redisclient.Decision{Allowed: true, Limit: l.limit, Remaining: l.limit - n}, nil
}

func TestRateLimitMiddleware_KeysOnPeerAddress(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	require.NoError(t, r.SetTrustedProxies(nil))
	lim := &countingLimiter{limit: 2, seen: map[string]int64{}}
	r.POST("/submissions", RateLimitMiddleware(lim, "intake", zap.NewNop().Sugar()), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	var codes []int
	for _, xff := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"} {
		req := httptest.NewRequest(http.MethodPost, "/submissions", nil)
		req.RemoteAddr = "203.0.113.9:52000"
		req.Header.Set("X-Forwarded-For", xff)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
		if w.Code == http.StatusTooManyRequests {
			require.Equal(t, "2", w.Header().Get("Retry-After"))
			require.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
		}
	}

	require.Equal(t, []string{"intake:203.0.113.9", "intake:203.0.113.9", "intake:203.0.113.9"}, lim.keys)
	require.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)
}
