package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/sitecraft/internal/platform/redisclient"
	"github.com/fatflowers/sitecraft/pkg/logctx"
	"github.com/fatflowers/sitecraft/pkg/response"
)

type Limiter interface {
	Allow(ctx context.Context, key string) (redisclient.Decision, error)
}

// RateLimitMiddleware limits requests per client IP under the given scope.
// A limiter error lets the request through.
func RateLimitMiddleware(limiter Limiter, scope string, base *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := scope + ":" + c.ClientIP()
		d, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logctx.FromGin(c, base).Warnw("rate_limit_unavailable", "scope", scope, "error", err)
			c.Next()
			return
		}
		if d.Limit > 0 {
			c.Header("X-RateLimit-Limit", strconv.FormatInt(d.Limit, 10))
			c.Header("X-RateLimit-Remaining", strconv.FormatInt(d.Remaining, 10))
		}
		if !d.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(d.RetryAfter.Seconds()))))
			logctx.FromGin(c, base).Infow("rate_limited", "scope", scope, "client_ip", c.ClientIP())
			response.Error(c, http.StatusTooManyRequests, "too many requests, try again later")
			c.Abort()
			return
		}
		c.Next()
	}
}
