package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/sitecraft/internal/app/service/auth"
	"github.com/fatflowers/sitecraft/pkg/logctx"
	"github.com/fatflowers/sitecraft/pkg/response"
)

// SessionVerifier validates an admin session token.
type SessionVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// AdminAuthMiddleware accepts the session cookie or an "Authorization: Bearer" header.
func AdminAuthMiddleware(verifier SessionVerifier, base *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token, _ = c.Cookie(auth.SessionCookie)
		}
		if token == "" {
			response.Fail(c, response.APIResponseCodeUnauthorized, "missing admin session")
			c.Abort()
			return
		}
		claims, err := verifier.Verify(token)
		if err != nil {
			logctx.FromGin(c, base).Infow("admin_session_rejected", "error", err)
			response.Fail(c, response.APIResponseCodeUnauthorized, "invalid admin session")
			c.Abort()
			return
		}

		c.Set(logctx.KeyAdmin, claims.Username)
		ctx := logctx.WithValue(c.Request.Context(), logctx.KeyAdmin, claims.Username)
		reqLogger := logctx.FromGin(c, base).With("admin", claims.Username)
		c.Set(logctx.KeyLogger, reqLogger)
		c.Request = c.Request.WithContext(logctx.WithLogger(ctx, reqLogger))
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
