package logctx

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ctxKey string

// Keys shared by gin.Context (string form) and context.Context.
const (
	KeyLogger  = "logger"
	KeyTraceID = "traceID"
	KeyAdmin   = "admin"
)

// WithValue stores v under key in ctx using the package's private key type.
func WithValue(ctx context.Context, key string, v any) context.Context {
	return context.WithValue(ctx, ctxKey(key), v)
}

// WithLogger attaches a request-scoped logger to ctx.
func WithLogger(ctx context.Context, l *zap.SugaredLogger) context.Context {
	return WithValue(ctx, KeyLogger, l)
}

// TraceID returns the trace id stored in ctx, or "".
func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	s, _ := ctx.Value(ctxKey(KeyTraceID)).(string)
	return s
}

// FromGin returns a request-scoped logger from gin.Context if present,
// otherwise returns the provided base logger.
func FromGin(c *gin.Context, base *zap.SugaredLogger) *zap.SugaredLogger {
	if c == nil {
		return base
	}
	if l, ok := c.Get(KeyLogger); ok {
		if lg, ok := l.(*zap.SugaredLogger); ok && lg != nil {
			return lg
		}
	}
	return FromCtx(c.Request.Context(), base)
}

// FromCtx returns a logger from context if set, otherwise attempts to enrich
// base with trace_id/admin from context values.
func FromCtx(ctx context.Context, base *zap.SugaredLogger) *zap.SugaredLogger {
	if ctx == nil {
		return base
	}
	if lg, ok := ctx.Value(ctxKey(KeyLogger)).(*zap.SugaredLogger); ok && lg != nil {
		return lg
	}
	var fields []interface{}
	if tid := TraceID(ctx); tid != "" {
		fields = append(fields, "trace_id", tid)
	}
	if admin, ok := ctx.Value(ctxKey(KeyAdmin)).(string); ok && admin != "" {
		fields = append(fields, "admin", admin)
	}
	if len(fields) > 0 {
		return base.With(fields...)
	}
	return base
}
