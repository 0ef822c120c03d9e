// Package gormlog routes gorm's statement and error logs through the request-scoped zap logger.
package gormlog

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"

	"github.com/fatflowers/sitecraft/pkg/logctx"
)

const defaultSlowThreshold = 300 * time.Millisecond

// Capability tokens must never show up in logs, and gorm interpolates values into the SQL it reports.
var secretColumns = regexp.MustCompile(`((?:setup_fee_token|subscription_token)"?\s*(?:=|IN\s*\()\s*)'[^']*'`)

type Options struct {
	// Verbose logs every statement, not only errors and slow queries.
	Verbose       bool
	SlowThreshold time.Duration
}

// ZapLogger implements gorm.io/gorm/logger.Interface and enriches logs with
// trace_id and admin from context via logctx.FromCtx.
type ZapLogger struct {
	base   *zap.SugaredLogger
	config gormlogger.Config
}

func New(base *zap.SugaredLogger, opts Options) *ZapLogger {
	level := gormlogger.Warn
	if opts.Verbose {
		level = gormlogger.Info
	}
	slow := opts.SlowThreshold
	if slow <= 0 {
		slow = defaultSlowThreshold
	}
	return &ZapLogger{base: base, config: gormlogger.Config{
		SlowThreshold:             slow,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	}}
}

func (z *ZapLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cfg := z.config
	cfg.LogLevel = level
	return &ZapLogger{base: z.base, config: cfg}
}

func (z *ZapLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if z.config.LogLevel >= gormlogger.Info {
		logctx.FromCtx(ctx, z.base).Infow(msg, "args", data)
	}
}

func (z *ZapLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if z.config.LogLevel >= gormlogger.Warn {
		logctx.FromCtx(ctx, z.base).Warnw(msg, "args", data)
	}
}

func (z *ZapLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if z.config.LogLevel >= gormlogger.Error {
		logctx.FromCtx(ctx, z.base).Errorw(msg, "args", data)
	}
}

func (z *ZapLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if z.config.LogLevel == gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	failed := err != nil && !(z.config.IgnoreRecordNotFoundError && errors.Is(err, gormlogger.ErrRecordNotFound))
	slow := z.config.SlowThreshold > 0 && elapsed > z.config.SlowThreshold
	if !failed && !slow && z.config.LogLevel < gormlogger.Info {
		return
	}

	sql, rows := fc()
	lg := logctx.FromCtx(ctx, z.base).With(
		"rows", rows,
		"elapsed_ms", elapsed.Milliseconds(),
		"caller", shortCaller(utils.FileWithLineNum()),
		"sql", RedactSQL(sql),
	)
	switch {
	case failed:
		lg.Errorw("gorm_error", "error", err)
	case slow:
		lg.Warnw("gorm_slow")
	default:
		lg.Debugw("gorm")
	}
}

// RedactSQL blanks literal values compared against token columns.
func RedactSQL(sql string) string {
	return secretColumns.ReplaceAllString(sql, "${1}'<redacted>'")
}

// shortCaller trims absolute build paths to repo-relative where possible.
func shortCaller(s string) string {
	if s == "" {
		return s
	}
	pathPart, linePart := s, ""
	if idx := strings.LastIndex(s, ":"); idx >= 0 {
		pathPart, linePart = s[:idx], s[idx:]
	}
	p := filepath.ToSlash(strings.ReplaceAll(pathPart, `\`, "/"))
	for _, marker := range []string{"/internal/", "/pkg/", "/cmd/"} {
		if i := strings.Index(p, marker); i >= 0 {
			return p[i+1:] + linePart
		}
	}
	parts := strings.Split(strings.TrimPrefix(p, "/"), "/")
	if n := len(parts); n >= 3 {
		parts = parts[n-3:]
	}
	return strings.Join(parts, "/") + linePart
}
