package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/sitecraft/docs"
	"github.com/fatflowers/sitecraft/internal/app/api/handlers"
	mw "github.com/fatflowers/sitecraft/internal/app/api/middleware"
	"github.com/fatflowers/sitecraft/internal/app/service/auth"
	"github.com/fatflowers/sitecraft/internal/app/service/checkout"
	"github.com/fatflowers/sitecraft/internal/app/service/eventlog"
	"github.com/fatflowers/sitecraft/internal/app/service/files"
	"github.com/fatflowers/sitecraft/internal/app/service/notifier"
	"github.com/fatflowers/sitecraft/internal/app/service/reconciler"
	"github.com/fatflowers/sitecraft/internal/app/service/statistics"
	"github.com/fatflowers/sitecraft/internal/app/service/submission"
	"github.com/fatflowers/sitecraft/internal/platform/redisclient"
	cfgpkg "github.com/fatflowers/sitecraft/pkg/config"
	metrics "github.com/fatflowers/sitecraft/pkg/metrics"
)

// RouteDeps collects everything the HTTP routes depend on.
type RouteDeps struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Log        *zap.SugaredLogger
	Cfg        *cfgpkg.Config
	Submission *submission.Service
	Checkout   *checkout.Service
	Verifier   *reconciler.Verifier
	Reconciler *reconciler.Service
	Auth       *auth.Service
	Files      *files.Service
	Notifier   notifier.Sender
	Statistics *statistics.Service
	EventLog   *eventlog.Service
	Limiter    *redisclient.Limiter
}

func newEngine(cfg *cfgpkg.Config) (*gin.Engine, error) {
	if cfg.Env == cfgpkg.EnvProd {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	// ClientIP keys the intake limiter; forwarded headers only count from configured proxies.
	if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid server.trusted_proxies: %w", err)
	}
	r.Use(gin.Recovery())
	// Add request tracing middleware only; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r, nil
}

func registerRoutes(r *gin.Engine, d RouteDeps) {
	log := d.Log
	// Prometheus metrics
	if d.Cfg.MetricsAddr != "" {
		p := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			ReqCntURLLabelMappingFn: func(c *gin.Context) string {
				if fp := c.FullPath(); fp != "" {
					return fp
				}
				return "unmatched"
			},
			Logger: log,
		})
		p.SetListenAddress(d.Cfg.MetricsAddr)
		p.Use(r)
		d.Lifecycle.Append(fx.Hook{OnStop: func(context.Context) error { return p.Close() }})
	}

	logged := []gin.HandlerFunc{mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware(log)}

	pub := r.Group("/")
	pub.Use(logged...)
	handlers.RegisterHealthRoutes(pub)
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	api.Use(logged...)
	handlers.RegisterIntakeRoutes(api, d.Submission, log, mw.RateLimitMiddleware(d.Limiter, "intake", log))
	handlers.RegisterCheckoutRoutes(api.Group("/checkout"), d.Checkout, log)
	handlers.RegisterWebhookRoutes(api.Group("/webhooks"), d.Verifier, d.Reconciler, log)

	admin := r.Group("/api/v1/admin")
	admin.Use(logged...)
	admin.POST("/login", handlers.ApiAdminLogin(d.Auth, d.Cfg, log))

	protected := admin.Group("")
	protected.Use(mw.AdminAuthMiddleware(d.Auth, log))
	protected.POST("/logout", handlers.ApiAdminLogout(d.Cfg))
	handlers.RegisterAdminSubmissionRoutes(protected, d.Submission, d.Notifier, d.Cfg, log)
	handlers.RegisterAdminFileRoutes(protected, d.Files, d.Cfg, log)
	handlers.RegisterAdminStatisticsRoutes(protected, d.Statistics, log)
	handlers.RegisterAdminWebhookEventRoutes(protected, d.EventLog, log)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
