package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v74"
	"go.uber.org/zap"
	"gorm.io/gorm"

	mw "github.com/fatflowers/sitecraft/internal/app/api/middleware"
	"github.com/fatflowers/sitecraft/internal/app/service/auth"
	"github.com/fatflowers/sitecraft/internal/app/service/checkout"
	"github.com/fatflowers/sitecraft/internal/app/service/eventlog"
	"github.com/fatflowers/sitecraft/internal/app/service/files"
	"github.com/fatflowers/sitecraft/internal/app/service/notifier"
	"github.com/fatflowers/sitecraft/internal/app/service/reconciler"
	"github.com/fatflowers/sitecraft/internal/app/service/statistics"
	"github.com/fatflowers/sitecraft/internal/app/service/submission"
	models "github.com/fatflowers/sitecraft/internal/models"
	"github.com/fatflowers/sitecraft/internal/platform/db/dbtest"
	"github.com/fatflowers/sitecraft/internal/platform/redisclient"
	"github.com/fatflowers/sitecraft/pkg/config"
	"github.com/fatflowers/sitecraft/pkg/response"
)

const (
	testWebhookSecret = "whsec_handlers_test"
	testAdminUser     = "staff"
	testAdminPassword = "correct horse battery staple"
)

type stubSessions struct {
	mu     sync.Mutex
	params []*stripe.CheckoutSessionParams
	err    error
}

func (s *stubSessions) CreateCheckoutSession(_ context.Context, p *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	s.params = append(s.params, p)
	id := fmt.Sprintf("cs_test_%d", len(s.params))
	return &stripe.CheckoutSession{ID: id, URL: "https://checkout.stripe.test/" + id}, nil
}

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memStorage) Put(_ context.Context, key, _ string, _ int64, body io.Reader) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = b
	return nil
}

func (m *memStorage) PresignGet(_ context.Context, key, _ string) (string, time.Time, error) {
	return "https://files.test/" + key, time.Now().Add(15 * time.Minute), nil
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

type stubSender struct {
	mu    sync.Mutex
	links []notifier.Links
}

func (s *stubSender) SendPaymentLinks(_ context.Context, m *models.Submission, links notifier.Links) notifier.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links = append(s.links, links)
	return notifier.Result{Status: notifier.StatusSent, Recipient: m.Email}
}

type stubLimiter struct {
	allowed int
	hits    int
	err     error
}

func (l *stubLimiter) Allow(context.Context, string) (redisclient.Decision, error) {
	l.hits++
	if l.err != nil {
		return redisclient.Decision{Allowed: true}, l.err
	}
	return redisclient.Decision{
		Allowed:    l.hits <= l.allowed,
		Limit:      int64(l.allowed),
		Remaining:  int64(max(l.allowed-l.hits, 0)),
		RetryAfter: 30 * time.Second,
	}, nil
}

type testEnv struct {
	t        *testing.T
	cfg      *config.Config
	db       *gorm.DB
	engine   *gin.Engine
	sub      *submission.Service
	sessions *stubSessions
	storage  *memStorage
	sender   *stubSender
	limiter  *stubLimiter
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := auth.HashPassword(testAdminPassword)
	require.NoError(t, err)
	cfg := &config.Config{PublicBaseURL: "https://sitecraft.test"}
	cfg.Stripe.WebhookSecret = testWebhookSecret
	cfg.Stripe.SetupFeeAmount = 50000
	cfg.Stripe.Currency = "usd"
	cfg.Stripe.SubscriptionPriceID = "price_monthly"
	cfg.Stripe.SuccessURL = "https://sitecraft.test/pay/success"
	cfg.Stripe.CancelURL = "https://sitecraft.test/pay/cancel"
	cfg.Admin.Username = testAdminUser
	cfg.Admin.PasswordHash = hash
	cfg.Admin.JWTSecret = "jwt-test-secret"
	cfg.Admin.SessionTTL = time.Hour
	cfg.Storage.MaxUploadBytes = 1 << 20

	log := zap.NewNop().Sugar()
	db := dbtest.New(t)
	env := &testEnv{
		t:        t,
		cfg:      cfg,
		db:       db,
		sub:      submission.NewService(db, log),
		sessions: &stubSessions{},
		storage:  &memStorage{objects: map[string][]byte{}},
		sender:   &stubSender{},
		limiter:  &stubLimiter{allowed: 100},
	}

	events := eventlog.New(db, log)
	rec := reconciler.NewService(env.sub, events, log)
	authSvc := auth.NewService(cfg, log)

	r := gin.New()
	r.Use(mw.TraceMiddleware(), mw.RequestLoggerMiddleware(log))
	RegisterHealthRoutes(r)
	api := r.Group("/api")
	RegisterIntakeRoutes(api, env.sub, log, mw.RateLimitMiddleware(env.limiter, "intake", log))
	RegisterCheckoutRoutes(api.Group("/checkout"), checkout.NewService(cfg, env.sessions, env.sub, log), log)
	RegisterWebhookRoutes(api.Group("/webhooks"), reconciler.NewVerifier(cfg, log), rec, log)

	admin := r.Group("/api/v1/admin")
	admin.POST("/login", ApiAdminLogin(authSvc, cfg, log))
	protected := admin.Group("")
	protected.Use(mw.AdminAuthMiddleware(authSvc, log))
	protected.POST("/logout", ApiAdminLogout(cfg))
	RegisterAdminSubmissionRoutes(protected, env.sub, env.sender, cfg, log)
	RegisterAdminFileRoutes(protected, files.NewService(db, env.storage, cfg, log), cfg, log)
	RegisterAdminStatisticsRoutes(protected, statistics.New(db), log)
	RegisterAdminWebhookEventRoutes(protected, events, log)
	env.engine = r
	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *testEnv) postJSON(path string, body any, header http.Header) *httptest.ResponseRecorder {
	e.t.Helper()
	b, err := json.Marshal(body)
	require.NoError(e.t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return e.do(req)
}

// login returns an Authorization header for the admin API.
func (e *testEnv) login() http.Header {
	e.t.Helper()
	w := e.postJSON("/api/v1/admin/login", LoginRequest{Username: testAdminUser, Password: testAdminPassword}, nil)
	require.Equal(e.t, http.StatusOK, w.Code)
	var resp response.APIResponse[LoginResponse]
	decode(e.t, w, &resp)
	require.Equal(e.t, response.APIResponseCodeOK, resp.Code)
	require.NotEmpty(e.t, resp.Data.Token)
	return http.Header{"Authorization": []string{"Bearer " + resp.Data.Token}}
}

func (e *testEnv) seed(m *models.Submission) *models.Submission {
	e.t.Helper()
	require.NoError(e.t, e.db.Create(m).Error)
	return m
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
