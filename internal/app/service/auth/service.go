package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fatflowers/sitecraft/pkg/config"
	"github.com/fatflowers/sitecraft/pkg/logctx"
)

// SessionCookie carries the signed admin session.
const SessionCookie = "admin_session"

const issuer = "sitecraft-admin"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidSession     = errors.New("invalid or expired session")
)

var Module = fx.Options(
	fx.Provide(NewService),
)

type Claims struct {
	jwt.StandardClaims
	Username string `json:"username"`
}

type Service struct {
	cfg config.AdminConfig
	log *zap.SugaredLogger
	now func() time.Time
}

func NewService(cfg *config.Config, log *zap.SugaredLogger) *Service {
	if cfg.Admin.JWTSecret == "" || cfg.Admin.PasswordHash == "" {
		log.Warnw("admin_auth_not_configured", "detail", "admin login is disabled")
	}
	return &Service{cfg: cfg.Admin, log: log, now: time.Now}
}

// Login checks the configured credentials and issues a signed session token.
func (s *Service) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	l := logctx.FromCtx(ctx, s.log)
	if s.cfg.JWTSecret == "" || s.cfg.PasswordHash == "" {
		return "", time.Time{}, ErrInvalidCredentials
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.Username)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(s.cfg.PasswordHash), []byte(password))
	if !userOK || passErr != nil {
		l.Warnw("admin_login_failed", "username", username)
		return "", time.Time{}, ErrInvalidCredentials
	}

	now := s.now()
	expiresAt := now.Add(s.cfg.SessionTTL)
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    issuer,
			Subject:   username,
			IssuedAt:  now.Unix(),
			ExpiresAt: expiresAt.Unix(),
		},
		Username: username,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session: %w", err)
	}
	l.Infow("admin_login", "username", username, "expires_at", expiresAt)
	return token, expiresAt, nil
}

// Verify validates signature, issuer and expiry of a session token.
func (s *Service) Verify(token string) (*Claims, error) {
	if token == "" || s.cfg.JWTSecret == "" {
		return nil, ErrInvalidSession
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if claims.Issuer != issuer || claims.Username == "" {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

// HashPassword produces a value for admin.password_hash.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
