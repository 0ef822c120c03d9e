package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v74"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/sitecraft/internal/app/service/submission"
	models "github.com/fatflowers/sitecraft/internal/models"
	"github.com/fatflowers/sitecraft/internal/platform/stripeapi"
	"github.com/fatflowers/sitecraft/pkg/config"
	"github.com/fatflowers/sitecraft/pkg/logctx"
)

var ErrTokenNotFound = errors.New("checkout token not found")

// MetadataSubmissionID is the metadata key the webhook reconciler resolves submissions by.
const MetadataSubmissionID = "submissionId"

var Module = fx.Options(
	fx.Provide(
		func(c *stripeapi.CheckoutSessions) SessionCreator { return c },
		func(s *submission.Service) TokenResolver { return s },
		NewService,
	),
)

type SessionCreator interface {
	CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// TokenResolver maps capability tokens to submissions. Both finders return
// submission.ErrSubmissionNotFound for unknown tokens.
type TokenResolver interface {
	FindBySetupFeeToken(ctx context.Context, token string) (*models.Submission, error)
	FindBySubscriptionToken(ctx context.Context, token string) (*models.Submission, error)
}

type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type Service struct {
	cfg      *config.Config
	sessions SessionCreator
	tokens   TokenResolver
	log      *zap.SugaredLogger
}

func NewService(cfg *config.Config, sessions SessionCreator, tokens TokenResolver, log *zap.SugaredLogger) *Service {
	return &Service{cfg: cfg, sessions: sessions, tokens: tokens, log: log}
}

// CreateSetupFeeSession starts a one-time payment for the submission holding token.
func (s *Service) CreateSetupFeeSession(ctx context.Context, token string) (*Session, error) {
	m, err := s.resolve(ctx, token, s.tokens.FindBySetupFeeToken)
	if err != nil {
		return nil, err
	}

	amount := s.cfg.Stripe.SetupFeeAmount
	if m.SetupFeeAmount != nil {
		amount = *m.SetupFeeAmount
	}
	if amount <= 0 {
		return nil, fmt.Errorf("setup fee amount is not configured")
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(s.cfg.Stripe.Currency),
				UnitAmount: stripe.Int64(amount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("Website setup fee"),
				},
			},
			Quantity: stripe.Int64(1),
		}},
	}
	s.decorate(params, m)
	return s.create(ctx, params, m, "setup_fee")
}

// CreateSubscriptionSession starts the monthly plan for the submission holding token.
func (s *Service) CreateSubscriptionSession(ctx context.Context, token string) (*Session, error) {
	m, err := s.resolve(ctx, token, s.tokens.FindBySubscriptionToken)
	if err != nil {
		return nil, err
	}
	if s.cfg.Stripe.SubscriptionPriceID == "" {
		return nil, fmt.Errorf("subscription price is not configured")
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Price:    stripe.String(s.cfg.Stripe.SubscriptionPriceID),
			Quantity: stripe.Int64(1),
		}},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{MetadataSubmissionID: submissionRef(m)},
		},
	}
	s.decorate(params, m)
	return s.create(ctx, params, m, "subscription")
}

func (s *Service) resolve(ctx context.Context, token string, find func(context.Context, string) (*models.Submission, error)) (*models.Submission, error) {
	if token == "" {
		return nil, ErrTokenNotFound
	}
	m, err := find(ctx, token)
	if errors.Is(err, submission.ErrSubmissionNotFound) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// decorate sets the fields shared by both flows.
func (s *Service) decorate(params *stripe.CheckoutSessionParams, m *models.Submission) {
	params.SuccessURL = stripe.String(s.cfg.Stripe.SuccessURL)
	params.CancelURL = stripe.String(s.cfg.Stripe.CancelURL)
	params.ClientReferenceID = stripe.String(submissionRef(m))
	params.AddMetadata(MetadataSubmissionID, submissionRef(m))
	if m.StripeCustomerID != nil && *m.StripeCustomerID != "" {
		params.Customer = m.StripeCustomerID
	} else if m.Email != "" {
		params.CustomerEmail = stripe.String(m.Email)
	}
}

func (s *Service) create(ctx context.Context, params *stripe.CheckoutSessionParams, m *models.Submission, kind string) (*Session, error) {
	sess, err := s.sessions.CreateCheckoutSession(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s checkout session: %w", kind, err)
	}
	logctx.FromCtx(ctx, s.log).Infow("checkout_session_created", "submission_id", m.ID, "kind", kind, "session_id", sess.ID)
	return &Session{ID: sess.ID, URL: sess.URL}, nil
}

func submissionRef(m *models.Submission) string {
	return strconv.FormatInt(m.ID, 10)
}
