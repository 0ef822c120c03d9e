// Package stripeapi constructs the Stripe API client used by outbound calls.
package stripeapi

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/sitecraft/pkg/config"
)

var Module = fx.Options(
	fx.Provide(NewClient, NewCheckoutSessions),
)

// NewClient returns a client bound to the configured secret key. The package level
// stripe.Key is never set.
func NewClient(cfg *config.Config, log *zap.SugaredLogger) *client.API {
	if cfg.Stripe.SecretKey == "" {
		log.Warnw("stripe_secret_key_missing", "detail", "checkout session creation will fail")
	}
	sc := &client.API{}
	sc.Init(cfg.Stripe.SecretKey, nil)
	return sc
}

// CheckoutSessions adapts the checkout session resource to a context-aware call.
type CheckoutSessions struct {
	api *client.API
}

func NewCheckoutSessions(api *client.API) *CheckoutSessions {
	return &CheckoutSessions{api: api}
}

func (c *CheckoutSessions) CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	params.Context = ctx
	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session: %w", err)
	}
	return sess, nil
}
