package reconciler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v74/webhook"
	"go.uber.org/zap"

	"github.com/fatflowers/sitecraft/pkg/config"
)

// Verifier authenticates raw webhook bodies against the shared signing secret.
type Verifier struct {
	secret string
}

func NewVerifier(cfg *config.Config, log *zap.SugaredLogger) *Verifier {
	if cfg.Stripe.WebhookSecret == "" {
		log.Warnw("stripe_webhook_secret_missing", "detail", "every webhook delivery will be rejected")
	}
	return &Verifier{secret: cfg.Stripe.WebhookSecret}
}

// Verify checks header against the exact payload bytes and only then decodes the event.
func (v *Verifier) Verify(payload []byte, header string) (Event, error) {
	if strings.TrimSpace(header) == "" {
		return nil, ErrMissingSignature
	}
	if v.secret == "" {
		return nil, fmt.Errorf("%w: no signing secret configured", ErrInvalidSignature)
	}

	ev, err := webhook.ConstructEventWithOptions(payload, header, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		if isSignatureError(err) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return decodeEvent(&ev)
}

func isSignatureError(err error) bool {
	return errors.Is(err, webhook.ErrNotSigned) ||
		errors.Is(err, webhook.ErrInvalidHeader) ||
		errors.Is(err, webhook.ErrNoValidSignature) ||
		errors.Is(err, webhook.ErrTooOld)
}
