package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/sitecraft/internal/app/service/reconciler"
	"github.com/fatflowers/sitecraft/pkg/logctx"
	"github.com/fatflowers/sitecraft/pkg/metrics"
)

const (
	maxWebhookBodyBytes   = 1 << 20
	headerStripeSignature = "Stripe-Signature"
)

type WebhookAck struct {
	Received bool `json:"received"`
}

type ErrorBody struct {
	Error string `json:"error"`
}

// @Summary      Stripe webhook
// @Description  Verifies the Stripe-Signature header against the raw body and reconciles the event.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Param        Stripe-Signature header string true "Stripe signature header"
// @Param        payload body string true "Raw Stripe event"
// @Success      200  {object}  handlers.WebhookAck
// @Failure      400  {object}  handlers.ErrorBody
// @Failure      500  {object}  handlers.ErrorBody
// @Router       /api/webhooks/stripe [post]
func ApiStripeWebhook(verifier *reconciler.Verifier, rec *reconciler.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		l := logctx.FromGin(c, log)

		payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				l.Warnw("webhook_stripe_body_too_large", "limit", tooLarge.Limit)
				c.JSON(http.StatusRequestEntityTooLarge, ErrorBody{Error: "payload too large"})
				return
			}
			l.Warnw("webhook_stripe_read_failed", "error", err)
			c.JSON(http.StatusBadRequest, ErrorBody{Error: "could not read body"})
			return
		}

		ev, err := verifier.Verify(payload, c.GetHeader(headerStripeSignature))
		if err != nil {
			l.Warnw("webhook_stripe_rejected", "error", err)
			metrics.ObserveWebhookEvent("unverified", "rejected")
			c.JSON(http.StatusBadRequest, ErrorBody{Error: err.Error()})
			return
		}
		l.Infow("webhook_stripe_received", "event_id", ev.ID(), "event_type", ev.Type())

		if _, err := rec.Dispatch(c.Request.Context(), ev); err != nil {
			// Non-2xx makes Stripe redeliver; handlers are idempotent.
			c.JSON(http.StatusInternalServerError, ErrorBody{Error: "event handling failed"})
			return
		}
		c.JSON(http.StatusOK, WebhookAck{Received: true})
	}
}

func RegisterWebhookRoutes(r gin.IRouter, verifier *reconciler.Verifier, rec *reconciler.Service, log *zap.SugaredLogger) {
	r.POST("/stripe", ApiStripeWebhook(verifier, rec, log))
}
