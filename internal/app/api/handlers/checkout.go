package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/sitecraft/internal/app/service/checkout"
	"github.com/fatflowers/sitecraft/pkg/logctx"
)

type CheckoutResponse struct {
	URL string `json:"url"`
}

// @Summary      Start setup-fee checkout
// @Description  Resolves the setup-fee token and returns the Stripe Checkout URL to redirect to.
// @Tags         Public
// @Produce      json
// @Param        token path string true "Setup fee token"
// @Success      200  {object}  handlers.CheckoutResponse
// @Failure      404  {object}  handlers.ErrorBody
// @Router       /api/checkout/setup/{token} [post]
func ApiCheckoutSetupFee(co *checkout.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return checkoutHandler("setup_fee", co.CreateSetupFeeSession, log)
}

// @Summary      Start subscription checkout
// @Description  Resolves the subscription token and returns the Stripe Checkout URL to redirect to.
// @Tags         Public
// @Produce      json
// @Param        token path string true "Subscription token"
// @Success      200  {object}  handlers.CheckoutResponse
// @Failure      404  {object}  handlers.ErrorBody
// @Router       /api/checkout/subscription/{token} [post]
func ApiCheckoutSubscription(co *checkout.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return checkoutHandler("subscription", co.CreateSubscriptionSession, log)
}

func checkoutHandler(kind string, create func(context.Context, string) (*checkout.Session, error), log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := create(c.Request.Context(), c.Param("token"))
		if errors.Is(err, checkout.ErrTokenNotFound) {
			c.JSON(http.StatusNotFound, ErrorBody{Error: "payment link not found"})
			return
		}
		if err != nil {
			logctx.FromGin(c, log).Errorw("checkout_create_failed", "kind", kind, "error", err)
			c.JSON(http.StatusBadGateway, ErrorBody{Error: "could not start checkout"})
			return
		}
		c.JSON(http.StatusOK, CheckoutResponse{URL: sess.URL})
	}
}

func RegisterCheckoutRoutes(r gin.IRouter, co *checkout.Service, log *zap.SugaredLogger) {
	r.POST("/setup/:token", ApiCheckoutSetupFee(co, log))
	r.POST("/subscription/:token", ApiCheckoutSubscription(co, log))
}
