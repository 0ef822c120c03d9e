package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/sitecraft/internal/app/service/eventlog"
	"github.com/fatflowers/sitecraft/pkg/logctx"
	"github.com/fatflowers/sitecraft/pkg/response"
)

// @Summary      Webhook event history (Admin)
// @Description  Every recorded delivery row for one Stripe event id, oldest first.
// @Tags         Admin
// @Produce      json
// @Param        eventId path string true "Stripe event id"
// @Success      200  {object}  handlers.RespWebhookEvents
// @Router       /api/v1/admin/webhook-events/{eventId} [get]
func ApiListWebhookEvents(events *eventlog.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID := c.Param("eventId")
		rows, err := events.ListByEventID(c.Request.Context(), eventID)
		if err != nil {
			logctx.FromGin(c, log).Errorw("list_webhook_events_failed", "event_id", eventID, "error", err)
			response.Fail(c, response.APIResponseCodeError, "failed to load webhook events")
			return
		}
		if len(rows) == 0 {
			response.Fail(c, response.APIResponseCodeNotFound, "webhook event not found")
			return
		}
		c.JSON(http.StatusOK, response.OKT(rows))
	}
}

func RegisterAdminWebhookEventRoutes(r gin.IRouter, events *eventlog.Service, log *zap.SugaredLogger) {
	r.GET("/webhook-events/:eventId", ApiListWebhookEvents(events, log))
}
