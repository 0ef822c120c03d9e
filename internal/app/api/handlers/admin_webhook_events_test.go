package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/fatflowers/sitecraft/internal/app/service/reconciler"
	models "github.com/fatflowers/sitecraft/internal/models"
	"github.com/fatflowers/sitecraft/pkg/response"
	types "github.com/fatflowers/sitecraft/pkg/types"
)

func TestAdmin_WebhookEventHistory(t *testing.T) {
	e := newTestEnv(t)
	h := e.login()
	newLead(e, 5)

	payload := eventPayload(t, "evt_history", reconciler.EventTypeCheckoutSessionCompleted, map[string]any{
		"id":           "cs_history",
		"object":       "checkout.session",
		"mode":         "payment",
		"amount_total": 1000,
		"metadata":     map[string]string{"submissionId": "5"},
	})
	require.Equal(t, http.StatusOK, postWebhook(e, payload, stripeHeader(payload, testWebhookSecret)).Code)

	var rows []*models.WebhookEventLog
	require.Eventually(t, func() bool {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/webhook-events/evt_history", nil)
		req.Header = h.Clone()
		var resp response.APIResponse[[]*models.WebhookEventLog]
		decode(t, e.do(req), &resp)
		rows = resp.Data
		return resp.Code == response.APIResponseCodeOK && len(rows) == 2
	}, 2*time.Second, 20*time.Millisecond)

	statuses := lo.Map(rows, func(r *models.WebhookEventLog, _ int) models.WebhookEventLogStatus { return r.Status })
	require.ElementsMatch(t, []models.WebhookEventLogStatus{models.WebhookEventLogStatusReceived, models.WebhookEventLogStatusHandled}, statuses)
	for _, r := range rows {
		require.Equal(t, reconciler.EventTypeCheckoutSessionCompleted, r.EventType)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/webhook-events/evt_missing", nil)
	req.Header = h.Clone()
	require.Equal(t, response.APIResponseCodeNotFound, envelopeCode(t, e.do(req)))
}

func TestAdmin_SubmissionShowsActiveSubscription(t *testing.T) {
	e := newTestEnv(t)
	h := e.login()
	e.seed(&models.Submission{ID: 11, Name: "Sub", Email: "sub@test.dev", Status: types.SubmissionStatusPaid,
		BillingStatus: types.BillingStatusPaid, DeploymentStatus: types.DeploymentStatusDeployed,
		SubscriptionStatus: lo.ToPtr(types.SubscriptionStatusActive)})
	newLead(e, 12)

	for id, want := range map[string]bool{"11": true, "12": false} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/submissions/"+id, nil)
		req.Header = h.Clone()
		var resp response.APIResponse[SubmissionItem]
		decode(t, e.do(req), &resp)
		require.Equal(t, response.APIResponseCodeOK, resp.Code)
		require.Equal(t, want, resp.Data.ActiveSubscription, id)
	}
}
