package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/fatflowers/sitecraft/internal/app/service/notifier"
	"github.com/fatflowers/sitecraft/internal/app/service/submission"
	models "github.com/fatflowers/sitecraft/internal/models"
	"github.com/fatflowers/sitecraft/pkg/config"
	"github.com/fatflowers/sitecraft/pkg/response"
	types "github.com/fatflowers/sitecraft/pkg/types"
)

// SubmissionItem is the admin view of a submission. Token values stay hidden; only their presence shows.
type SubmissionItem struct {
	*models.Submission
	HasSetupFeeToken     bool `json:"has_setup_fee_token"`
	HasSubscriptionToken bool `json:"has_subscription_token"`
	ActiveSubscription   bool `json:"active_subscription"`
}

func toSubmissionItem(m *models.Submission) *SubmissionItem {
	return &SubmissionItem{
		Submission:           m,
		HasSetupFeeToken:     m.SetupFeeToken != nil && *m.SetupFeeToken != "",
		HasSubscriptionToken: m.SubscriptionToken != nil && *m.SubscriptionToken != "",
		ActiveSubscription:   m.HasActiveSubscription(),
	}
}

type ListSubmissionsResponse struct {
	Items []*SubmissionItem `json:"items"`
	Total int64             `json:"total"`
}

type UpdateStatusRequest struct {
	Status types.SubmissionStatus `json:"status" binding:"required"`
}

type UpdateDeploymentRequest struct {
	DeploymentStatus types.DeploymentStatus `json:"deployment_status" binding:"required"`
	SiteURL          string                 `json:"site_url" binding:"omitempty,url,max=512"`
}

type AddNoteRequest struct {
	Body string `json:"body" binding:"required,max=10000"`
}

type PaymentLinksRequest struct {
	submission.GenerateTokensRequest
	// SendEmail mails the fresh links to the submission's email address.
	SendEmail bool `json:"send_email"`
}

type PaymentLinksResponse struct {
	Links        notifier.Links   `json:"links"`
	Notification *notifier.Result `json:"notification,omitempty"`
}

// @Summary      List submissions (Admin)
// @Description  Paginated, filterable list of submissions.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body submission.ScanRequest true "Filters, pagination and sorting"
// @Success      200  {object}  handlers.RespListSubmissions
// @Router       /api/v1/admin/submissions/list [post]
func ApiListSubmissions(sub *submission.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req submission.ScanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Fail(c, response.APIResponseCodeBadRequest, err.Error())
			return
		}
		res, err := sub.Scan(c.Request.Context(), &req)
		if err != nil {
			adminError(c, log, err)
			return
		}
		items := lo.Map(res.Items, func(it *models.Submission, _ int) *SubmissionItem { return toSubmissionItem(it) })
		c.JSON(http.StatusOK, response.OKT(&ListSubmissionsResponse{Items: items, Total: res.Total}))
	}
}

// @Summary      Get submission (Admin)
// @Tags         Admin
// @Produce      json
// @Param        id path int true "Submission ID"
// @Success      200  {object}  handlers.RespSubmission
// @Router       /api/v1/admin/submissions/{id} [get]
func ApiGetSubmission(sub *submission.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		m, err := sub.Get(c.Request.Context(), id)
		if err != nil {
			adminError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(toSubmissionItem(m)))
	}
}

// @Summary      Update lead status (Admin)
// @Description  Moves the lead status forward (NEW, CONTACTED, PAID). Backward moves are rejected.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        id path int true "Submission ID"
// @Param        request body UpdateStatusRequest true "Target status"
// @Success      200  {object}  handlers.RespSubmission
// @Router       /api/v1/admin/submissions/{id}/status [post]
func ApiUpdateSubmissionStatus(sub *submission.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Fail(c, response.APIResponseCodeBadRequest, err.Error())
			return
		}
		m, err := sub.UpdateStatus(c.Request.Context(), id, req.Status, operator(c))
		if err != nil {
			adminError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(toSubmissionItem(m)))
	}
}

// @Summary      Update deployment (Admin)
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        id path int true "Submission ID"
// @Param        request body UpdateDeploymentRequest true "Deployment status and site URL"
// @Success      200  {object}  handlers.RespSubmission
// @Router       /api/v1/admin/submissions/{id}/deployment [post]
func ApiUpdateDeployment(sub *submission.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req UpdateDeploymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Fail(c, response.APIResponseCodeBadRequest, err.Error())
			return
		}
		m, err := sub.UpdateDeployment(c.Request.Context(), id, req.DeploymentStatus, req.SiteURL, operator(c))
		if err != nil {
			adminError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(toSubmissionItem(m)))
	}
}

// @Summary      Add note (Admin)
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        id path int true "Submission ID"
// @Param        request body AddNoteRequest true "Note"
// @Success      200  {object}  handlers.RespNote
// @Router       /api/v1/admin/submissions/{id}/notes [post]
func ApiAddNote(sub *submission.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req AddNoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Fail(c, response.APIResponseCodeBadRequest, err.Error())
			return
		}
		note, err := sub.AddNote(c.Request.Context(), id, operator(c), req.Body)
		if err != nil {
			adminError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(note))
	}
}

// @Summary      List notes (Admin)
// @Tags         Admin
// @Produce      json
// @Param        id path int true "Submission ID"
// @Success      200  {object}  handlers.RespNotes
// @Router       /api/v1/admin/submissions/{id}/notes [get]
func ApiListNotes(sub *submission.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		notes, err := sub.ListNotes(c.Request.Context(), id)
		if err != nil {
			adminError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(notes))
	}
}

// @Summary      Delete note (Admin)
// @Tags         Admin
// @Produce      json
// @Param        noteId path string true "Note ID"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/notes/{noteId} [delete]
func ApiDeleteNote(sub *submission.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := sub.DeleteNote(c.Request.Context(), c.Param("noteId")); err != nil {
			adminError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

// @Summary      Generate payment links (Admin)
// @Description  Regenerates the requested checkout tokens, returns the public payment URLs and optionally emails them.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        id path int true "Submission ID"
// @Param        request body PaymentLinksRequest true "Token kinds and options"
// @Success      200  {object}  handlers.RespPaymentLinks
// @Router       /api/v1/admin/submissions/{id}/payment_links [post]
func ApiGeneratePaymentLinks(sub *submission.Service, sender notifier.Sender, cfg *config.Config, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req PaymentLinksRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Fail(c, response.APIResponseCodeBadRequest, err.Error())
			return
		}
		m, tokens, err := sub.GenerateTokens(c.Request.Context(), id, &req.GenerateTokensRequest, operator(c))
		if err != nil {
			adminError(c, log, err)
			return
		}

		res := &PaymentLinksResponse{}
		if tokens.SetupFee != "" {
			res.Links.SetupFeeURL = cfg.CheckoutURL("setup", tokens.SetupFee)
		}
		if tokens.Subscription != "" {
			res.Links.SubscriptionURL = cfg.CheckoutURL("subscription", tokens.Subscription)
		}
		if req.SendEmail {
			result := sender.SendPaymentLinks(c.Request.Context(), m, res.Links)
			res.Notification = &result
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterAdminSubmissionRoutes(r gin.IRouter, sub *submission.Service, sender notifier.Sender, cfg *config.Config, log *zap.SugaredLogger) {
	r.POST("/submissions/list", ApiListSubmissions(sub, log))
	r.GET("/submissions/:id", ApiGetSubmission(sub, log))
	r.POST("/submissions/:id/status", ApiUpdateSubmissionStatus(sub, log))
	r.POST("/submissions/:id/deployment", ApiUpdateDeployment(sub, log))
	r.POST("/submissions/:id/notes", ApiAddNote(sub, log))
	r.GET("/submissions/:id/notes", ApiListNotes(sub, log))
	r.DELETE("/notes/:noteId", ApiDeleteNote(sub, log))
	r.POST("/submissions/:id/payment_links", ApiGeneratePaymentLinks(sub, sender, cfg, log))
}
