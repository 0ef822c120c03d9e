package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/sitecraft/internal/app/service/submission"
	"github.com/fatflowers/sitecraft/pkg/logctx"
	"github.com/fatflowers/sitecraft/pkg/response"
)

type CreateSubmissionResponse struct {
	ID int64 `json:"id"`
}

// @Summary      Submit intake form
// @Description  Stores a new website lead. Rate limited per client IP.
// @Tags         Public
// @Accept       json
// @Produce      json
// @Param        request body submission.CreateRequest true "Intake form"
// @Success      200  {object}  handlers.RespCreateSubmission
// @Failure      400  {object}  handlers.RespOK
// @Failure      429  {object}  handlers.RespOK
// @Router       /api/submissions [post]
func ApiCreateSubmission(sub *submission.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req submission.CreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		m, err := sub.Create(c.Request.Context(), &req)
		if err != nil {
			logctx.FromGin(c, log).Errorw("submission_create_failed", "error", err)
			response.Error(c, http.StatusInternalServerError, "could not save submission")
			return
		}
		c.JSON(http.StatusOK, response.OKT(&CreateSubmissionResponse{ID: m.ID}))
	}
}

// RegisterIntakeRoutes mounts the intake form; extra middleware (rate limiting) runs before the handler.
func RegisterIntakeRoutes(r gin.IRouter, sub *submission.Service, log *zap.SugaredLogger, mws ...gin.HandlerFunc) {
	r.POST("/submissions", append(mws, ApiCreateSubmission(sub, log))...)
}
