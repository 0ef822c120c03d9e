package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/sitecraft/internal/app/service/statistics"
	"github.com/fatflowers/sitecraft/pkg/response"
)

// @Summary      Get statistics (Admin)
// @Description  Dashboard aggregates: daily leads, daily and total revenue, subscription and overdue counts.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body statistics.Request true "Statistic request parameters"
// @Success      200  {object}  handlers.RespStatistics
// @Router       /api/v1/admin/statistics [post]
func ApiGetStatistics(stats *statistics.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statistics.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Fail(c, response.APIResponseCodeBadRequest, err.Error())
			return
		}
		res, err := stats.GetStatistic(c.Request.Context(), &req)
		if err != nil {
			adminError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterAdminStatisticsRoutes(r gin.IRouter, stats *statistics.Service, log *zap.SugaredLogger) {
	r.POST("/statistics", ApiGetStatistics(stats, log))
}
