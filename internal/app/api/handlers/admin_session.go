package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/sitecraft/internal/app/service/auth"
	"github.com/fatflowers/sitecraft/pkg/config"
	"github.com/fatflowers/sitecraft/pkg/logctx"
	"github.com/fatflowers/sitecraft/pkg/response"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// @Summary      Admin login
// @Description  Checks the admin credentials and sets the admin_session cookie.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200  {object}  handlers.RespLogin
// @Router       /api/v1/admin/login [post]
func ApiAdminLogin(svc *auth.Service, cfg *config.Config, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Fail(c, response.APIResponseCodeBadRequest, err.Error())
			return
		}
		token, expiresAt, err := svc.Login(c.Request.Context(), req.Username, req.Password)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			response.Fail(c, response.APIResponseCodeUnauthorized, err.Error())
			return
		}
		if err != nil {
			logctx.FromGin(c, log).Errorw("admin_login_failed", "error", err)
			response.Fail(c, response.APIResponseCodeError, "login failed")
			return
		}
		setSessionCookie(c, cfg, token, int(time.Until(expiresAt).Seconds()))
		c.JSON(http.StatusOK, response.OKT(&LoginResponse{Token: token, ExpiresAt: expiresAt}))
	}
}

// @Summary      Admin logout
// @Description  Clears the admin_session cookie.
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/logout [post]
func ApiAdminLogout(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		setSessionCookie(c, cfg, "", -1)
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

func setSessionCookie(c *gin.Context, cfg *config.Config, value string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(auth.SessionCookie, value, maxAge, "/", "", cfg.Admin.CookieSecure, true)
}
