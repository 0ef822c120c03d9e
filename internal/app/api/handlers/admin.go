package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/sitecraft/internal/app/service/files"
	"github.com/fatflowers/sitecraft/internal/app/service/statistics"
	"github.com/fatflowers/sitecraft/internal/app/service/submission"
	"github.com/fatflowers/sitecraft/internal/platform/objectstore"
	"github.com/fatflowers/sitecraft/pkg/logctx"
	"github.com/fatflowers/sitecraft/pkg/response"
	types "github.com/fatflowers/sitecraft/pkg/types"
)

// operator names the admin behind a change in submission_log.
func operator(c *gin.Context) string {
	if admin := c.GetString(logctx.KeyAdmin); admin != "" {
		return "admin:" + admin
	}
	return "admin"
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Fail(c, response.APIResponseCodeBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

// adminError maps service errors to the envelope codes.
func adminError(c *gin.Context, log *zap.SugaredLogger, err error) {
	switch {
	case errors.Is(err, submission.ErrSubmissionNotFound),
		errors.Is(err, submission.ErrNoteNotFound),
		errors.Is(err, files.ErrFileNotFound):
		response.Fail(c, response.APIResponseCodeNotFound, err.Error())
	case errors.Is(err, submission.ErrStatusRegression):
		response.Fail(c, response.APIResponseCodeConflict, err.Error())
	case errors.Is(err, submission.ErrInvalidStatus),
		errors.Is(err, files.ErrEmptyFile),
		errors.Is(err, files.ErrFileTooLarge),
		errors.Is(err, statistics.ErrInvalidRequest),
		errors.Is(err, types.ErrFieldNotAllowed):
		response.Fail(c, response.APIResponseCodeBadRequest, err.Error())
	case errors.Is(err, objectstore.ErrDisabled):
		response.Fail(c, response.APIResponseCodeError, "file storage is not configured")
	default:
		logctx.FromGin(c, log).Errorw("admin_request_failed", "path", c.FullPath(), "error", err)
		response.Fail(c, response.APIResponseCodeError, err.Error())
	}
}
