package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/sitecraft/internal/app/service/files"
	"github.com/fatflowers/sitecraft/pkg/config"
	"github.com/fatflowers/sitecraft/pkg/response"
)

// multipart framing on top of the file itself
const multipartOverhead = 1 << 20

type FileURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// @Summary      Upload file (Admin)
// @Description  Uploads an asset for a submission as multipart field "file".
// @Tags         Admin
// @Accept       mpfd
// @Produce      json
// @Param        id path int true "Submission ID"
// @Param        file formData file true "Asset"
// @Success      200  {object}  handlers.RespFile
// @Router       /api/v1/admin/submissions/{id}/files [post]
func ApiUploadFile(svc *files.Service, cfg *config.Config, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if limit := cfg.Storage.MaxUploadBytes; limit > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)
		}
		fh, err := c.FormFile("file")
		if err != nil {
			response.Fail(c, response.APIResponseCodeBadRequest, "multipart field \"file\" is required: "+err.Error())
			return
		}
		body, err := fh.Open()
		if err != nil {
			response.Fail(c, response.APIResponseCodeBadRequest, err.Error())
			return
		}
		defer body.Close()

		f, err := svc.Upload(c.Request.Context(), &files.UploadRequest{
			SubmissionID: id,
			FileName:     fh.Filename,
			ContentType:  fh.Header.Get("Content-Type"),
			Size:         fh.Size,
			Body:         body,
			UploadedBy:   operator(c),
		})
		if err != nil {
			adminError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(f))
	}
}

// @Summary      List files (Admin)
// @Tags         Admin
// @Produce      json
// @Param        id path int true "Submission ID"
// @Success      200  {object}  handlers.RespFiles
// @Router       /api/v1/admin/submissions/{id}/files [get]
func ApiListFiles(svc *files.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		list, err := svc.List(c.Request.Context(), id)
		if err != nil {
			adminError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(list))
	}
}

// @Summary      File download URL (Admin)
// @Description  Returns a short-lived presigned download URL.
// @Tags         Admin
// @Produce      json
// @Param        fileId path string true "File ID"
// @Success      200  {object}  handlers.RespFileURL
// @Router       /api/v1/admin/files/{fileId}/url [get]
func ApiFileURL(svc *files.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		url, expiresAt, err := svc.PresignURL(c.Request.Context(), c.Param("fileId"))
		if err != nil {
			adminError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(&FileURLResponse{URL: url, ExpiresAt: expiresAt}))
	}
}

// @Summary      Delete file (Admin)
// @Tags         Admin
// @Produce      json
// @Param        fileId path string true "File ID"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/files/{fileId} [delete]
func ApiDeleteFile(svc *files.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("fileId")); err != nil {
			adminError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

func RegisterAdminFileRoutes(r gin.IRouter, svc *files.Service, cfg *config.Config, log *zap.SugaredLogger) {
	r.POST("/submissions/:id/files", ApiUploadFile(svc, cfg, log))
	r.GET("/submissions/:id/files", ApiListFiles(svc, log))
	r.GET("/files/:fileId/url", ApiFileURL(svc, log))
	r.DELETE("/files/:fileId", ApiDeleteFile(svc, log))
}
