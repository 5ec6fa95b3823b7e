package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/huangang/framewise/backend/internal/middleware"
	"github.com/huangang/framewise/backend/internal/services"
	"github.com/huangang/framewise/backend/internal/validation"
	"github.com/huangang/framewise/backend/pkg/response"
)

// multipartOverhead is the room left for form fields and part headers on top
// of the file size limit.
const multipartOverhead = 1 << 20

type MediaHandler struct {
	mediaService *services.MediaService
}

func NewMediaHandler(mediaService *services.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// ListByProject returns the media of a project, optionally filtered by category
// GET /api/media/project/:projectId
func (h *MediaHandler) ListByProject(c *gin.Context) {
	projectID, err := idParam(c, "projectId")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req services.MediaListRequest
	if err := validation.BindQuery(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	assets, err := h.mediaService.ListByProject(c.Request.Context(), projectID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.List(c, assets, len(assets))
}

// GET /api/media/:id
func (h *MediaHandler) GetByID(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	asset, err := h.mediaService.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "", asset)
}

// Upload stores one file sent as multipart field "file"
// POST /api/media/upload
func (h *MediaHandler) Upload(c *gin.Context) {
	limit := h.mediaService.MaxBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		if isBodyTooLarge(err) {
			response.Error(c, response.NewFileTooLarge(fmt.Sprintf("File too large. Maximum size is %dMB", limit>>20)))
			return
		}
		response.Error(c, response.NewFieldError("file", "request must be multipart/form-data with a file field"))
		return
	}

	var violations []response.FieldError
	var req services.UploadMediaRequest
	if err := validation.BindMultipart(c, &req); err != nil {
		var appErr *response.AppError
		if !errors.As(err, &appErr) {
			response.Error(c, err)
			return
		}
		violations = append(violations, appErr.Errors...)
	}

	file, err := c.FormFile("file")
	if err != nil {
		violations = append(violations, response.FieldError{Field: "file", Message: "file is required"})
	}
	if len(violations) > 0 {
		response.Error(c, response.NewValidation(violations...))
		return
	}

	asset, err := h.mediaService.Upload(c.Request.Context(), &req, file, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "File uploaded successfully", asset)
}

// DELETE /api/media/:id
func (h *MediaHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	asset, err := h.mediaService.Delete(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "Media deleted successfully", asset)
}

// Serve streams a stored file back
// GET /uploads/:filename
func (h *MediaHandler) Serve(c *gin.Context) {
	rc, info, err := h.mediaService.Open(c.Request.Context(), c.Param("filename"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer rc.Close()

	c.Header("Cache-Control", "public, max-age=86400")
	c.DataFromReader(http.StatusOK, info.Size, info.ContentType, rc, nil)
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}
