package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/huangang/framewise/backend/internal/models"
	"github.com/huangang/framewise/backend/internal/storage"
	"github.com/huangang/framewise/backend/internal/store"
	"github.com/huangang/framewise/backend/pkg/logger"
	"github.com/huangang/framewise/backend/pkg/response"
	"gorm.io/gorm"
)

const DefaultMaxUploadBytes = 10 << 20

var allowedExtensions = map[string]bool{
	".jpeg": true, ".jpg": true, ".png": true, ".gif": true,
	".mp4": true, ".mov": true, ".avi": true,
	".pdf": true, ".doc": true, ".docx": true,
}

var allowedMIMETypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"video/mp4",
	"video/quicktime",
	"video/x-msvideo",
	"video/avi",
	"video/msvideo",
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

type MediaService struct {
	db       *gorm.DB
	media    *store.Collection[models.MediaAsset]
	projects *store.Collection[models.Project]
	blobs    storage.Provider
	events   *EventHub
	maxBytes int64
}

func NewMediaService(d *Deps) *MediaService {
	maxBytes := d.Upload.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &MediaService{
		db:       d.DB,
		media:    store.New[models.MediaAsset](d.DB),
		projects: store.New[models.Project](d.DB),
		blobs:    d.Blobs,
		events:   d.Events,
		maxBytes: maxBytes,
	}
}

type MediaListRequest struct {
	Category string `form:"category" binding:"omitempty,oneof=location cast props script other"`
}

// UploadMediaRequest is bound from the multipart form. ProjectID stays a string
// so a non-numeric value is reported as a violation on projectId.
type UploadMediaRequest struct {
	ProjectID   string               `form:"projectId" binding:"required,number"`
	Category    models.MediaCategory `form:"category" binding:"required,oneof=location cast props script other"`
	Description string               `form:"description"`
}

func (r *UploadMediaRequest) projectID() (uint, error) {
	id, err := strconv.ParseUint(r.ProjectID, 10, 32)
	if err != nil || id == 0 {
		return 0, response.NewFieldError("projectId", "projectId must be a positive integer")
	}
	return uint(id), nil
}

func (s *MediaService) MaxBytes() int64 {
	return s.maxBytes
}

func (s *MediaService) ListByProject(ctx context.Context, projectID uint, req *MediaListRequest) ([]models.MediaAsset, error) {
	scopes := []store.Scope{store.Eq("project_id", projectID)}
	if req != nil && req.Category != "" {
		scopes = append(scopes, store.Eq("category", req.Category))
	}
	return s.media.List(ctx, scopes...)
}

func (s *MediaService) GetByID(ctx context.Context, id uint) (*models.MediaAsset, error) {
	asset, err := s.media.Get(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "Media not found")
	}
	return asset, nil
}

// Upload checks the file against the size and type allow-lists, stores the
// blob under a generated name and records it while the project row is locked.
// Nothing is recorded when any check fails, and a stored blob is removed again.
func (s *MediaService) Upload(ctx context.Context, req *UploadMediaRequest, file *multipart.FileHeader, userID uint) (*models.MediaAsset, error) {
	projectID, err := req.projectID()
	if err != nil {
		return nil, err
	}
	if file.Size > s.maxBytes {
		return nil, response.NewFileTooLarge(fmt.Sprintf("File too large. Maximum size is %dMB", s.maxBytes>>20))
	}
	if file.Size <= 0 {
		return nil, response.NewFieldError("file", "file cannot be empty")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return nil, invalidFileType()
	}

	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	mimeType, err := resolveMIME(file.Header.Get("Content-Type"), f)
	if err != nil {
		return nil, err
	}
	if mimeType == "" {
		return nil, invalidFileType()
	}

	stored := storedName(ext)
	if err := s.blobs.Put(ctx, stored, f, file.Size, mimeType); err != nil {
		return nil, fmt.Errorf("store %s: %w", stored, err)
	}

	asset := models.MediaAsset{
		ProjectID:    projectID,
		Filename:     stored,
		OriginalName: filepath.Base(file.Filename),
		Type:         mediaType(mimeType),
		MimeType:     mimeType,
		Category:     req.Category,
		Description:  req.Description,
		Size:         file.Size,
		URL:          "/uploads/" + stored,
		UploadedBy:   userID,
		UploadedAt:   time.Now(),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockParent(ctx, tx, s.projects, projectID, "projectId", "project"); err != nil {
			return err
		}
		return s.media.WithTx(tx).Create(ctx, &asset)
	})
	if err != nil {
		removeBlobs(ctx, s.blobs, []string{stored})
		return nil, fmt.Errorf("create media: %w", err)
	}

	s.events.emit("media", ActionCreated, asset.ID, asset.ProjectID)
	logger.Infof("[Media] Stored %s as %s (%d bytes) on %s", asset.OriginalName, stored, asset.Size, s.blobs.Name())
	return &asset, nil
}

// Delete removes the record, then the blob.
func (s *MediaService) Delete(ctx context.Context, id uint) (*models.MediaAsset, error) {
	asset, err := s.media.Delete(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "Media not found")
	}

	removeBlobs(ctx, s.blobs, []string{asset.Filename})
	s.events.emit("media", ActionDeleted, asset.ID, asset.ProjectID)
	return asset, nil
}

// Open streams a stored blob back by its generated name.
func (s *MediaService) Open(ctx context.Context, filename string) (io.ReadCloser, *storage.ObjectInfo, error) {
	rc, info, err := s.blobs.Get(ctx, filename)
	if err != nil {
		if !errors.Is(err, storage.ErrObjectNotFound) {
			logger.Warnf("[Media] Failed to open blob %s: %v", filename, err)
		}
		return nil, nil, response.NewNotFound("File not found")
	}
	return rc, info, nil
}

func invalidFileType() error {
	return response.NewInvalidFileType("Invalid file type. Allowed: images (jpeg, png, gif), videos (mp4, mov, avi), PDF and Word documents")
}

// resolveMIME trusts a specific declared type and sniffs the content when the
// client sent none or a generic one. The reader is rewound afterwards. It
// returns "" when the type is not allowed.
func resolveMIME(declared string, f multipart.File) (string, error) {
	mt, _, err := mime.ParseMediaType(declared)
	if err != nil {
		mt = ""
	}

	if mt == "" || mt == "application/octet-stream" {
		detected, err := mimetype.DetectReader(f)
		if err != nil {
			return "", fmt.Errorf("detect content type: %w", err)
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return "", fmt.Errorf("rewind upload: %w", err)
		}
		for _, allowed := range allowedMIMETypes {
			if detected.Is(allowed) {
				return allowed, nil
			}
		}
		return "", nil
	}

	for _, allowed := range allowedMIMETypes {
		if mt == allowed {
			return mt, nil
		}
	}
	return "", nil
}

func storedName(ext string) string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("file-%d-%s%s", time.Now().UnixMilli(), suffix, ext)
}

func mediaType(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return "image"
	case strings.HasPrefix(mimeType, "video/"):
		return "video"
	default:
		return "document"
	}
}
