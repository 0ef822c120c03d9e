package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/sitecraft/internal/app/service/submission"
	"github.com/fatflowers/sitecraft/internal/models"
	"github.com/fatflowers/sitecraft/internal/platform/objectstore"
	"github.com/fatflowers/sitecraft/pkg/config"
	"github.com/fatflowers/sitecraft/pkg/logctx"
	"github.com/fatflowers/sitecraft/pkg/tool"
)

var (
	ErrFileNotFound = errors.New("file not found")
	ErrFileTooLarge = errors.New("file exceeds the upload limit")
	ErrEmptyFile    = errors.New("file is empty")
)

const maxFileNameLen = 120

var Module = fx.Options(
	fx.Provide(
		func(s *objectstore.S3Store) ObjectStorage { return s },
		NewService,
	),
)

// ObjectStorage is the blob backend for uploaded assets.
type ObjectStorage interface {
	Put(ctx context.Context, key, contentType string, size int64, body io.Reader) error
	PresignGet(ctx context.Context, key, filename string) (string, time.Time, error)
	Delete(ctx context.Context, key string) error
}

type Service struct {
	db       *gorm.DB
	storage  ObjectStorage
	maxBytes int64
	log      *zap.SugaredLogger
}

func NewService(db *gorm.DB, storage ObjectStorage, cfg *config.Config, log *zap.SugaredLogger) *Service {
	return &Service{db: db, storage: storage, maxBytes: cfg.Storage.MaxUploadBytes, log: log}
}

type UploadRequest struct {
	SubmissionID int64
	FileName     string
	ContentType  string
	Size         int64
	Body         io.Reader
	UploadedBy   string
}

// Upload stores the blob first and then the metadata row; a failed insert removes the blob.
func (s *Service) Upload(ctx context.Context, req *UploadRequest) (*models.SubmissionFile, error) {
	if req.Size <= 0 {
		return nil, ErrEmptyFile
	}
	if s.maxBytes > 0 && req.Size > s.maxBytes {
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrFileTooLarge, req.Size, s.maxBytes)
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Submission{}).Where("id = ?", req.SubmissionID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check submission: %w", err)
	}
	if count == 0 {
		return nil, submission.ErrSubmissionNotFound
	}

	id := tool.GenerateUUIDV7()
	name := SanitizeFileName(req.FileName)
	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := ObjectKey(req.SubmissionID, id, name)

	if err := s.storage.Put(ctx, key, contentType, req.Size, req.Body); err != nil {
		return nil, err
	}
	f := &models.SubmissionFile{
		ID:           id,
		SubmissionID: req.SubmissionID,
		FileName:     name,
		ContentType:  contentType,
		Size:         req.Size,
		ObjectKey:    key,
		UploadedBy:   req.UploadedBy,
	}
	if err := s.db.WithContext(ctx).Create(f).Error; err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to remove orphaned object %s: %v", key, delErr)
		}
		return nil, fmt.Errorf("failed to save file: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("file_uploaded", "submission_id", req.SubmissionID, "file_id", id, "size", req.Size)
	return f, nil
}

func (s *Service) List(ctx context.Context, submissionID int64) ([]*models.SubmissionFile, error) {
	var rows []*models.SubmissionFile
	if err := s.db.WithContext(ctx).Where("submission_id = ?", submissionID).Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return rows, nil
}

func (s *Service) Get(ctx context.Context, fileID string) (*models.SubmissionFile, error) {
	var f models.SubmissionFile
	err := s.db.WithContext(ctx).Where("id = ?", fileID).Take(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load file: %w", err)
	}
	return &f, nil
}

// PresignURL returns a temporary download link for the file.
func (s *Service) PresignURL(ctx context.Context, fileID string) (string, time.Time, error) {
	f, err := s.Get(ctx, fileID)
	if err != nil {
		return "", time.Time{}, err
	}
	return s.storage.PresignGet(ctx, f.ObjectKey, f.FileName)
}

// Delete removes the object and then its row. A missing object is not an error for the caller
// once the row is gone.
func (s *Service) Delete(ctx context.Context, fileID string) error {
	f, err := s.Get(ctx, fileID)
	if err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, f.ObjectKey); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Where("id = ?", fileID).Delete(&models.SubmissionFile{}).Error; err != nil {
		return fmt.Errorf("failed to delete file row: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("file_deleted", "submission_id", f.SubmissionID, "file_id", f.ID)
	return nil
}

// ObjectKey lays objects out per submission: submissions/<id>/<file id>-<name>.
func ObjectKey(submissionID int64, fileID, name string) string {
	return fmt.Sprintf("submissions/%d/%s-%s", submissionID, fileID, name)
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFileName keeps the base name and replaces anything outside [A-Za-z0-9._-].
func SanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Trim(unsafeFileChars.ReplaceAllString(name, "_"), "._")
	if name == "" {
		name = "file"
	}
	if len(name) > maxFileNameLen {
		ext := filepath.Ext(name)
		if len(ext) > 16 {
			ext = ""
		}
		name = name[:maxFileNameLen-len(ext)] + ext
	}
	return name
}
