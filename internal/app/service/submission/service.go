package submission

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	models "github.com/fatflowers/sitecraft/internal/models"
	"github.com/fatflowers/sitecraft/pkg/logctx"
	types "github.com/fatflowers/sitecraft/pkg/types"
)

var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrStatusRegression   = errors.New("submission status cannot move backwards")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrNoteNotFound       = errors.New("note not found")
)

const (
	defaultScanSize = 10
	maxScanSize     = 100
)

// Service owns the submission record and everything hanging off it.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

// CreateRequest is the public intake form payload.
type CreateRequest struct {
	Name         string `json:"name" binding:"required,max=255"`
	Email        string `json:"email" binding:"required,email,max=255"`
	Phone        string `json:"phone" binding:"max=64"`
	BusinessName string `json:"business_name" binding:"max=255"`
	Website      string `json:"website" binding:"max=512"`
	Package      string `json:"package" binding:"max=64"`
	Message      string `json:"message" binding:"max=5000"`
}

// Create stores a new lead in its initial state.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*models.Submission, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	m := &models.Submission{
		Name:             strings.TrimSpace(req.Name),
		Email:            strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:            strings.TrimSpace(req.Phone),
		BusinessName:     strings.TrimSpace(req.BusinessName),
		Website:          strings.TrimSpace(req.Website),
		Package:          strings.TrimSpace(req.Package),
		Message:          strings.TrimSpace(req.Message),
		Status:           types.SubmissionStatusNew,
		BillingStatus:    types.BillingStatusPending,
		DeploymentStatus: types.DeploymentStatusNotStarted,
	}
	if m.Name == "" || m.Email == "" {
		return nil, fmt.Errorf("name and email are required")
	}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("submission_created", "submission_id", m.ID, "package", m.Package)
	s.writeLog(ctx, nil, m, types.ChangeReasonIntake, "intake", nil)
	return m, nil
}

// Get returns the submission or ErrSubmissionNotFound.
func (s *Service) Get(ctx context.Context, id int64) (*models.Submission, error) {
	m, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrSubmissionNotFound
	}
	return m, nil
}

// ScanRequest drives the admin list page.
type ScanRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanResponse struct {
	Items []*models.Submission `json:"items"`
	Total int64                `json:"total"`
}

// Scan implements paginated/admin listing with filters
func (s *Service) Scan(ctx context.Context, req *ScanRequest) (*ScanResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if err := types.CheckFields(req.Filters, models.SubmissionColumns); err != nil {
		return nil, err
	}
	if req.Size <= 0 {
		req.Size = defaultScanSize
	}
	if req.Size > maxScanSize {
		req.Size = maxScanSize
	}
	if req.From < 0 {
		req.From = 0
	}
	if req.SortBy == "" {
		req.SortBy = "created_at"
	}
	if !lo.Contains(models.SubmissionColumns, req.SortBy) {
		return nil, fmt.Errorf("sort on field %q is not allowed", req.SortBy)
	}

	query := func() *gorm.DB {
		tx := s.db.WithContext(ctx).Model(&models.Submission{})
		if len(req.Filters) > 0 {
			tx = tx.Where(types.FiltersAnd(req.Filters))
		}
		return tx
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}

	desc := req.SortOrder != "asc"
	var rows []*models.Submission
	err := query().Limit(req.Size).Offset(req.From).
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: clause.Column{Name: req.SortBy}, Desc: desc},
			{Column: clause.Column{Name: "id"}, Desc: desc},
		}}).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	return &ScanResponse{Items: rows, Total: total}, nil
}
