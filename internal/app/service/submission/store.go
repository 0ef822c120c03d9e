package submission

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	models "github.com/fatflowers/sitecraft/internal/models"
	"github.com/fatflowers/sitecraft/pkg/logctx"
	types "github.com/fatflowers/sitecraft/pkg/types"
)

// FindByID returns nil without error when no submission has the id.
func (s *Service) FindByID(ctx context.Context, id int64) (*models.Submission, error) {
	return s.findOne(ctx, "id = ?", id)
}

// FindByStripeSubscriptionID returns nil without error when nothing is linked to subscriptionID.
func (s *Service) FindByStripeSubscriptionID(ctx context.Context, subscriptionID string) (*models.Submission, error) {
	if subscriptionID == "" {
		return nil, nil
	}
	return s.findOne(ctx, "stripe_subscription_id = ?", subscriptionID)
}

func (s *Service) FindBySetupFeeToken(ctx context.Context, token string) (*models.Submission, error) {
	return s.findByToken(ctx, models.ColSetupFeeToken, token)
}

func (s *Service) FindBySubscriptionToken(ctx context.Context, token string) (*models.Submission, error) {
	return s.findByToken(ctx, models.ColSubscriptionToken, token)
}

func (s *Service) findByToken(ctx context.Context, column, token string) (*models.Submission, error) {
	if token == "" {
		return nil, ErrSubmissionNotFound
	}
	m, err := s.findOne(ctx, column+" = ?", token)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrSubmissionNotFound
	}
	return m, nil
}

func (s *Service) findOne(ctx context.Context, query string, args ...any) (*models.Submission, error) {
	var m models.Submission
	err := s.db.WithContext(ctx).Where(query, args...).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load submission: %w", err)
	}
	return &m, nil
}

// UpdateFields writes absolute column values for one submission in a single UPDATE and
// records the change. Returns ErrSubmissionNotFound if the row does not exist.
func (s *Service) UpdateFields(ctx context.Context, id int64, fields map[string]any, reason types.ChangeReason, operator string) error {
	return s.updateFieldsLogged(ctx, id, fields, fields, reason, operator)
}

// updateFieldsLogged is UpdateFields with a separate view of the change for the audit row.
func (s *Service) updateFieldsLogged(ctx context.Context, id int64, fields, logged map[string]any, reason types.ChangeReason, operator string) error {
	if len(fields) == 0 {
		return nil
	}
	var before, after models.Submission
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).Take(&before).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubmissionNotFound
			}
			return fmt.Errorf("failed to load submission: %w", err)
		}
		if err := tx.Model(&models.Submission{}).Where("id = ?", id).Updates(fields).Error; err != nil {
			return fmt.Errorf("failed to update submission: %w", err)
		}
		if err := tx.Where("id = ?", id).Take(&after).Error; err != nil {
			return fmt.Errorf("failed to reload submission: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logctx.FromCtx(ctx, s.log).Infow("submission_updated", "submission_id", id, "reason", reason, "fields", len(fields))
	s.writeLog(ctx, &before, &after, reason, operator, logged)
	return nil
}
