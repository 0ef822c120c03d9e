package eventlog

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/sitecraft/internal/models"
	"github.com/fatflowers/sitecraft/pkg/logctx"
	"github.com/fatflowers/sitecraft/pkg/tool"
)

var Module = fx.Options(
	fx.Provide(New),
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// Save asynchronously persists a webhook event log. Nil input is ignored.
func (s *Service) Save(ctx context.Context, row *models.WebhookEventLog) {
	go func() {
		if row == nil {
			return
		}
		if row.ID == "" {
			row.ID = tool.GenerateUUIDV7()
		}
		if err := s.db.Save(row).Error; err != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to save webhook event log: %v", err)
		}
	}()
}

// ListByEventID returns every row recorded for a provider event, oldest first.
func (s *Service) ListByEventID(ctx context.Context, eventID string) ([]*models.WebhookEventLog, error) {
	var rows []*models.WebhookEventLog
	err := s.db.WithContext(ctx).Where("event_id = ?", eventID).Order("created_at asc").Order("id asc").Find(&rows).Error
	return rows, err
}
