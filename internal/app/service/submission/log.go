package submission

import (
	"context"

	"gorm.io/datatypes"

	models "github.com/fatflowers/sitecraft/internal/models"
	"github.com/fatflowers/sitecraft/pkg/logctx"
	"github.com/fatflowers/sitecraft/pkg/tool"
	types "github.com/fatflowers/sitecraft/pkg/types"
)

// writeLog persists a submission_log row in the background; errors are logged but not returned.
func (s *Service) writeLog(ctx context.Context, before, after *models.Submission, reason types.ChangeReason, operator string, changes map[string]any) {
	if after == nil {
		return
	}
	traceID := logctx.TraceID(ctx)
	go func() {
		row := &models.SubmissionLog{
			ID:           tool.GenerateUUIDV7(),
			SubmissionID: after.ID,
			Reason:       reason,
			Operator:     operator,
			Before:       datatypes.NewJSONType(before),
			After:        datatypes.NewJSONType(after),
			Changes:      datatypes.JSONMap(changes),
			TraceID:      traceID,
		}
		if row.Changes == nil {
			row.Changes = datatypes.JSONMap{}
		}
		if err := s.db.Create(row).Error; err != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to save submission log: %v", err)
		}
	}()
}
