package reconciler

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"

	models "github.com/fatflowers/sitecraft/internal/models"
	"github.com/fatflowers/sitecraft/pkg/logctx"
)

const providerStripe = "stripe"

func receivedRow(ctx context.Context, ev Event) *models.WebhookEventLog {
	row := baseRow(ctx, ev)
	row.Status = models.WebhookEventLogStatusReceived
	if raw := rawObject(ev); len(raw) > 0 {
		row.Data = datatypes.JSON(raw)
	}
	return row
}

func finishedRow(ctx context.Context, ev Event, out Outcome, err error) *models.WebhookEventLog {
	row := baseRow(ctx, ev)
	row.Outcome = string(out.Status)
	if out.SubmissionID != 0 {
		id := out.SubmissionID
		row.SubmissionID = &id
	}
	if b, mErr := json.Marshal(out); mErr == nil {
		row.Data = datatypes.JSON(b)
	}
	switch {
	case err != nil:
		msg := err.Error()
		row.Error = &msg
		row.Status = models.WebhookEventLogStatusHandleFailed
	case out.Status == StatusApplied:
		row.Status = models.WebhookEventLogStatusHandled
	default:
		row.Status = models.WebhookEventLogStatusIgnored
	}
	return row
}

func baseRow(ctx context.Context, ev Event) *models.WebhookEventLog {
	return &models.WebhookEventLog{
		Provider:  providerStripe,
		EventID:   ev.ID(),
		EventType: ev.Type(),
		TraceID:   logctx.TraceID(ctx),
	}
}

func rawObject(ev Event) json.RawMessage {
	type rawer interface{ rawData() json.RawMessage }
	if r, ok := ev.(rawer); ok {
		return r.rawData()
	}
	return nil
}
