package reconciler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	models "github.com/fatflowers/sitecraft/internal/models"
	"github.com/fatflowers/sitecraft/pkg/logctx"
	"github.com/fatflowers/sitecraft/pkg/metrics"
	types "github.com/fatflowers/sitecraft/pkg/types"
)

// OverdueGracePeriodDays is how long a failed invoice may stay unpaid before billing is
// flagged OVERDUE.
const OverdueGracePeriodDays = 7

// SubmissionStore is the persistence boundary. Finders return nil, nil when nothing matches.
type SubmissionStore interface {
	FindByID(ctx context.Context, id int64) (*models.Submission, error)
	FindByStripeSubscriptionID(ctx context.Context, subscriptionID string) (*models.Submission, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]any, reason types.ChangeReason, operator string) error
}

// EventLog persists webhook delivery rows. Save must not block.
type EventLog interface {
	Save(ctx context.Context, row *models.WebhookEventLog)
}

type Status string

const (
	StatusApplied    Status = "applied"
	StatusUnresolved Status = "unresolved"
	StatusIgnored    Status = "ignored"
	StatusFailed     Status = "failed"
)

// Outcome is what a handler did with an event. SubmissionID is zero when no record was resolved.
type Outcome struct {
	Status       Status         `json:"status"`
	SubmissionID int64          `json:"submission_id,omitempty"`
	Reason       string         `json:"reason,omitempty"`
	Fields       map[string]any `json:"fields,omitempty"`
}

func applied(id int64, fields map[string]any) Outcome {
	return Outcome{Status: StatusApplied, SubmissionID: id, Fields: fields}
}

func unresolved(id int64, reason string) Outcome {
	return Outcome{Status: StatusUnresolved, SubmissionID: id, Reason: reason}
}

type Service struct {
	store  SubmissionStore
	events EventLog
	log    *zap.SugaredLogger
	now    func() time.Time
}

func NewService(store SubmissionStore, events EventLog, log *zap.SugaredLogger) *Service {
	return &Service{store: store, events: events, log: log, now: time.Now}
}

// Dispatch routes ev to its handler. Store failures come back wrapped in ErrHandlerFailure;
// unresolved references and unknown types are outcomes, not errors.
func (s *Service) Dispatch(ctx context.Context, ev Event) (Outcome, error) {
	if ev == nil {
		return Outcome{Status: StatusIgnored, Reason: "nil event"}, nil
	}
	start := time.Now()
	s.saveEventLog(ctx, receivedRow(ctx, ev))

	var (
		out Outcome
		err error
	)
	switch e := ev.(type) {
	case *CheckoutSessionCompleted:
		out, err = s.handleCheckoutSessionCompleted(ctx, e)
	case *InvoicePaid:
		out, err = s.handleInvoicePaid(ctx, e)
	case *InvoicePaymentFailed:
		out, err = s.handleInvoicePaymentFailed(ctx, e)
	case *SubscriptionDeleted:
		out, err = s.handleSubscriptionDeleted(ctx, e)
	default:
		out = Outcome{Status: StatusIgnored, Reason: "unhandled event type"}
	}
	if err != nil {
		out.Status = StatusFailed
		err = fmt.Errorf("%w: %s %s: %w", ErrHandlerFailure, ev.Type(), ev.ID(), err)
	}

	s.record(ctx, ev, out, err, start)
	return out, err
}

// record is the single sink for outcomes: log line, metrics and event log row.
func (s *Service) record(ctx context.Context, ev Event, out Outcome, err error, start time.Time) {
	l := logctx.FromCtx(ctx, s.log).With(
		"event_id", ev.ID(),
		"event_type", ev.Type(),
		"submission_id", out.SubmissionID,
		"outcome", out.Status,
	)
	switch out.Status {
	case StatusFailed:
		l.Errorw("stripe_event_failed", "error", err)
	case StatusUnresolved:
		l.Warnw("stripe_event_unresolved", "reason", out.Reason)
	case StatusIgnored:
		l.Infow("stripe_event_ignored", "reason", out.Reason)
	default:
		l.Infow("stripe_event_applied", "fields", len(out.Fields))
	}

	metrics.ObserveWebhookEvent(ev.Type(), string(out.Status))
	metrics.ObserveBusinessProcess("stripe_webhook", ev.Type(), start)
	s.saveEventLog(ctx, finishedRow(ctx, ev, out, err))
}

func (s *Service) saveEventLog(ctx context.Context, row *models.WebhookEventLog) {
	if s.events != nil {
		s.events.Save(ctx, row)
	}
}

func operator(ev Event) string {
	return "stripe:" + ev.ID()
}
