package reconciler

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	models "github.com/fatflowers/sitecraft/internal/models"
	types "github.com/fatflowers/sitecraft/pkg/types"
)

func (s *Service) handleCheckoutSessionCompleted(ctx context.Context, e *CheckoutSessionCompleted) (Outcome, error) {
	if e.SubmissionID == 0 {
		return unresolved(0, fmt.Sprintf("metadata.submissionId %q is missing or not an integer", e.SubmissionRef)), nil
	}
	m, err := s.store.FindByID(ctx, e.SubmissionID)
	if err != nil {
		return Outcome{SubmissionID: e.SubmissionID}, err
	}
	if m == nil {
		return unresolved(e.SubmissionID, "no submission with this id"), nil
	}

	fields := map[string]any{
		models.ColBillingStatus: types.BillingStatusPaid,
	}
	if e.CustomerID != "" {
		fields[models.ColStripeCustomerID] = e.CustomerID
	}
	reason := types.ChangeReasonCheckoutCompleted
	if e.IsSubscription() {
		if e.SubscriptionID != "" {
			owner, err := s.store.FindByStripeSubscriptionID(ctx, e.SubscriptionID)
			if err != nil {
				return Outcome{SubmissionID: m.ID}, err
			}
			// The column is unique; a write would fail on every redelivery.
			if owner != nil && owner.ID != m.ID {
				return unresolved(m.ID, fmt.Sprintf("subscription %s is already linked to submission %d", e.SubscriptionID, owner.ID)), nil
			}
			fields[models.ColStripeSubscriptionID] = e.SubscriptionID
		}
		fields[models.ColSubscriptionStatus] = types.SubscriptionStatusActive
	} else {
		fields[models.ColRevenue] = MinorToMajor(e.AmountTotal)
		fields[models.ColStatus] = types.SubmissionStatusPaid
		// A redelivered session keeps the first completion time.
		if m.PaidAt == nil {
			fields[models.ColPaidAt] = s.now().UTC()
		}
	}

	if err := s.store.UpdateFields(ctx, m.ID, fields, reason, operator(e)); err != nil {
		return Outcome{SubmissionID: m.ID}, err
	}
	return applied(m.ID, fields), nil
}

func (s *Service) handleInvoicePaid(ctx context.Context, e *InvoicePaid) (Outcome, error) {
	m, out, err := s.resolveSubscription(ctx, e.SubscriptionID)
	if m == nil {
		return out, err
	}

	fields := map[string]any{
		models.ColLastInvoicePaidAt:  s.now().UTC(),
		models.ColBillingStatus:      types.BillingStatusPaid,
		models.ColSubscriptionStatus: types.SubscriptionStatusActive,
	}
	if !e.Created.IsZero() {
		fields[models.ColLastInvoiceDate] = e.Created
	}
	if err := s.store.UpdateFields(ctx, m.ID, fields, types.ChangeReasonInvoicePaid, operator(e)); err != nil {
		return Outcome{SubmissionID: m.ID}, err
	}
	return applied(m.ID, fields), nil
}

func (s *Service) handleInvoicePaymentFailed(ctx context.Context, e *InvoicePaymentFailed) (Outcome, error) {
	m, out, err := s.resolveSubscription(ctx, e.SubscriptionID)
	if m == nil {
		return out, err
	}

	days := DaysOverdue(s.now(), e.OverdueSince())
	fields := map[string]any{
		models.ColSubscriptionStatus: types.SubscriptionStatusPastDue,
	}
	if days >= OverdueGracePeriodDays {
		fields[models.ColBillingStatus] = types.BillingStatusOverdue
	}
	if err := s.store.UpdateFields(ctx, m.ID, fields, types.ChangeReasonInvoiceFailed, operator(e)); err != nil {
		return Outcome{SubmissionID: m.ID}, err
	}
	res := applied(m.ID, fields)
	res.Reason = fmt.Sprintf("%d days overdue", days)
	return res, nil
}

func (s *Service) handleSubscriptionDeleted(ctx context.Context, e *SubscriptionDeleted) (Outcome, error) {
	m, out, err := s.resolveSubscription(ctx, e.SubscriptionID)
	if m == nil {
		return out, err
	}

	fields := map[string]any{
		models.ColSubscriptionStatus:     types.SubscriptionStatusCanceled,
		models.ColSubscriptionCanceledAt: s.now().UTC(),
	}
	if err := s.store.UpdateFields(ctx, m.ID, fields, types.ChangeReasonSubscriptionDelete, operator(e)); err != nil {
		return Outcome{SubmissionID: m.ID}, err
	}
	return applied(m.ID, fields), nil
}

// resolveSubscription returns the linked submission, or a nil record with the outcome to report.
func (s *Service) resolveSubscription(ctx context.Context, subscriptionID string) (*models.Submission, Outcome, error) {
	if subscriptionID == "" {
		return nil, unresolved(0, "no subscription reference"), nil
	}
	m, err := s.store.FindByStripeSubscriptionID(ctx, subscriptionID)
	if err != nil {
		return nil, Outcome{}, err
	}
	if m == nil {
		return nil, unresolved(0, fmt.Sprintf("no submission linked to subscription %s", subscriptionID)), nil
	}
	return m, Outcome{}, nil
}

// DaysOverdue counts whole days elapsed since since. Times in the future count as zero.
func DaysOverdue(now, since time.Time) int {
	if since.IsZero() || !now.After(since) {
		return 0
	}
	return int(now.Sub(since) / (24 * time.Hour))
}

// MinorToMajor converts a provider amount in minor units (cents) to major units without rounding.
func MinorToMajor(amount int64) decimal.Decimal {
	return decimal.New(amount, -2)
}
