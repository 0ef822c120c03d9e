package reconciler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	models "github.com/fatflowers/sitecraft/internal/models"
	types "github.com/fatflowers/sitecraft/pkg/types"
)

type update struct {
	id       int64
	fields   map[string]any
	reason   types.ChangeReason
	operator string
}

// fakeStore keeps submissions in memory and applies updates column by column.
type fakeStore struct {
	mu      sync.Mutex
	rows    map[int64]*models.Submission
	updates []update
	lookups int
	err     error
}

func newFakeStore(rows ...*models.Submission) *fakeStore {
	f := &fakeStore{rows: map[int64]*models.Submission{}}
	for _, r := range rows {
		f.rows[r.ID] = r
	}
	return f
}

func (f *fakeStore) FindByID(_ context.Context, id int64) (*models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if f.err != nil {
		return nil, f.err
	}
	if m, ok := f.rows[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) FindByStripeSubscriptionID(_ context.Context, subscriptionID string) (*models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if f.err != nil {
		return nil, f.err
	}
	for _, m := range f.rows {
		if m.StripeSubscriptionID != nil && *m.StripeSubscriptionID == subscriptionID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) UpdateFields(_ context.Context, id int64, fields map[string]any, reason types.ChangeReason, operator string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	m, ok := f.rows[id]
	if !ok {
		return errors.New("row vanished")
	}
	f.updates = append(f.updates, update{id: id, fields: fields, reason: reason, operator: operator})
	for col, v := range fields {
		switch col {
		case models.ColStatus:
			m.Status = v.(types.SubmissionStatus)
		case models.ColBillingStatus:
			m.BillingStatus = v.(types.BillingStatus)
		case models.ColRevenue:
			m.Revenue = lo.ToPtr(v.(decimal.Decimal))
		case models.ColPaidAt:
			m.PaidAt = lo.ToPtr(v.(time.Time))
		case models.ColStripeCustomerID:
			m.StripeCustomerID = lo.ToPtr(v.(string))
		case models.ColStripeSubscriptionID:
			m.StripeSubscriptionID = lo.ToPtr(v.(string))
		case models.ColSubscriptionStatus:
			m.SubscriptionStatus = lo.ToPtr(v.(types.SubscriptionStatus))
		case models.ColSubscriptionCanceledAt:
			m.SubscriptionCanceledAt = lo.ToPtr(v.(time.Time))
		case models.ColLastInvoiceDate:
			m.LastInvoiceDate = lo.ToPtr(v.(time.Time))
		case models.ColLastInvoicePaidAt:
			m.LastInvoicePaidAt = lo.ToPtr(v.(time.Time))
		default:
			return errors.New("unexpected column " + col)
		}
	}
	return nil
}

func (f *fakeStore) get(id int64) models.Submission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.rows[id]
}

type fakeEventLog struct {
	mu   sync.Mutex
	rows []*models.WebhookEventLog
}

func (f *fakeEventLog) Save(_ context.Context, row *models.WebhookEventLog) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, row)
}

func newLead(id int64) *models.Submission {
	return &models.Submission{
		ID:               id,
		Name:             "Lead",
		Email:            "lead@example.com",
		Status:           types.SubmissionStatusContacted,
		BillingStatus:    types.BillingStatusPending,
		DeploymentStatus: types.DeploymentStatusNotStarted,
	}
}

func linkedLead(id int64, subscriptionID string) *models.Submission {
	m := newLead(id)
	m.StripeSubscriptionID = lo.ToPtr(subscriptionID)
	m.SubscriptionStatus = lo.ToPtr(types.SubscriptionStatusActive)
	m.BillingStatus = types.BillingStatusPaid
	return m
}
