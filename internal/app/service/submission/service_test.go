package submission

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	models "github.com/fatflowers/sitecraft/internal/models"
	"github.com/fatflowers/sitecraft/internal/platform/db/dbtest"
	types "github.com/fatflowers/sitecraft/pkg/types"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(dbtest.New(t), zap.NewNop().Sugar())
}

func createLead(t *testing.T, s *Service, name string) *models.Submission {
	t.Helper()
	m, err := s.Create(context.Background(), &CreateRequest{Name: name, Email: name + "@example.com", Package: "starter"})
	require.NoError(t, err)
	return m
}

func TestCreate_SetsInitialStateAndNormalises(t *testing.T) {
	s := newTestService(t)

	m, err := s.Create(context.Background(), &CreateRequest{
		Name:    "  Ada  ",
		Email:   " Ada@Example.COM ",
		Message: "need a site",
	})
	require.NoError(t, err)
	require.NotZero(t, m.ID)
	require.Equal(t, "Ada", m.Name)
	require.Equal(t, "ada@example.com", m.Email)
	require.Equal(t, types.SubmissionStatusNew, m.Status)
	require.Equal(t, types.BillingStatusPending, m.BillingStatus)
	require.Equal(t, types.DeploymentStatusNotStarted, m.DeploymentStatus)
	require.Nil(t, m.SetupFeeToken)
	require.Nil(t, m.SubscriptionToken)
	require.Nil(t, m.Revenue)
}

func TestCreate_RejectsBlankName(t *testing.T) {
	s := newTestService(t)
	_, err := s.Create(context.Background(), &CreateRequest{Name: "   ", Email: "a@b.co"})
	require.Error(t, err)
}

func TestGet_NotFound(t *testing.T) {
	s := newTestService(t)
	_, err := s.Get(context.Background(), 999)
	require.ErrorIs(t, err, ErrSubmissionNotFound)

	m, err := s.FindByID(context.Background(), 999)
	require.NoError(t, err)
	require.Nil(t, m)
}

func TestUpdateStatus_ForwardOnly(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	m := createLead(t, s, "bob")

	got, err := s.UpdateStatus(ctx, m.ID, types.SubmissionStatusContacted, "admin")
	require.NoError(t, err)
	require.Equal(t, types.SubmissionStatusContacted, got.Status)

	got, err = s.UpdateStatus(ctx, m.ID, types.SubmissionStatusContacted, "admin")
	require.NoError(t, err)
	require.Equal(t, types.SubmissionStatusContacted, got.Status)

	_, err = s.UpdateStatus(ctx, m.ID, types.SubmissionStatusNew, "admin")
	require.ErrorIs(t, err, ErrStatusRegression)

	_, err = s.UpdateStatus(ctx, m.ID, types.SubmissionStatus("LOST"), "admin")
	require.ErrorIs(t, err, ErrInvalidStatus)

	got, err = s.Get(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, types.SubmissionStatusContacted, got.Status)
}

func TestUpdateDeployment_KeepsURLWhenBlank(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	m := createLead(t, s, "cara")

	got, err := s.UpdateDeployment(ctx, m.ID, types.DeploymentStatusDeployed, "https://cara.example.com", "admin")
	require.NoError(t, err)
	require.Equal(t, types.DeploymentStatusDeployed, got.DeploymentStatus)
	require.NotNil(t, got.SiteURL)

	got, err = s.UpdateDeployment(ctx, m.ID, types.DeploymentStatusInProgress, "", "admin")
	require.NoError(t, err)
	require.Equal(t, types.DeploymentStatusInProgress, got.DeploymentStatus)
	require.Equal(t, "https://cara.example.com", *got.SiteURL)
}

func TestGenerateTokens_RegenerationInvalidatesOldToken(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	m := createLead(t, s, "dan")

	amount := int64(49900)
	_, first, err := s.GenerateTokens(ctx, m.ID, &GenerateTokensRequest{
		Kinds:          []types.TokenKind{types.TokenKindSetupFee, types.TokenKindSubscription},
		SetupFeeAmount: &amount,
	}, "admin")
	require.NoError(t, err)
	require.NotEmpty(t, first.SetupFee)
	require.NotEmpty(t, first.Subscription)
	require.NotEqual(t, first.SetupFee, first.Subscription)

	found, err := s.FindBySetupFeeToken(ctx, first.SetupFee)
	require.NoError(t, err)
	require.Equal(t, m.ID, found.ID)
	require.Equal(t, amount, *found.SetupFeeAmount)

	_, second, err := s.GenerateTokens(ctx, m.ID, &GenerateTokensRequest{Kinds: []types.TokenKind{types.TokenKindSetupFee}}, "admin")
	require.NoError(t, err)
	require.Empty(t, second.Subscription)

	_, err = s.FindBySetupFeeToken(ctx, first.SetupFee)
	require.ErrorIs(t, err, ErrSubmissionNotFound)
	_, err = s.FindBySetupFeeToken(ctx, second.SetupFee)
	require.NoError(t, err)
	// untouched kind keeps working
	_, err = s.FindBySubscriptionToken(ctx, first.Subscription)
	require.NoError(t, err)
	// tokens are not interchangeable
	_, err = s.FindBySubscriptionToken(ctx, second.SetupFee)
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestGenerateTokens_Validation(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	m := createLead(t, s, "eve")

	_, _, err := s.GenerateTokens(ctx, m.ID, &GenerateTokensRequest{}, "admin")
	require.Error(t, err)

	_, _, err = s.GenerateTokens(ctx, m.ID, &GenerateTokensRequest{Kinds: []types.TokenKind{"gift"}}, "admin")
	require.Error(t, err)

	zero := int64(0)
	_, _, err = s.GenerateTokens(ctx, m.ID, &GenerateTokensRequest{Kinds: []types.TokenKind{types.TokenKindSetupFee}, SetupFeeAmount: &zero}, "admin")
	require.Error(t, err)

	_, _, err = s.GenerateTokens(ctx, 12345, &GenerateTokensRequest{Kinds: []types.TokenKind{types.TokenKindSetupFee}}, "admin")
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestUpdateFields_SubscriptionJoinKey(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	m := createLead(t, s, "fay")

	found, err := s.FindByStripeSubscriptionID(ctx, "sub_1")
	require.NoError(t, err)
	require.Nil(t, found)

	found, err = s.FindByStripeSubscriptionID(ctx, "")
	require.NoError(t, err)
	require.Nil(t, found)

	paidAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	err = s.UpdateFields(ctx, m.ID, map[string]any{
		models.ColStripeSubscriptionID: "sub_1",
		models.ColSubscriptionStatus:   types.SubscriptionStatusActive,
		models.ColBillingStatus:        types.BillingStatusPaid,
		models.ColLastInvoicePaidAt:    paidAt,
	}, types.ChangeReasonCheckoutCompleted, "stripe:evt_1")
	require.NoError(t, err)

	found, err = s.FindByStripeSubscriptionID(ctx, "sub_1")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, m.ID, found.ID)
	require.True(t, found.HasActiveSubscription())
	require.Equal(t, types.BillingStatusPaid, found.BillingStatus)
	require.True(t, paidAt.Equal(*found.LastInvoicePaidAt))
	// lead status is independent of billing
	require.Equal(t, types.SubmissionStatusNew, found.Status)
}

func TestUpdateFields_MissingRow(t *testing.T) {
	s := newTestService(t)
	err := s.UpdateFields(context.Background(), 77, map[string]any{models.ColBillingStatus: types.BillingStatusPaid}, types.ChangeReasonInvoicePaid, "stripe:evt_2")
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestUpdateFields_WritesAuditLog(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	m := createLead(t, s, "gus")

	require.NoError(t, s.UpdateFields(ctx, m.ID, map[string]any{models.ColBillingStatus: types.BillingStatusOverdue}, types.ChangeReasonInvoiceFailed, "stripe:evt_3"))

	require.Eventually(t, func() bool {
		var n int64
		s.db.Model(&models.SubmissionLog{}).
			Where("submission_id = ? AND reason = ?", m.ID, types.ChangeReasonInvoiceFailed).
			Count(&n)
		return n == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestScan_FiltersPaginatesAndSorts(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	a := createLead(t, s, "alpha")
	b := createLead(t, s, "beta")
	createLead(t, s, "gamma")
	_, err := s.UpdateStatus(ctx, a.ID, types.SubmissionStatusContacted, "admin")
	require.NoError(t, err)
	_, err = s.UpdateStatus(ctx, b.ID, types.SubmissionStatusContacted, "admin")
	require.NoError(t, err)

	resp, err := s.Scan(ctx, &ScanRequest{
		Filters:   []*types.CommonFilter{{Field: "status", Operator: types.CommonFilterOperatorEq, Values: []any{"CONTACTED"}}},
		Size:      1,
		SortBy:    "id",
		SortOrder: "asc",
	})
	require.NoError(t, err)
	require.EqualValues(t, 2, resp.Total)
	require.Len(t, resp.Items, 1)
	require.Equal(t, a.ID, resp.Items[0].ID)

	resp, err = s.Scan(ctx, &ScanRequest{
		Filters: []*types.CommonFilter{{Field: "name", Operator: types.CommonFilterOperatorContains, Values: []any{"AMM"}}},
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, resp.Total)
	require.Equal(t, "gamma", resp.Items[0].Name)
}

func TestScan_RejectsUnknownColumns(t *testing.T) {
	s := newTestService(t)
	_, err := s.Scan(context.Background(), &ScanRequest{
		Filters: []*types.CommonFilter{{Field: "setup_fee_token", Operator: types.CommonFilterOperatorIsNull}},
	})
	require.Error(t, err)

	_, err = s.Scan(context.Background(), &ScanRequest{SortBy: "id; drop table submission"})
	require.Error(t, err)
}

func TestNotes_AddListDelete(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	m := createLead(t, s, "hal")

	_, err := s.AddNote(ctx, m.ID, "admin", "   ")
	require.Error(t, err)
	_, err = s.AddNote(ctx, 4242, "admin", "orphan")
	require.ErrorIs(t, err, ErrSubmissionNotFound)

	first, err := s.AddNote(ctx, m.ID, "admin", "called, left voicemail")
	require.NoError(t, err)
	second, err := s.AddNote(ctx, m.ID, "admin", "sent quote")
	require.NoError(t, err)

	notes, err := s.ListNotes(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	require.ElementsMatch(t, []string{first.ID, second.ID}, []string{notes[0].ID, notes[1].ID})

	require.NoError(t, s.DeleteNote(ctx, first.ID))
	require.ErrorIs(t, s.DeleteNote(ctx, first.ID), ErrNoteNotFound)

	notes, err = s.ListNotes(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.Equal(t, second.ID, notes[0].ID)
}
