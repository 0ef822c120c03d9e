package statistics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fatflowers/sitecraft/internal/models"
	"github.com/fatflowers/sitecraft/internal/platform/db/dbtest"
	"github.com/fatflowers/sitecraft/pkg/types"
)

func money(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func seed(t *testing.T) *Service {
	t.Helper()
	db := dbtest.New(t)
	day1 := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	rows := []*models.Submission{
		{Name: "a", Email: "a@x.test", Status: types.SubmissionStatusPaid, BillingStatus: types.BillingStatusPaid, Revenue: money("500.00"), PaidAt: &day1, CreatedAt: day1,
			SubscriptionStatus: lo.ToPtr(types.SubscriptionStatusActive)},
		{Name: "b", Email: "b@x.test", Status: types.SubmissionStatusPaid, BillingStatus: types.BillingStatusOverdue, Revenue: money("250.50"), PaidAt: &day2, CreatedAt: day1,
			SubscriptionStatus: lo.ToPtr(types.SubscriptionStatusPastDue)},
		{Name: "c", Email: "c@x.test", Status: types.SubmissionStatusNew, BillingStatus: types.BillingStatusPending, CreatedAt: day2},
	}
	for _, r := range rows {
		r.DeploymentStatus = types.DeploymentStatusNotStarted
		require.NoError(t, db.Create(r).Error)
	}
	return New(db)
}

func items(ids ...StatisticType) []*DataItem {
	return lo.Map(ids, func(id StatisticType, _ int) *DataItem { return &DataItem{ID: id} })
}

func TestGetStatistic_AllItems(t *testing.T) {
	s := seed(t)
	resp, err := s.GetStatistic(context.Background(), &Request{DataItems: items(statisticTypes...)})
	require.NoError(t, err)

	require.Equal(t, []ResponseDataItem{
		{Date: "2026-04-01", Value: 2},
		{Date: "2026-04-02", Value: 1},
	}, resp.DataItems[StatisticTypeDailySubmissionCount])

	daily := resp.DataItems[StatisticTypeDailyRevenue]
	require.Len(t, daily, 2)
	require.Equal(t, "500.00", daily[0].Amount.StringFixed(2))
	require.Equal(t, "250.50", daily[1].Amount.StringFixed(2))

	total := resp.DataItems[StatisticTypeTotalRevenue]
	require.Len(t, total, 2)
	require.Equal(t, "500.00", total[0].Amount.StringFixed(2))
	require.Equal(t, "750.50", total[1].Amount.StringFixed(2))
	require.EqualValues(t, 2, total[1].Value)

	require.EqualValues(t, 1, resp.DataItems[StatisticTypeActiveSubscriptionCount][0].Value)
	require.EqualValues(t, 1, resp.DataItems[StatisticTypeOverdueCount][0].Value)

	breakdown := resp.DataItems[StatisticTypeStatusBreakdown]
	require.ElementsMatch(t, []ResponseDataItem{{Label: "NEW", Value: 1}, {Label: "PAID", Value: 2}}, breakdown)
}

func TestGetStatistic_RevenueSumsWithoutRounding(t *testing.T) {
	db := dbtest.New(t)
	day := time.Date(2026, 4, 3, 9, 0, 0, 0, time.UTC)
	for i, amount := range []string{"0.10", "0.20", "1999.99"} {
		require.NoError(t, db.Create(&models.Submission{
			Name: fmt.Sprintf("r%d", i), Email: "r@x.test",
			Status: types.SubmissionStatusPaid, BillingStatus: types.BillingStatusPaid, DeploymentStatus: types.DeploymentStatusNotStarted,
			Revenue: money(amount), PaidAt: &day, CreatedAt: day,
		}).Error)
	}

	resp, err := New(db).GetStatistic(context.Background(), &Request{DataItems: items(StatisticTypeDailyRevenue, StatisticTypeTotalRevenue)})
	require.NoError(t, err)
	require.Equal(t, "2000.29", resp.DataItems[StatisticTypeDailyRevenue][0].Amount.String())
	require.Equal(t, "2000.29", resp.DataItems[StatisticTypeTotalRevenue][0].Amount.String())
}

func TestGetStatistic_Filters(t *testing.T) {
	s := seed(t)
	resp, err := s.GetStatistic(context.Background(), &Request{
		Filters:   []*types.CommonFilter{{Field: "status", Operator: types.CommonFilterOperatorEq, Values: []any{"NEW"}}},
		DataItems: items(StatisticTypeDailySubmissionCount, StatisticTypeDailyRevenue),
	})
	require.NoError(t, err)
	require.Equal(t, []ResponseDataItem{{Date: "2026-04-02", Value: 1}}, resp.DataItems[StatisticTypeDailySubmissionCount])
	require.Empty(t, resp.DataItems[StatisticTypeDailyRevenue])
}

func TestGetStatistic_RejectsUnknown(t *testing.T) {
	s := seed(t)
	_, err := s.GetStatistic(context.Background(), &Request{DataItems: items("renewal_success_rate")})
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = s.GetStatistic(context.Background(), &Request{
		Filters:   []*types.CommonFilter{{Field: "subscription_token", Operator: types.CommonFilterOperatorIsNull}},
		DataItems: items(StatisticTypeOverdueCount),
	})
	require.ErrorIs(t, err, ErrInvalidRequest)
}
