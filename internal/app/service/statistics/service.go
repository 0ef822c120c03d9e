package statistics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/fatflowers/sitecraft/internal/models"
	"github.com/fatflowers/sitecraft/pkg/types"
)

var ErrInvalidRequest = errors.New("invalid statistic request")

var Module = fx.Options(
	fx.Provide(New),
)

type StatisticType string

const (
	StatisticTypeDailySubmissionCount    StatisticType = "daily_submission_count"
	StatisticTypeDailyRevenue            StatisticType = "daily_revenue"
	StatisticTypeTotalRevenue            StatisticType = "total_revenue"
	StatisticTypeActiveSubscriptionCount StatisticType = "active_subscription_count"
	StatisticTypeOverdueCount            StatisticType = "overdue_count"
	StatisticTypeStatusBreakdown         StatisticType = "status_breakdown"
)

var statisticTypes = []StatisticType{
	StatisticTypeDailySubmissionCount,
	StatisticTypeDailyRevenue,
	StatisticTypeTotalRevenue,
	StatisticTypeActiveSubscriptionCount,
	StatisticTypeOverdueCount,
	StatisticTypeStatusBreakdown,
}

type DataItem struct {
	ID StatisticType `json:"id"`
}

type Request struct {
	Filters   []*types.CommonFilter `json:"filters"`
	DataItems []*DataItem           `json:"data_items"`
}

type ResponseDataItem struct {
	Date  string `json:"date,omitempty"`
	Label string `json:"label,omitempty"`
	Value int64  `json:"value"`
	// Amount is set for revenue items, in major currency units.
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

type Response struct {
	DataItems map[StatisticType][]ResponseDataItem `json:"data_items"`
}

// Service computes admin dashboard aggregates over submissions.
type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) base(ctx context.Context, request *Request) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Submission{})
	if len(request.Filters) > 0 {
		q = q.Where(types.FiltersAnd(request.Filters))
	}
	return q
}

// Dates are bucketed in Go so the same code runs on every SQL dialect.
func (s *Service) getDailySubmissionCount(ctx context.Context, request *Request) ([]ResponseDataItem, error) {
	var rows []time.Time
	if err := s.base(ctx, request).Pluck("created_at", &rows).Error; err != nil {
		return nil, err
	}
	counts := lo.CountValuesBy(rows, dateKey)
	return sortedByDate(lo.MapToSlice(counts, func(date string, n int) ResponseDataItem {
		return ResponseDataItem{Date: date, Value: int64(n)}
	})), nil
}

type paidRow struct {
	PaidAt  time.Time
	Revenue decimal.Decimal
}

func (s *Service) paidRows(ctx context.Context, request *Request) ([]paidRow, error) {
	var rows []paidRow
	err := s.base(ctx, request).
		Select("paid_at, revenue").
		Where("paid_at IS NOT NULL AND revenue IS NOT NULL").
		Scan(&rows).Error
	return rows, err
}

func (s *Service) getDailyRevenue(ctx context.Context, request *Request) ([]ResponseDataItem, error) {
	rows, err := s.paidRows(ctx, request)
	if err != nil {
		return nil, err
	}
	byDate := lo.GroupBy(rows, func(r paidRow) string { return dateKey(r.PaidAt) })
	return sortedByDate(lo.MapToSlice(byDate, func(date string, rs []paidRow) ResponseDataItem {
		sum := decimal.Zero
		for _, r := range rs {
			sum = sum.Add(r.Revenue)
		}
		return ResponseDataItem{Date: date, Value: int64(len(rs)), Amount: &sum}
	})), nil
}

// getTotalRevenue is the running total of daily revenue.
func (s *Service) getTotalRevenue(ctx context.Context, request *Request) ([]ResponseDataItem, error) {
	daily, err := s.getDailyRevenue(ctx, request)
	if err != nil {
		return nil, err
	}
	var count int64
	amount := decimal.Zero
	return lo.Map(daily, func(d ResponseDataItem, _ int) ResponseDataItem {
		count += d.Value
		amount = amount.Add(*d.Amount)
		total := amount
		return ResponseDataItem{Date: d.Date, Value: count, Amount: &total}
	}), nil
}

func (s *Service) countWhere(ctx context.Context, request *Request, query string, args ...any) ([]ResponseDataItem, error) {
	var n int64
	if err := s.base(ctx, request).Where(query, args...).Count(&n).Error; err != nil {
		return nil, err
	}
	return []ResponseDataItem{{Value: n}}, nil
}

func (s *Service) getStatusBreakdown(ctx context.Context, request *Request) ([]ResponseDataItem, error) {
	var results []ResponseDataItem
	err := s.base(ctx, request).
		Select("status as label, count(*) as value").
		Group("status").
		Order("status").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getStatistic(ctx context.Context, request *Request, dataItem *DataItem) ([]ResponseDataItem, error) {
	switch dataItem.ID {
	case StatisticTypeDailySubmissionCount:
		return s.getDailySubmissionCount(ctx, request)
	case StatisticTypeDailyRevenue:
		return s.getDailyRevenue(ctx, request)
	case StatisticTypeTotalRevenue:
		return s.getTotalRevenue(ctx, request)
	case StatisticTypeActiveSubscriptionCount:
		return s.countWhere(ctx, request, "subscription_status = ?", types.SubscriptionStatusActive)
	case StatisticTypeOverdueCount:
		return s.countWhere(ctx, request, "billing_status = ?", types.BillingStatusOverdue)
	case StatisticTypeStatusBreakdown:
		return s.getStatusBreakdown(ctx, request)
	default:
		return nil, fmt.Errorf("invalid data item id: %s", dataItem.ID)
	}
}

// GetStatistic computes every requested data item concurrently.
func (s *Service) GetStatistic(ctx context.Context, request *Request) (*Response, error) {
	if err := types.CheckFields(request.Filters, models.SubmissionColumns); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	for _, item := range request.DataItems {
		if item == nil || !lo.Contains(statisticTypes, item.ID) {
			return nil, fmt.Errorf("%w: unknown data item %v", ErrInvalidRequest, item)
		}
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(request.DataItems))
	resChan := make(chan *lo.Entry[StatisticType, []ResponseDataItem], len(request.DataItems))

	for _, item := range request.DataItems {
		wg.Add(1)
		go func(di *DataItem) {
			defer wg.Done()
			res, err := s.getStatistic(ctx, request, di)
			if err != nil {
				errChan <- fmt.Errorf("%s: %w", di.ID, err)
				return
			}
			resChan <- &lo.Entry[StatisticType, []ResponseDataItem]{Key: di.ID, Value: res}
		}(item)
	}

	wg.Wait()
	close(errChan)
	close(resChan)

	if err := <-errChan; err != nil {
		return nil, err
	}
	results := make(map[StatisticType][]ResponseDataItem, len(request.DataItems))
	for entry := range resChan {
		results[entry.Key] = entry.Value
	}
	return &Response{DataItems: results}, nil
}

func dateKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

func sortedByDate(items []ResponseDataItem) []ResponseDataItem {
	sort.Slice(items, func(i, j int) bool { return items[i].Date < items[j].Date })
	return items
}
