package services_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SscSPs/expense_tracker_app/internal/core/analytics"
	"github.com/SscSPs/expense_tracker_app/internal/core/domain"
	"github.com/SscSPs/expense_tracker_app/internal/core/events"
	portssvc "github.com/SscSPs/expense_tracker_app/internal/core/ports/services"
	"github.com/SscSPs/expense_tracker_app/internal/core/services"
	"github.com/SscSPs/expense_tracker_app/internal/dto"
	"github.com/SscSPs/expense_tracker_app/internal/repositories/kvstore"
	"github.com/SscSPs/expense_tracker_app/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// stubRateSource lets a test flip readiness between calls.
type stubRateSource struct {
	ready atomic.Bool
	table domain.RateTable
}

func (s *stubRateSource) IsReady() bool            { return s.ready.Load() }
func (s *stubRateSource) Latest() domain.RateTable { return s.table }

type AnalyticsViewTestSuite struct {
	suite.Suite
	ctx      context.Context
	repo     *memory.ExpenseRepository
	hub      *events.Hub
	rates    *stubRateSource
	calendar analytics.Calendar
	expenses portssvc.ExpenseSvcFacade
	view     *services.AnalyticsView
}

func (suite *AnalyticsViewTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.repo = memory.NewExpenseRepository()
	suite.hub = events.NewHub()
	suite.rates = &stubRateSource{table: domain.NewRateTable(map[string]float64{"USD": 1.1, "INR": 90.0})}
	now := time.Date(2025, time.January, 20, 12, 0, 0, 0, time.UTC)
	suite.calendar = analytics.Calendar{Location: time.UTC, Now: func() time.Time { return now }}
	suite.expenses = services.NewExpenseService(suite.repo,
		services.WithEventPublisher(suite.hub),
		services.WithExpenseCalendar(suite.calendar),
	)

	view, err := services.NewAnalyticsView(suite.ctx, suite.repo, suite.rates, suite.hub,
		services.WithTargetCurrency("INR"),
		services.WithAnalyticsCalendar(suite.calendar),
	)
	suite.Require().NoError(err)
	suite.view = view
}

func (suite *AnalyticsViewTestSuite) TearDownTest() {
	suite.view.Close()
}

func TestAnalyticsViewTestSuite(t *testing.T) {
	suite.Run(t, new(AnalyticsViewTestSuite))
}

func (suite *AnalyticsViewTestSuite) add(amount int64, category, currency *string, date *time.Time) {
	_, err := suite.expenses.CreateExpense(suite.ctx, dto.ExpenseRequest{
		Amount:   decimal.NewFromInt(amount),
		Category: category,
		Currency: currency,
		Date:     date,
	})
	suite.Require().NoError(err)
}

func (suite *AnalyticsViewTestSuite) TestEmptyView() {
	slices := suite.view.CategorySlices()
	suite.Require().Len(slices, 1)
	suite.Equal(domain.NoDataCategory, slices[0].Name)
	suite.Equal(domain.NoTopCategory, suite.view.TopCategory())
	suite.True(suite.view.TotalThisMonth().IsZero())
	suite.Len(suite.view.DailySeries(7), 7)
	suite.True(suite.view.AverageDailySpend(7).IsZero())
}

func (suite *AnalyticsViewTestSuite) TestRecomputesAfterEachMutation() {
	suite.add(100, strPtr("Food"), nil, timeAt(2025, time.January, 5, 10))
	suite.True(decimal.NewFromInt(100).Equal(suite.view.TotalThisMonth()))

	suite.add(50, strPtr("Food"), nil, timeAt(2025, time.January, 6, 10))
	suite.add(25, nil, nil, timeAt(2025, time.January, 6, 11))

	suite.True(decimal.NewFromInt(175).Equal(suite.view.TotalThisMonth()))
	suite.Equal("Food", suite.view.TopCategory())
	slices := suite.view.CategorySlices()
	suite.Require().Len(slices, 2)
	suite.InDelta(150.0/175.0, slices[0].Percent, 1e-9)

	list, err := suite.expenses.ListExpenses(suite.ctx, dto.ListExpensesParams{Category: "Food"})
	suite.Require().NoError(err)
	for _, e := range list {
		suite.Require().NoError(suite.expenses.DeleteExpense(suite.ctx, e.ID))
	}

	suite.True(decimal.NewFromInt(25).Equal(suite.view.TotalThisMonth()))
	suite.Equal("Others", suite.view.TopCategory())
}

func (suite *AnalyticsViewTestSuite) TestDegradedUntilRatesReady() {
	suite.add(100, nil, strPtr("INR"), timeAt(2025, time.January, 20, 9))
	suite.add(11, nil, strPtr("USD"), timeAt(2025, time.January, 20, 9))

	suite.False(suite.view.IsReady())
	snap := suite.view.Snapshot(7)
	suite.True(decimal.NewFromInt(100).Equal(snap.TotalThisMonth))
	suite.Equal(1, snap.ExcludedCount)
	suite.False(snap.RatesReady)
	suite.Equal("INR", snap.TargetCurrency)

	suite.rates.ready.Store(true)

	suite.True(suite.view.IsReady())
	suite.True(decimal.NewFromInt(1000).Equal(suite.view.TotalThisMonth()))
	dash := suite.view.Dashboard()
	suite.True(decimal.NewFromInt(1000).Equal(dash.TodaysSpending))
	suite.True(decimal.NewFromInt(1000).Equal(dash.ThisMonthSpending))
	suite.True(dash.RatesReady)
}

func (suite *AnalyticsViewTestSuite) TestDegradedWhenOnlyRatesAreCached() {
	cache := kvstore.NewMemoryStore()
	suite.Require().NoError(cache.Set(suite.ctx, services.LatestRatesKey, []byte(`{"USD":1.1,"INR":90}`)))
	store := services.NewExchangeRateStore(new(MockRateProvider), cache)
	defer store.Close()
	suite.Require().NoError(store.Restore(suite.ctx))

	view, err := services.NewAnalyticsView(suite.ctx, suite.repo, store, suite.hub,
		services.WithTargetCurrency("INR"),
		services.WithAnalyticsCalendar(suite.calendar),
	)
	suite.Require().NoError(err)
	defer view.Close()

	suite.add(100, nil, strPtr("INR"), timeAt(2025, time.January, 20, 9))
	suite.add(50, nil, strPtr("USD"), timeAt(2025, time.January, 20, 9))

	suite.False(view.IsReady())
	snap := view.Snapshot(7)
	suite.True(decimal.NewFromInt(100).Equal(snap.TotalThisMonth), snap.TotalThisMonth.String())
	suite.Equal(1, snap.ExcludedCount)
}

func (suite *AnalyticsViewTestSuite) TestConcurrentMutationsSettleOnLatestState() {
	const writers = 8
	const perWriter = 5

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				_, err := suite.expenses.CreateExpense(suite.ctx, dto.ExpenseRequest{
					Amount: decimal.NewFromInt(10),
					Date:   timeAt(2025, time.January, 10, 9),
				})
				suite.NoError(err)
			}
		}()
	}
	wg.Wait()

	want := decimal.NewFromInt(10 * writers * perWriter)
	suite.True(want.Equal(suite.view.TotalThisMonth()), suite.view.TotalThisMonth().String())
	suite.Equal(writers*perWriter, suite.view.Snapshot(7).ExpenseCount)
}

func (suite *AnalyticsViewTestSuite) TestSetReferenceMonth() {
	suite.add(40, strPtr("Bills"), nil, timeAt(2024, time.December, 31, 20))
	suite.add(10, strPtr("Food"), nil, timeAt(2025, time.January, 2, 9))

	suite.Equal("Food", suite.view.TopCategory())

	suite.view.SetReferenceMonth(time.Date(2024, time.December, 15, 0, 0, 0, 0, time.UTC))
	suite.Equal(time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), suite.view.ReferenceMonth())
	suite.Equal("Bills", suite.view.TopCategory())

	series := suite.view.DailySeries(7)
	suite.Require().Len(series, 7)
	suite.True(decimal.NewFromInt(40).Equal(series[6]))

	// Dashboard month follows the clock, not the selection.
	suite.True(decimal.NewFromInt(10).Equal(suite.view.ThisMonthSpending()))
	suite.True(suite.view.TodaysSpending().IsZero())
}

func (suite *AnalyticsViewTestSuite) TestSnapshotForDoesNotChangeSelection() {
	suite.add(40, strPtr("Bills"), nil, timeAt(2024, time.December, 31, 20))

	snap := suite.view.SnapshotFor(time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), 3)
	suite.Equal("Bills", snap.TopCategory)
	suite.Equal(1, snap.ExpenseCount)
	suite.Len(snap.DailySeries, 3)
	suite.Equal(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), suite.view.ReferenceMonth())
}

func (suite *AnalyticsViewTestSuite) TestCloseStopsUpdates() {
	suite.view.Close()
	suite.add(100, strPtr("Food"), nil, timeAt(2025, time.January, 5, 10))

	suite.True(suite.view.TotalThisMonth().IsZero())
	suite.Equal(0, suite.hub.Len())
}

func TestNewAnalyticsView_LoadError(t *testing.T) {
	repo := new(MockExpenseRepository)
	repo.On("ListAll", context.Background()).Return(nil, errors.New("db down")).Once()

	_, err := services.NewAnalyticsView(context.Background(), repo, nil, events.NewHub())

	if err == nil {
		t.Fatal("expected load error")
	}
	repo.AssertExpectations(t)
}
