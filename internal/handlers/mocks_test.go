package handlers_test

import (
	"context"
	"time"

	"github.com/SscSPs/expense_tracker_app/internal/core/domain"
	portssvc "github.com/SscSPs/expense_tracker_app/internal/core/ports/services"
	"github.com/SscSPs/expense_tracker_app/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock ExpenseService ---
type MockExpenseService struct {
	mock.Mock
}

func (m *MockExpenseService) GetExpense(ctx context.Context, expenseID string) (*domain.Expense, error) {
	args := m.Called(ctx, expenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}

func (m *MockExpenseService) ListExpenses(ctx context.Context, params dto.ListExpensesParams) ([]domain.Expense, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Expense), args.Error(1)
}

func (m *MockExpenseService) GroupByDate(ctx context.Context, params dto.ListExpensesParams) ([]domain.ExpenseGroup, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExpenseGroup), args.Error(1)
}

func (m *MockExpenseService) GroupByCategory(ctx context.Context, params dto.ListExpensesParams) ([]domain.ExpenseGroup, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExpenseGroup), args.Error(1)
}

func (m *MockExpenseService) CreateExpense(ctx context.Context, req dto.ExpenseRequest) (*domain.Expense, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}

func (m *MockExpenseService) UpdateExpense(ctx context.Context, expenseID string, req dto.ExpenseRequest) (*domain.Expense, error) {
	args := m.Called(ctx, expenseID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}

func (m *MockExpenseService) DeleteExpense(ctx context.Context, expenseID string) error {
	args := m.Called(ctx, expenseID)
	return args.Error(0)
}

var _ portssvc.ExpenseSvcFacade = (*MockExpenseService)(nil)

// --- Mock AnalyticsService ---
type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) CategorySlices() []domain.CategorySlice {
	return m.Called().Get(0).([]domain.CategorySlice)
}

func (m *MockAnalyticsService) DailySeries(days int) []decimal.Decimal {
	return m.Called(days).Get(0).([]decimal.Decimal)
}

func (m *MockAnalyticsService) TopCategory() string {
	return m.Called().String(0)
}

func (m *MockAnalyticsService) AverageDailySpend(days int) decimal.Decimal {
	return m.Called(days).Get(0).(decimal.Decimal)
}

func (m *MockAnalyticsService) TotalThisMonth() decimal.Decimal {
	return m.Called().Get(0).(decimal.Decimal)
}

func (m *MockAnalyticsService) IsReady() bool {
	return m.Called().Bool(0)
}

func (m *MockAnalyticsService) Snapshot(days int) domain.AnalyticsSnapshot {
	return m.Called(days).Get(0).(domain.AnalyticsSnapshot)
}

func (m *MockAnalyticsService) SnapshotFor(month time.Time, days int) domain.AnalyticsSnapshot {
	return m.Called(month, days).Get(0).(domain.AnalyticsSnapshot)
}

func (m *MockAnalyticsService) Dashboard() domain.DashboardSummary {
	return m.Called().Get(0).(domain.DashboardSummary)
}

var _ portssvc.AnalyticsSvc = (*MockAnalyticsService)(nil)

// --- Mock ExchangeRateService ---
type MockExchangeRateService struct {
	mock.Mock
}

func (m *MockExchangeRateService) LoadLatest(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockExchangeRateService) LoadSymbols(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockExchangeRateService) RefreshLatest(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockExchangeRateService) RefreshSymbols(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockExchangeRateService) RefreshAll(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockExchangeRateService) LoadHistorical(ctx context.Context, date time.Time) (domain.RateTable, error) {
	args := m.Called(ctx, date)
	return args.Get(0).(domain.RateTable), args.Error(1)
}

func (m *MockExchangeRateService) IsReady() bool {
	return m.Called().Bool(0)
}

func (m *MockExchangeRateService) Latest() domain.RateTable {
	return m.Called().Get(0).(domain.RateTable)
}

func (m *MockExchangeRateService) Symbols() domain.SymbolTable {
	return m.Called().Get(0).(domain.SymbolTable)
}

func (m *MockExchangeRateService) Historical() (time.Time, domain.RateTable, bool) {
	args := m.Called()
	return args.Get(0).(time.Time), args.Get(1).(domain.RateTable), args.Bool(2)
}

func (m *MockExchangeRateService) Snapshot() domain.RateStoreSnapshot {
	return m.Called().Get(0).(domain.RateStoreSnapshot)
}

func (m *MockExchangeRateService) Convert(from, to string, amount decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(from, to, amount)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockExchangeRateService) FilterRates(search string) []domain.ExchangeRate {
	return m.Called(search).Get(0).([]domain.ExchangeRate)
}

func (m *MockExchangeRateService) FilterSymbols(search string) []domain.CurrencySymbol {
	return m.Called(search).Get(0).([]domain.CurrencySymbol)
}

var _ portssvc.ExchangeRateSvcFacade = (*MockExchangeRateService)(nil)
