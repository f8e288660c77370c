package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/expense_tracker_app/internal/core/analytics"
	"github.com/SscSPs/expense_tracker_app/internal/core/domain"
	"github.com/SscSPs/expense_tracker_app/internal/core/events"
	portsrepo "github.com/SscSPs/expense_tracker_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expense_tracker_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// ChangeSource is where an AnalyticsView learns that expenses changed.
type ChangeSource interface {
	Subscribe(handler events.Handler) (unsubscribe func())
}

// AnalyticsView is a reactive, month-scoped view over the expense set.
// It reloads its snapshot synchronously on every change event, so values
// read after a mutation returns already include that mutation.
type AnalyticsView struct {
	BaseService
	repo     portsrepo.ExpenseReader
	rates    portssvc.RateSource
	target   string
	calendar analytics.Calendar

	unsubscribe func()

	// reloadMu serializes reloads so a slower reload cannot overwrite a newer one.
	reloadMu sync.Mutex
	mu       sync.RWMutex
	expenses []domain.Expense
	ref      time.Time
}

// AnalyticsViewOption configures an AnalyticsView.
type AnalyticsViewOption func(*AnalyticsView)

// WithTargetCurrency sets the currency cross-currency sums are normalized into.
func WithTargetCurrency(code string) AnalyticsViewOption {
	return func(v *AnalyticsView) {
		if code != "" {
			v.target = code
		}
	}
}

// WithAnalyticsCalendar sets the calendar used for month and day boundaries.
func WithAnalyticsCalendar(cal analytics.Calendar) AnalyticsViewOption {
	return func(v *AnalyticsView) {
		v.calendar = cal
	}
}

// NewAnalyticsView loads the current expense snapshot, subscribes to
// changes and selects the current month. rates may be nil, in which case
// sums use the target-currency-only fallback.
func NewAnalyticsView(ctx context.Context, repo portsrepo.ExpenseReader, rates portssvc.RateSource, changes ChangeSource, opts ...AnalyticsViewOption) (*AnalyticsView, error) {
	v := &AnalyticsView{
		repo:     repo,
		rates:    rates,
		target:   domain.DefaultCurrency,
		calendar: analytics.DefaultCalendar(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.ref = v.calendar.MonthStart(v.calendar.Today())

	if err := v.reload(ctx); err != nil {
		return nil, err
	}
	if changes != nil {
		v.unsubscribe = changes.Subscribe(v.onChange)
	}
	return v, nil
}

var _ portssvc.AnalyticsSvc = (*AnalyticsView)(nil)

func (v *AnalyticsView) reload(ctx context.Context) error {
	v.reloadMu.Lock()
	defer v.reloadMu.Unlock()

	expenses, err := v.repo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load expenses for analytics: %w", err)
	}
	v.mu.Lock()
	v.expenses = expenses
	v.mu.Unlock()
	return nil
}

func (v *AnalyticsView) onChange(ctx context.Context, ev domain.ExpenseChanged) {
	if err := v.reload(ctx); err != nil {
		v.LogError(ctx, err, "Analytics reload failed, keeping previous snapshot",
			slog.String("kind", string(ev.Kind)), slog.String("expense_id", ev.ExpenseID))
		return
	}
	v.LogDebug(ctx, "Analytics recomputed", slog.String("kind", string(ev.Kind)))
}

// Close unsubscribes from change events.
func (v *AnalyticsView) Close() {
	if v.unsubscribe != nil {
		v.unsubscribe()
	}
}

// SetReferenceMonth selects the month every accessor reports on.
func (v *AnalyticsView) SetReferenceMonth(month time.Time) {
	v.mu.Lock()
	v.ref = v.calendar.MonthStart(month)
	v.mu.Unlock()
}

// ReferenceMonth returns the first instant of the selected month.
func (v *AnalyticsView) ReferenceMonth() time.Time {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.ref
}

// IsReady reports whether sums are converted into the target currency.
func (v *AnalyticsView) IsReady() bool {
	return v.rates != nil && v.rates.IsReady()
}

func (v *AnalyticsView) aggregator() analytics.Aggregator {
	ready := v.IsReady()
	var table domain.RateTable
	if ready {
		table = v.rates.Latest()
	}
	return analytics.New(v.calendar, analytics.ValuerFor(ready, table, v.target))
}

func (v *AnalyticsView) state() ([]domain.Expense, time.Time) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.expenses, v.ref
}

func (v *AnalyticsView) monthExpenses(agg analytics.Aggregator) ([]domain.Expense, time.Time) {
	expenses, ref := v.state()
	return agg.FilterToMonth(expenses, ref), ref
}

// CategorySlices returns the selected month's ordered category shares.
func (v *AnalyticsView) CategorySlices() []domain.CategorySlice {
	agg := v.aggregator()
	filtered, _ := v.monthExpenses(agg)
	return agg.Slices(filtered)
}

// DailySeries returns per-day sums for the last days days of the selected month.
func (v *AnalyticsView) DailySeries(days int) []decimal.Decimal {
	agg := v.aggregator()
	filtered, ref := v.monthExpenses(agg)
	return agg.DailySeries(filtered, ref, days)
}

// TopCategory returns the selected month's largest category.
func (v *AnalyticsView) TopCategory() string {
	agg := v.aggregator()
	filtered, _ := v.monthExpenses(agg)
	return agg.TopCategory(filtered)
}

// AverageDailySpend is the mean of DailySeries(days).
func (v *AnalyticsView) AverageDailySpend(days int) decimal.Decimal {
	return analytics.Average(v.DailySeries(days))
}

// TotalThisMonth sums the selected month.
func (v *AnalyticsView) TotalThisMonth() decimal.Decimal {
	agg := v.aggregator()
	filtered, _ := v.monthExpenses(agg)
	return agg.TotalThisMonth(filtered)
}

// Snapshot computes every aggregate for the selected month.
func (v *AnalyticsView) Snapshot(days int) domain.AnalyticsSnapshot {
	return v.SnapshotFor(v.ReferenceMonth(), days)
}

// SnapshotFor computes every aggregate for month without selecting it.
func (v *AnalyticsView) SnapshotFor(month time.Time, days int) domain.AnalyticsSnapshot {
	agg := v.aggregator()
	expenses, _ := v.state()

	snap := agg.Summarize(expenses, month, days)
	snap.TargetCurrency = v.target
	snap.RatesReady = v.IsReady()
	return snap
}

// TodaysSpending sums expenses dated today.
func (v *AnalyticsView) TodaysSpending() decimal.Decimal {
	expenses, _ := v.state()
	return v.aggregator().TodaysSpending(expenses)
}

// ThisMonthSpending sums expenses dated in the current month, whatever month is selected.
func (v *AnalyticsView) ThisMonthSpending() decimal.Decimal {
	expenses, _ := v.state()
	return v.aggregator().ThisMonthSpending(expenses)
}

// Dashboard returns the home-screen headline figures.
func (v *AnalyticsView) Dashboard() domain.DashboardSummary {
	expenses, _ := v.state()
	agg := v.aggregator()
	return domain.DashboardSummary{
		TargetCurrency:    v.target,
		RatesReady:        v.IsReady(),
		TodaysSpending:    agg.TodaysSpending(expenses),
		ThisMonthSpending: agg.ThisMonthSpending(expenses),
	}
}
