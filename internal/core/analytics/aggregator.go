// Package analytics computes month-scoped spending aggregates from an
// expense snapshot. Every function is pure given its inputs, the Calendar
// and the Valuer.
package analytics

import (
	"sort"
	"time"

	"github.com/SscSPs/expense_tracker_app/internal/core/currency"
	"github.com/SscSPs/expense_tracker_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DefaultSeriesDays is the window of the daily spending chart.
const DefaultSeriesDays = 7

// Aggregator binds a Calendar and a Valuer.
type Aggregator struct {
	cal   Calendar
	value Valuer
}

// New creates an Aggregator. A nil valuer sums original amounts.
func New(cal Calendar, value Valuer) Aggregator {
	if value == nil {
		value = OriginalAmount
	}
	return Aggregator{cal: cal, value: value}
}

// Calendar returns the calendar in use.
func (a Aggregator) Calendar() Calendar { return a.cal }

// FilterToMonth keeps dated expenses that share ref's year and month.
func (a Aggregator) FilterToMonth(expenses []domain.Expense, ref time.Time) []domain.Expense {
	filtered := make([]domain.Expense, 0, len(expenses))
	for _, e := range expenses {
		if !e.HasDate() {
			continue
		}
		if a.cal.SameMonth(*e.Date, ref) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// CategoryTotals sums valued amounts per category. Categories with no
// included expense are absent from the result.
func (a Aggregator) CategoryTotals(filtered []domain.Expense) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, e := range filtered {
		v := a.value(e)
		if !v.Included {
			continue
		}
		cat := e.CategoryOrDefault()
		totals[cat] = totals[cat].Add(v.Amount)
	}
	return totals
}

// Slices normalizes category totals into ordered percentage slices.
// Built-in categories come first in canonical order, the rest alphabetically.
func (a Aggregator) Slices(filtered []domain.Expense) []domain.CategorySlice {
	totals := a.CategoryTotals(filtered)

	grand := decimal.Zero
	for _, t := range totals {
		grand = grand.Add(t)
	}
	if !grand.IsPositive() {
		return []domain.CategorySlice{{Name: domain.NoDataCategory, Total: decimal.Zero, Percent: 1.0, Color: domain.ColorGray}}
	}

	slices := make([]domain.CategorySlice, 0, len(totals))
	for _, name := range orderedCategories(totals) {
		t := totals[name]
		if t.IsZero() {
			continue
		}
		slices = append(slices, domain.CategorySlice{
			Name:    name,
			Total:   t,
			Percent: t.Div(grand).InexactFloat64(),
			Color:   ColorFor(name),
		})
	}
	return slices
}

// TopCategory returns the category with the largest total. Ties go to the
// earlier canonical category, then to the alphabetically first name.
func (a Aggregator) TopCategory(filtered []domain.Expense) string {
	totals := a.CategoryTotals(filtered)
	if len(totals) == 0 {
		return domain.NoTopCategory
	}

	best := ""
	for _, name := range orderedCategories(totals) {
		if best == "" || totals[name].GreaterThan(totals[best]) {
			best = name
		}
	}
	return best
}

// DailySeries sums valued amounts into days buckets, oldest first, ending
// today for the current month and on the month's last day otherwise.
func (a Aggregator) DailySeries(filtered []domain.Expense, ref time.Time, days int) []decimal.Decimal {
	if days <= 0 {
		return []decimal.Decimal{}
	}

	now := a.cal.Today()
	end := a.cal.LastDayOfMonth(ref)
	if a.cal.SameMonth(ref, now) {
		end = now
	}

	series := make([]decimal.Decimal, 0, days)
	for offset := days - 1; offset >= 0; offset-- {
		start, next := a.cal.dayBounds(end, offset)
		sum := decimal.Zero
		for _, e := range filtered {
			if !e.HasDate() {
				continue
			}
			d := *e.Date
			if d.Before(start) || !d.Before(next) {
				continue
			}
			if v := a.value(e); v.Included {
				sum = sum.Add(v.Amount)
			}
		}
		series = append(series, sum)
	}
	return series
}

// AverageDailySpend is the mean of DailySeries, zero days included.
func (a Aggregator) AverageDailySpend(filtered []domain.Expense, ref time.Time, days int) decimal.Decimal {
	return Average(a.DailySeries(filtered, ref, days))
}

// Average returns the arithmetic mean of series, or zero when empty.
func Average(series []decimal.Decimal) decimal.Decimal {
	if len(series) == 0 {
		return decimal.Zero
	}
	return decimal.Sum(decimal.Zero, series...).Div(decimal.NewFromInt(int64(len(series))))
}

// Total sums valued amounts across expenses.
func (a Aggregator) Total(expenses []domain.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		if v := a.value(e); v.Included {
			total = total.Add(v.Amount)
		}
	}
	return total
}

// TotalThisMonth sums the month-filtered set.
func (a Aggregator) TotalThisMonth(filtered []domain.Expense) decimal.Decimal {
	return a.Total(filtered)
}

// TodaysSpending sums expenses dated on the calendar's current day.
func (a Aggregator) TodaysSpending(expenses []domain.Expense) decimal.Decimal {
	now := a.cal.Today()
	total := decimal.Zero
	for _, e := range expenses {
		if !e.HasDate() || !a.cal.SameDay(*e.Date, now) {
			continue
		}
		if v := a.value(e); v.Included {
			total = total.Add(v.Amount)
		}
	}
	return total
}

// ThisMonthSpending sums expenses dated in the calendar's current month.
func (a Aggregator) ThisMonthSpending(expenses []domain.Expense) decimal.Decimal {
	return a.Total(a.FilterToMonth(expenses, a.cal.Today()))
}

// Summarize computes every aggregate for ref in one pass over the snapshot.
func (a Aggregator) Summarize(expenses []domain.Expense, ref time.Time, days int) domain.AnalyticsSnapshot {
	filtered := a.FilterToMonth(expenses, ref)
	series := a.DailySeries(filtered, ref, days)

	snap := domain.AnalyticsSnapshot{
		ReferenceMonth:    a.cal.MonthStart(ref),
		Slices:            a.Slices(filtered),
		DailySeries:       series,
		TopCategory:       a.TopCategory(filtered),
		AverageDailySpend: Average(series),
		TotalThisMonth:    a.TotalThisMonth(filtered),
		ExpenseCount:      len(filtered),
	}
	for _, e := range filtered {
		v := a.value(e)
		switch {
		case !v.Included:
			snap.ExcludedCount++
		case v.Status == currency.Unconverted:
			snap.UnconvertedCount++
		}
	}
	return snap
}

// ColorFor maps a category to its fixed color token.
func ColorFor(category string) domain.ColorKey {
	switch category {
	case "Shopping":
		return domain.ColorGreen
	case "Food":
		return domain.ColorOrange
	case "Transport":
		return domain.ColorBlue
	case "Entertainment":
		return domain.ColorRed
	case "Bills":
		return domain.ColorPurple
	default:
		return domain.ColorGray
	}
}

func orderedCategories(totals map[string]decimal.Decimal) []string {
	ordered := make([]string, 0, len(totals))
	canonical := make(map[string]bool, len(domain.CanonicalCategories))
	for _, c := range domain.CanonicalCategories {
		canonical[c] = true
		if _, ok := totals[c]; ok {
			ordered = append(ordered, c)
		}
	}

	var extras []string
	for c := range totals {
		if !canonical[c] {
			extras = append(extras, c)
		}
	}
	sort.Strings(extras)
	return append(ordered, extras...)
}
