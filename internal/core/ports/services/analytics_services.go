package services

import (
	"time"

	"github.com/SscSPs/expense_tracker_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AnalyticsSvc exposes month-scoped aggregates over the current expense set.
type AnalyticsSvc interface {
	CategorySlices() []domain.CategorySlice
	DailySeries(days int) []decimal.Decimal
	TopCategory() string
	AverageDailySpend(days int) decimal.Decimal
	TotalThisMonth() decimal.Decimal
	IsReady() bool

	// Snapshot computes every aggregate for the selected reference month.
	Snapshot(days int) domain.AnalyticsSnapshot

	// SnapshotFor computes every aggregate for month without changing the
	// view's reference month.
	SnapshotFor(month time.Time, days int) domain.AnalyticsSnapshot

	// Dashboard returns today's and this month's spending.
	Dashboard() domain.DashboardSummary
}
