package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// NoDataCategory names the single slice returned when a period has no spending.
const NoDataCategory = "No Data"

// NoTopCategory is reported as top category when a period has no spending.
const NoTopCategory = "—"

// ColorKey is a presentation-neutral color token for a category.
type ColorKey string

const (
	ColorGreen  ColorKey = "green"
	ColorOrange ColorKey = "orange"
	ColorBlue   ColorKey = "blue"
	ColorRed    ColorKey = "red"
	ColorPurple ColorKey = "purple"
	ColorGray   ColorKey = "gray"
)

// CategorySlice is one category's share of a period's spending.
type CategorySlice struct {
	Name    string          `json:"name"`
	Total   decimal.Decimal `json:"total"`
	Percent float64         `json:"percent"`
	Color   ColorKey        `json:"color"`
}

// CategoryTotal is the summed amount for one category.
type CategoryTotal struct {
	Name  string
	Total decimal.Decimal
}

// AnalyticsSnapshot bundles every aggregate computed for a reference month.
type AnalyticsSnapshot struct {
	ReferenceMonth    time.Time         `json:"referenceMonth"`
	TargetCurrency    string            `json:"targetCurrency"`
	RatesReady        bool              `json:"ratesReady"`
	Slices            []CategorySlice   `json:"slices"`
	DailySeries       []decimal.Decimal `json:"dailySeries"`
	TopCategory       string            `json:"topCategory"`
	AverageDailySpend decimal.Decimal   `json:"averageDailySpend"`
	TotalThisMonth    decimal.Decimal   `json:"totalThisMonth"`
	ExpenseCount      int               `json:"expenseCount"`
	UnconvertedCount  int               `json:"unconvertedCount"`
	ExcludedCount     int               `json:"excludedCount"`
}

// DashboardSummary holds the headline figures of the home screen.
type DashboardSummary struct {
	TargetCurrency    string          `json:"targetCurrency"`
	RatesReady        bool            `json:"ratesReady"`
	TodaysSpending    decimal.Decimal `json:"todaysSpending"`
	ThisMonthSpending decimal.Decimal `json:"thisMonthSpending"`
}
