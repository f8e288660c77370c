package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DefaultCategory is used for expenses recorded without a category.
	DefaultCategory = "Others"
	// DefaultCurrency is used for expenses recorded without a currency.
	DefaultCurrency = "INR"
)

// Expense is a single spending record. Optional fields are nil when absent.
type Expense struct {
	ID            string          `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	Category      *string         `json:"category,omitempty"`
	Date          *time.Time      `json:"date,omitempty"`
	Currency      *string         `json:"currency,omitempty"`
	PaymentMethod *string         `json:"paymentMethod,omitempty"`
	Note          *string         `json:"note,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// CategoryOrDefault returns the category, or DefaultCategory when nil.
func (e Expense) CategoryOrDefault() string {
	if e.Category == nil {
		return DefaultCategory
	}
	return *e.Category
}

// CurrencyOrDefault returns the currency code, or DefaultCurrency when nil.
func (e Expense) CurrencyOrDefault() string {
	if e.Currency == nil {
		return DefaultCurrency
	}
	return *e.Currency
}

// HasDate reports whether the expense can be placed on a calendar.
func (e Expense) HasDate() bool {
	return e.Date != nil && !e.Date.IsZero()
}

// CanonicalCategories is the fixed display order of the built-in categories.
var CanonicalCategories = []string{"Food", "Shopping", "Transport", "Entertainment", "Bills", "Others"}

// ChangeKind describes which mutation produced an ExpenseChanged event.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// ExpenseChanged is emitted after every successful create, update or delete.
type ExpenseChanged struct {
	Kind       ChangeKind `json:"kind"`
	ExpenseID  string     `json:"expenseID"`
	OccurredAt time.Time  `json:"occurredAt"`
}

// ExpenseGroup is a titled bucket of expenses, used by the grouped list views.
type ExpenseGroup struct {
	Key      string          `json:"key"`
	Date     *time.Time      `json:"date,omitempty"`
	Total    decimal.Decimal `json:"total"`
	Expenses []Expense       `json:"expenses"`
}
