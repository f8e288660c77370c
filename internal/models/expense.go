package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditFields holds the row timestamps maintained by the repository.
type AuditFields struct {
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Expense is the persisted form of an expense row. Nullable columns stay
// nullable here; defaults are applied only in the domain accessors.
type Expense struct {
	ExpenseID     string          `db:"expense_id"`
	Amount        decimal.Decimal `db:"amount"`
	Category      *string         `db:"category"`
	ExpenseDate   *time.Time      `db:"expense_date"`
	CurrencyCode  *string         `db:"currency_code"`
	PaymentMethod *string         `db:"payment_method"`
	Note          *string         `db:"note"`
	AuditFields
}
