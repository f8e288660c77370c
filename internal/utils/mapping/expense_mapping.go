package mapping

import (
	"github.com/SscSPs/expense_tracker_app/internal/core/domain"
	"github.com/SscSPs/expense_tracker_app/internal/models"
)

// ToModelExpense converts a domain Expense to a model Expense
func ToModelExpense(d domain.Expense) models.Expense {
	return models.Expense{
		ExpenseID:     d.ID,
		Amount:        d.Amount,
		Category:      d.Category,
		ExpenseDate:   d.Date,
		CurrencyCode:  d.Currency,
		PaymentMethod: d.PaymentMethod,
		Note:          d.Note,
		AuditFields: models.AuditFields{
			CreatedAt: d.CreatedAt,
			UpdatedAt: d.UpdatedAt,
		},
	}
}

// ToDomainExpense converts a model Expense to a domain Expense. Timestamps
// come back from postgres in the session zone and are kept as stored.
func ToDomainExpense(m models.Expense) domain.Expense {
	return domain.Expense{
		ID:            m.ExpenseID,
		Amount:        m.Amount,
		Category:      m.Category,
		Date:          m.ExpenseDate,
		Currency:      m.CurrencyCode,
		PaymentMethod: m.PaymentMethod,
		Note:          m.Note,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// ToDomainExpenseSlice converts a slice of model Expenses to domain Expenses
func ToDomainExpenseSlice(ms []models.Expense) []domain.Expense {
	ds := make([]domain.Expense, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainExpense(m)
	}
	return ds
}
