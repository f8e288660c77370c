package dto

import (
	"time"

	"github.com/SscSPs/expense_tracker_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ExpenseRequest is the payload for creating or replacing an expense.
// Absent category and currency fall back to "Others" and "INR".
type ExpenseRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	Category      *string         `json:"category,omitempty" validate:"omitempty,max=64"`
	Date          *time.Time      `json:"date,omitempty"`
	Currency      *string         `json:"currency,omitempty" validate:"omitempty,len=3,alpha,uppercase"`
	PaymentMethod *string         `json:"paymentMethod,omitempty" validate:"omitempty,max=64"`
	Note          *string         `json:"note,omitempty" validate:"omitempty,max=500"`
}

// ListExpensesParams selects and orders the expense list.
type ListExpensesParams struct {
	// Category filters by effective category; "" and "All" disable the filter.
	Category string `form:"category"`
	SortBy   string `form:"sort" binding:"omitempty,oneof=date amount"`
	Group    string `form:"group" binding:"omitempty,oneof=date category"`
}

// ExpenseResponse is the API representation of an expense.
type ExpenseResponse struct {
	ID            string          `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	Category      string          `json:"category"`
	Date          *time.Time      `json:"date,omitempty"`
	Currency      string          `json:"currency"`
	PaymentMethod *string         `json:"paymentMethod,omitempty"`
	Note          *string         `json:"note,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// ExpenseGroupResponse is one titled bucket of the grouped list.
type ExpenseGroupResponse struct {
	Key      string            `json:"key"`
	Date     *time.Time        `json:"date,omitempty"`
	Total    decimal.Decimal   `json:"total"`
	Expenses []ExpenseResponse `json:"expenses"`
}

// ToExpenseResponse converts a domain.Expense to its response DTO.
func ToExpenseResponse(e *domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:            e.ID,
		Amount:        e.Amount,
		Category:      e.CategoryOrDefault(),
		Date:          e.Date,
		Currency:      e.CurrencyOrDefault(),
		PaymentMethod: e.PaymentMethod,
		Note:          e.Note,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// ToListExpenseResponse converts a slice of expenses.
func ToListExpenseResponse(expenses []domain.Expense) []ExpenseResponse {
	responses := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		responses[i] = ToExpenseResponse(&expenses[i])
	}
	return responses
}

// ToListExpenseGroupResponse converts grouped expenses.
func ToListExpenseGroupResponse(groups []domain.ExpenseGroup) []ExpenseGroupResponse {
	responses := make([]ExpenseGroupResponse, len(groups))
	for i, g := range groups {
		responses[i] = ExpenseGroupResponse{
			Key:      g.Key,
			Date:     g.Date,
			Total:    g.Total,
			Expenses: ToListExpenseResponse(g.Expenses),
		}
	}
	return responses
}
