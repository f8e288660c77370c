package services

import (
	"context"

	"github.com/SscSPs/expense_tracker_app/internal/core/domain"
	"github.com/SscSPs/expense_tracker_app/internal/dto"
)

// ExpenseReaderSvc defines read operations for expenses
type ExpenseReaderSvc interface {
	// GetExpense retrieves a specific expense by its ID.
	GetExpense(ctx context.Context, expenseID string) (*domain.Expense, error)

	// ListExpenses returns the filtered and sorted expense list.
	ListExpenses(ctx context.Context, params dto.ListExpensesParams) ([]domain.Expense, error)

	// GroupByDate buckets the filtered list by calendar day, newest day first.
	GroupByDate(ctx context.Context, params dto.ListExpensesParams) ([]domain.ExpenseGroup, error)

	// GroupByCategory buckets the filtered list by category name.
	GroupByCategory(ctx context.Context, params dto.ListExpensesParams) ([]domain.ExpenseGroup, error)
}

// ExpenseWriterSvc defines write operations for expenses. Every successful
// call publishes a domain.ExpenseChanged event.
type ExpenseWriterSvc interface {
	CreateExpense(ctx context.Context, req dto.ExpenseRequest) (*domain.Expense, error)
	UpdateExpense(ctx context.Context, expenseID string, req dto.ExpenseRequest) (*domain.Expense, error)
	DeleteExpense(ctx context.Context, expenseID string) error
}

// ExpenseSvcFacade combines all expense-related service interfaces
type ExpenseSvcFacade interface {
	ExpenseReaderSvc
	ExpenseWriterSvc
}

// EventPublisher delivers expense change events to interested consumers.
type EventPublisher interface {
	Publish(ctx context.Context, ev domain.ExpenseChanged)
}
