// Package memory holds process-local repository implementations used by the
// memory data backend and in tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/SscSPs/expense_tracker_app/internal/apperrors"
	"github.com/SscSPs/expense_tracker_app/internal/core/domain"
	portsrepo "github.com/SscSPs/expense_tracker_app/internal/core/ports/repositories"
)

// ExpenseRepository keeps expenses in a map guarded by a RWMutex.
type ExpenseRepository struct {
	mu       sync.RWMutex
	expenses map[string]domain.Expense
}

var _ portsrepo.ExpenseRepositoryFacade = (*ExpenseRepository)(nil)

// NewExpenseRepository creates an empty repository.
func NewExpenseRepository() *ExpenseRepository {
	return &ExpenseRepository{expenses: make(map[string]domain.Expense)}
}

// SaveExpense implements portsrepo.ExpenseWriter.
func (r *ExpenseRepository) SaveExpense(_ context.Context, expense domain.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.expenses[expense.ID]; exists {
		return fmt.Errorf("expense %s: %w", expense.ID, apperrors.ErrDuplicate)
	}
	r.expenses[expense.ID] = expense
	return nil
}

// UpdateExpense implements portsrepo.ExpenseWriter.
func (r *ExpenseRepository) UpdateExpense(_ context.Context, expense domain.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.expenses[expense.ID]; !exists {
		return fmt.Errorf("expense %s: %w", expense.ID, apperrors.ErrNotFound)
	}
	r.expenses[expense.ID] = expense
	return nil
}

// DeleteExpense implements portsrepo.ExpenseWriter.
func (r *ExpenseRepository) DeleteExpense(_ context.Context, expenseID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.expenses[expenseID]; !exists {
		return fmt.Errorf("expense %s: %w", expenseID, apperrors.ErrNotFound)
	}
	delete(r.expenses, expenseID)
	return nil
}

// FindExpenseByID implements portsrepo.ExpenseReader.
func (r *ExpenseRepository) FindExpenseByID(_ context.Context, expenseID string) (*domain.Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	expense, ok := r.expenses[expenseID]
	if !ok {
		return nil, fmt.Errorf("expense %s: %w", expenseID, apperrors.ErrNotFound)
	}
	return &expense, nil
}

// ListAll implements portsrepo.ExpenseReader.
func (r *ExpenseRepository) ListAll(_ context.Context) ([]domain.Expense, error) {
	r.mu.RLock()
	list := make([]domain.Expense, 0, len(r.expenses))
	for _, e := range r.expenses {
		list = append(list, e)
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.HasDate() != b.HasDate() {
			return a.HasDate()
		}
		if a.HasDate() && !a.Date.Equal(*b.Date) {
			return a.Date.After(*b.Date)
		}
		return a.ID < b.ID
	})
	return list, nil
}
