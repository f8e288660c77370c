package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/expense_tracker_app/internal/apperrors"
	"github.com/SscSPs/expense_tracker_app/internal/core/domain"
	portsrepo "github.com/SscSPs/expense_tracker_app/internal/core/ports/repositories"
	"github.com/SscSPs/expense_tracker_app/internal/models"
	"github.com/SscSPs/expense_tracker_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const expenseColumns = `expense_id, amount, category, expense_date, currency_code, payment_method, note, created_at, updated_at`

// PgxExpenseRepository implements portsrepo.ExpenseRepositoryFacade using pgxpool.
type PgxExpenseRepository struct {
	BaseRepository
}

var _ portsrepo.ExpenseRepositoryFacade = (*PgxExpenseRepository)(nil)

// NewPgxExpenseRepository creates a new PgxExpenseRepository.
func NewPgxExpenseRepository(db *pgxpool.Pool) *PgxExpenseRepository {
	return &PgxExpenseRepository{BaseRepository: BaseRepository{Pool: db}}
}

// SaveExpense inserts a new expense.
func (r *PgxExpenseRepository) SaveExpense(ctx context.Context, expense domain.Expense) error {
	e := mapping.ToModelExpense(expense)
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO expenses (`+expenseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ExpenseID, e.Amount, e.Category, e.ExpenseDate, e.CurrencyCode, e.PaymentMethod, e.Note, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("failed to save expense", err)
	}
	return nil
}

// UpdateExpense replaces the editable fields of an expense.
func (r *PgxExpenseRepository) UpdateExpense(ctx context.Context, expense domain.Expense) error {
	e := mapping.ToModelExpense(expense)
	tag, err := r.Pool.Exec(ctx, `
		UPDATE expenses
		SET amount = $2, category = $3, expense_date = $4, currency_code = $5,
		    payment_method = $6, note = $7, updated_at = $8
		WHERE expense_id = $1`,
		e.ExpenseID, e.Amount, e.Category, e.ExpenseDate, e.CurrencyCode, e.PaymentMethod, e.Note, e.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("failed to update expense", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("expense %s: %w", e.ExpenseID, apperrors.ErrNotFound)
	}
	return nil
}

// DeleteExpense removes an expense.
func (r *PgxExpenseRepository) DeleteExpense(ctx context.Context, expenseID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM expenses WHERE expense_id = $1`, expenseID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete expense", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("expense %s: %w", expenseID, apperrors.ErrNotFound)
	}
	return nil
}

// FindExpenseByID retrieves one expense.
func (r *PgxExpenseRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	row := r.Pool.QueryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE expense_id = $1`, expenseID)
	m, err := scanExpense(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to find expense", err)
	}
	e := mapping.ToDomainExpense(m)
	return &e, nil
}

// ListAll returns every expense, newest date first and undated last.
func (r *PgxExpenseRepository) ListAll(ctx context.Context) ([]domain.Expense, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses
		ORDER BY expense_date DESC NULLS LAST, expense_id`)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list expenses", err)
	}
	defer rows.Close()

	var rowsOut []models.Expense
	for rows.Next() {
		m, err := scanExpense(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan expense", err)
		}
		rowsOut = append(rowsOut, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to iterate expenses", err)
	}
	return mapping.ToDomainExpenseSlice(rowsOut), nil
}

func scanExpense(row pgx.Row) (models.Expense, error) {
	var m models.Expense
	err := row.Scan(&m.ExpenseID, &m.Amount, &m.Category, &m.ExpenseDate, &m.CurrencyCode, &m.PaymentMethod, &m.Note, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}
