package pgsql

import (
	portsrepo "github.com/SscSPs/expense_tracker_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires the postgres-backed repositories. The rate
// cache is passed through since it never lives in postgres.
func NewRepositoryProvider(dbPool *pgxpool.Pool, rateCache portsrepo.KeyValueStore) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		ExpenseRepo: NewPgxExpenseRepository(dbPool),
		RateCache:   rateCache,
	}
}
