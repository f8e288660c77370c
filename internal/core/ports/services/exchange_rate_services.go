package services

import (
	"context"
	"time"

	"github.com/SscSPs/expense_tracker_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RateProvider is the remote exchange-rate service.
type RateProvider interface {
	FetchLatest(ctx context.Context) (domain.RateTable, error)
	FetchSymbols(ctx context.Context) (domain.SymbolTable, error)
	FetchHistorical(ctx context.Context, date time.Time) (domain.RateTable, error)
}

// RateSource is the read side of the rate store used by aggregation.
type RateSource interface {
	// IsReady reports whether non-empty latest rate and symbol tables are loaded.
	IsReady() bool

	// Latest returns the current latest rate table.
	Latest() domain.RateTable
}

// ExchangeRateLoaderSvc defines the loading operations of the rate store
type ExchangeRateLoaderSvc interface {
	LoadLatest(ctx context.Context) error
	LoadSymbols(ctx context.Context) error
	RefreshLatest(ctx context.Context) error
	RefreshSymbols(ctx context.Context) error
	RefreshAll(ctx context.Context) error
	LoadHistorical(ctx context.Context, date time.Time) (domain.RateTable, error)
}

// ExchangeRateReaderSvc defines read operations on the loaded rate data
type ExchangeRateReaderSvc interface {
	RateSource
	Symbols() domain.SymbolTable
	Historical() (time.Time, domain.RateTable, bool)
	Snapshot() domain.RateStoreSnapshot
	Convert(from, to string, amount decimal.Decimal) (decimal.Decimal, error)
	FilterRates(search string) []domain.ExchangeRate
	FilterSymbols(search string) []domain.CurrencySymbol
}

// ExchangeRateSvcFacade combines all exchange rate-related service interfaces
type ExchangeRateSvcFacade interface {
	ExchangeRateLoaderSvc
	ExchangeRateReaderSvc
}
