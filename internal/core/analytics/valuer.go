package analytics

import (
	"github.com/SscSPs/expense_tracker_app/internal/core/currency"
	"github.com/SscSPs/expense_tracker_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Valuation is the amount an expense contributes to a sum.
type Valuation struct {
	Amount   decimal.Decimal
	Included bool
	Status   currency.Status
}

// Valuer decides how much each expense contributes to money sums.
type Valuer func(e domain.Expense) Valuation

// OriginalAmount sums every expense in its own currency.
func OriginalAmount(e domain.Expense) Valuation {
	return Valuation{Amount: e.Amount, Included: true, Status: currency.Identity}
}

// ConvertedTo converts every expense into target before it is summed.
// Expenses whose rate is unknown pass through unconverted.
func ConvertedTo(target string, rates domain.RateTable) Valuer {
	return func(e domain.Expense) Valuation {
		conv := currency.ConvertTagged(e.CurrencyOrDefault(), target, e.Amount, rates)
		return Valuation{Amount: conv.Amount, Included: true, Status: conv.Status}
	}
}

// TargetCurrencyOnly sums only expenses already recorded in target and
// excludes all others. It is the fallback used while rates are unavailable.
func TargetCurrencyOnly(target string) Valuer {
	return func(e domain.Expense) Valuation {
		if e.CurrencyOrDefault() != target {
			return Valuation{Amount: decimal.Zero, Included: false, Status: currency.Unconverted}
		}
		return Valuation{Amount: e.Amount, Included: true, Status: currency.Identity}
	}
}

// ValuerFor picks the converting valuer when rates are ready and the
// target-currency-only fallback otherwise.
func ValuerFor(ready bool, rates domain.RateTable, target string) Valuer {
	if ready {
		return ConvertedTo(target, rates)
	}
	return TargetCurrencyOnly(target)
}
