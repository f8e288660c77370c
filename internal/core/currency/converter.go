// Package currency converts amounts between currencies using a RateTable
// quoted against domain.BaseCurrency.
//
// Conversion is best effort: when a rate is missing the amount passes
// through unchanged. Callers that need to tell the difference use
// ConvertTagged.
package currency

import (
	"github.com/SscSPs/expense_tracker_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Status tags the outcome of a conversion.
type Status int

const (
	// Identity means no conversion was needed (same currency).
	Identity Status = iota
	// Converted means both rates were known and the amount was converted.
	Converted
	// Unconverted means a rate was unavailable and the amount passed through.
	Unconverted
)

func (s Status) String() string {
	switch s {
	case Identity:
		return "identity"
	case Converted:
		return "converted"
	case Unconverted:
		return "unconverted"
	default:
		return "unknown"
	}
}

// Conversion is a converted amount together with how it was obtained.
type Conversion struct {
	Amount decimal.Decimal
	Status Status
}

// ConvertTagged converts amount from one currency to another.
func ConvertTagged(from, to string, amount decimal.Decimal, rates domain.RateTable) Conversion {
	if from == to {
		return Conversion{Amount: amount, Status: Identity}
	}
	if rates.IsEmpty() {
		return Conversion{Amount: amount, Status: Unconverted}
	}

	fromRate, okFrom := rates.Rate(from)
	toRate, okTo := rates.Rate(to)
	if !okFrom || !okTo {
		return Conversion{Amount: amount, Status: Unconverted}
	}

	inBase := amount.Div(decimal.NewFromFloat(fromRate))
	return Conversion{Amount: inBase.Mul(decimal.NewFromFloat(toRate)), Status: Converted}
}

// Convert converts amount and drops the status tag.
func Convert(from, to string, amount decimal.Decimal, rates domain.RateTable) decimal.Decimal {
	return ConvertTagged(from, to, amount, rates).Amount
}

// ConvertToTarget converts amount into the target (home) currency.
func ConvertToTarget(from string, amount decimal.Decimal, rates domain.RateTable, target string) decimal.Decimal {
	return Convert(from, target, amount, rates)
}
