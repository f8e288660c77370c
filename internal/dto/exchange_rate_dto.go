package dto

import (
	"time"

	"github.com/SscSPs/expense_tracker_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RateSearchQuery narrows a rate or symbol listing.
type RateSearchQuery struct {
	Search string `form:"search"`
}

// ConvertQuery is the input of the converter endpoint.
type ConvertQuery struct {
	From   string `form:"from"`
	To     string `form:"to"`
	Amount string `form:"amount"`
}

// RateListResponse lists rates quoted against the base currency.
type RateListResponse struct {
	Base      string                `json:"base"`
	Freshness domain.Freshness      `json:"freshness"`
	Rates     []domain.ExchangeRate `json:"rates"`
}

// SymbolListResponse lists known currency names.
type SymbolListResponse struct {
	Freshness domain.Freshness        `json:"freshness"`
	Symbols   []domain.CurrencySymbol `json:"symbols"`
}

// HistoricalRatesResponse lists rates for one past date.
type HistoricalRatesResponse struct {
	Base  string                `json:"base"`
	Date  string                `json:"date"`
	Rates []domain.ExchangeRate `json:"rates"`
}

// ConvertResponse is the result of a converter request.
type ConvertResponse struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
	Result decimal.Decimal `json:"result"`
}

// ToHistoricalRatesResponse builds the historical listing for date.
func ToHistoricalRatesResponse(date time.Time, rates domain.RateTable) HistoricalRatesResponse {
	return HistoricalRatesResponse{
		Base:  domain.BaseCurrency,
		Date:  date.Format(time.DateOnly),
		Rates: ToExchangeRates(rates, domain.SymbolTable{}),
	}
}

// ToExchangeRates flattens a rate table into sorted rows, attaching names
// from symbols when known.
func ToExchangeRates(rates domain.RateTable, symbols domain.SymbolTable) []domain.ExchangeRate {
	rows := make([]domain.ExchangeRate, 0, rates.Len())
	for _, code := range rates.Codes() {
		r, _ := rates.Rate(code)
		name, _ := symbols.Name(code)
		rows = append(rows, domain.ExchangeRate{Currency: code, Rate: r, Name: name})
	}
	return rows
}
