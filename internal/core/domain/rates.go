package domain

import (
	"math"
	"sort"
	"time"
)

// BaseCurrency is the currency every RateTable is quoted against.
const BaseCurrency = "EUR"

// RateTable maps currency codes to their rate against BaseCurrency.
// A RateTable is never mutated after construction; refreshes swap whole tables.
type RateTable struct {
	rates map[string]float64
}

// NewRateTable copies rates, dropping entries that are not positive finite numbers.
func NewRateTable(rates map[string]float64) RateTable {
	cp := make(map[string]float64, len(rates))
	for code, r := range rates {
		if r > 0 && !math.IsInf(r, 0) && !math.IsNaN(r) {
			cp[code] = r
		}
	}
	return RateTable{rates: cp}
}

// Rate returns the rate for code. BaseCurrency always resolves to 1.0.
func (t RateTable) Rate(code string) (float64, bool) {
	if r, ok := t.rates[code]; ok {
		return r, true
	}
	if code == BaseCurrency {
		return 1.0, true
	}
	return 0, false
}

// Len returns the number of explicit entries.
func (t RateTable) Len() int { return len(t.rates) }

// IsEmpty reports whether the table carries no explicit entries.
func (t RateTable) IsEmpty() bool { return len(t.rates) == 0 }

// Codes returns the explicit currency codes sorted alphabetically.
func (t RateTable) Codes() []string {
	codes := make([]string, 0, len(t.rates))
	for c := range t.rates {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// Map returns a copy of the underlying entries.
func (t RateTable) Map() map[string]float64 {
	cp := make(map[string]float64, len(t.rates))
	for k, v := range t.rates {
		cp[k] = v
	}
	return cp
}

// SymbolTable maps currency codes to display names.
type SymbolTable struct {
	names map[string]string
}

// NewSymbolTable copies names.
func NewSymbolTable(names map[string]string) SymbolTable {
	cp := make(map[string]string, len(names))
	for k, v := range names {
		cp[k] = v
	}
	return SymbolTable{names: cp}
}

// Name returns the display name for code.
func (t SymbolTable) Name(code string) (string, bool) {
	n, ok := t.names[code]
	return n, ok
}

func (t SymbolTable) Len() int      { return len(t.names) }
func (t SymbolTable) IsEmpty() bool { return len(t.names) == 0 }

// Codes returns the currency codes sorted alphabetically.
func (t SymbolTable) Codes() []string {
	codes := make([]string, 0, len(t.names))
	for c := range t.names {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// Map returns a copy of the underlying entries.
func (t SymbolTable) Map() map[string]string {
	cp := make(map[string]string, len(t.names))
	for k, v := range t.names {
		cp[k] = v
	}
	return cp
}

// ExchangeRate is one row of a rate listing.
type ExchangeRate struct {
	Currency string  `json:"currency"`
	Rate     float64 `json:"rate"`
	Name     string  `json:"name,omitempty"`
}

// CurrencySymbol is one row of a symbol listing.
type CurrencySymbol struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// RateDataKind identifies one of the independently loaded rate data classes.
type RateDataKind string

const (
	RateKindLatest     RateDataKind = "latest"
	RateKindSymbols    RateDataKind = "symbols"
	RateKindHistorical RateDataKind = "historical"
)

// FetchStatus is the request lifecycle of one data class.
type FetchStatus string

const (
	FetchIdle    FetchStatus = "idle"
	FetchLoading FetchStatus = "loading"
	FetchSuccess FetchStatus = "success"
	FetchError   FetchStatus = "error"
)

// Freshness tells where the data currently held for a class came from.
type Freshness string

const (
	// FreshnessUnloaded means nothing is held yet.
	FreshnessUnloaded Freshness = "unloaded"
	// FreshnessCached means the data was restored from the local cache.
	FreshnessCached Freshness = "cached"
	// FreshnessFresh means the data came from a network fetch in this process.
	FreshnessFresh Freshness = "fresh"
)

// LoadState is the observable state of one rate data class.
type LoadState struct {
	Status    FetchStatus `json:"status"`
	Message   string      `json:"message,omitempty"`
	Freshness Freshness   `json:"freshness"`
	UpdatedAt time.Time   `json:"updatedAt,omitempty"`
}

// RateStoreSnapshot is a point-in-time view of every rate data class.
type RateStoreSnapshot struct {
	Ready          bool       `json:"ready"`
	Latest         LoadState  `json:"latest"`
	Symbols        LoadState  `json:"symbols"`
	Historical     LoadState  `json:"historical"`
	HistoricalDate *time.Time `json:"historicalDate,omitempty"`
	RateCount      int        `json:"rateCount"`
	SymbolCount    int        `json:"symbolCount"`
}
