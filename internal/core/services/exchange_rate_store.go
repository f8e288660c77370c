package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/expense_tracker_app/internal/apperrors"
	"github.com/SscSPs/expense_tracker_app/internal/core/currency"
	"github.com/SscSPs/expense_tracker_app/internal/core/domain"
	portsrepo "github.com/SscSPs/expense_tracker_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expense_tracker_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// Cache keys for the persisted rate data.
const (
	LatestRatesKey     = "latestExchangeRates"
	CurrencySymbolsKey = "currencySymbols"
)

const networkConfigMessage = "Network configuration required. Check EXCHANGE_RATE_BASE_URL and outbound access to the rate service."

// ErrHistoricalSuperseded is returned to a historical load whose date was
// replaced by a newer selection before its response arrived.
var ErrHistoricalSuperseded = fmt.Errorf("%w: historical rate request superseded by a newer date", apperrors.ErrConflict)

// ErrStoreClosed is returned by loads started after Close.
var ErrStoreClosed = errors.New("exchange rate store closed")

// ExchangeRateStore owns the latest, symbol and historical rate tables,
// their load states and the durable cache behind them.
type ExchangeRateStore struct {
	BaseService
	provider portssvc.RateProvider
	cache    portsrepo.KeyValueStore
	now      func() time.Time
	group    singleflight.Group

	mu           sync.RWMutex
	latest       domain.RateTable
	symbols      domain.SymbolTable
	latestState  domain.LoadState
	symbolsState domain.LoadState

	histState  domain.LoadState
	histDate   time.Time
	histTable  domain.RateTable
	hasHist    bool
	histCache  map[string]domain.RateTable
	histGen    uint64
	histCancel context.CancelFunc
	closed     bool
}

// ExchangeRateStoreOption configures an ExchangeRateStore.
type ExchangeRateStoreOption func(*ExchangeRateStore)

// WithClock overrides the time source used for future-date checks and timestamps.
func WithClock(now func() time.Time) ExchangeRateStoreOption {
	return func(s *ExchangeRateStore) {
		s.now = now
	}
}

// NewExchangeRateStore creates a store with every data class unloaded.
// Call Restore to seed it from the durable cache.
func NewExchangeRateStore(provider portssvc.RateProvider, cache portsrepo.KeyValueStore, opts ...ExchangeRateStoreOption) *ExchangeRateStore {
	s := &ExchangeRateStore{
		provider:     provider,
		cache:        cache,
		now:          time.Now,
		latestState:  unloadedState(),
		symbolsState: unloadedState(),
		histState:    unloadedState(),
		histCache:    make(map[string]domain.RateTable),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.ExchangeRateSvcFacade = (*ExchangeRateStore)(nil)

func unloadedState() domain.LoadState {
	return domain.LoadState{Status: domain.FetchIdle, Freshness: domain.FreshnessUnloaded}
}

// Restore seeds the latest and symbol tables from the durable cache.
// Corrupt entries are logged and skipped.
func (s *ExchangeRateStore) Restore(ctx context.Context) error {
	var errs []error

	var rates map[string]float64
	if ok, err := s.readCache(ctx, LatestRatesKey, &rates); err != nil {
		errs = append(errs, err)
	} else if table := domain.NewRateTable(rates); ok && !table.IsEmpty() {
		s.mu.Lock()
		s.latest = table
		s.latestState.Freshness = domain.FreshnessCached
		s.mu.Unlock()
		s.LogInfo(ctx, "Restored cached exchange rates", slog.Int("count", table.Len()))
	}

	var names map[string]string
	if ok, err := s.readCache(ctx, CurrencySymbolsKey, &names); err != nil {
		errs = append(errs, err)
	} else if table := domain.NewSymbolTable(names); ok && !table.IsEmpty() {
		s.mu.Lock()
		s.symbols = table
		s.symbolsState.Freshness = domain.FreshnessCached
		s.mu.Unlock()
		s.LogInfo(ctx, "Restored cached currency symbols", slog.Int("count", table.Len()))
	}

	return errors.Join(errs...)
}

func (s *ExchangeRateStore) readCache(ctx context.Context, key string, into any) (bool, error) {
	if s.cache == nil {
		return false, nil
	}
	raw, found, err := s.cache.Get(ctx, key)
	if err != nil {
		s.LogError(ctx, err, "Failed to read rate cache", slog.String("key", key))
		return false, fmt.Errorf("read cache %s: %w", key, err)
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(raw, into); err != nil {
		s.LogWarn(ctx, "Ignoring corrupt rate cache entry", slog.String("key", key), slog.String("error", err.Error()))
		return false, nil
	}
	return true, nil
}

func (s *ExchangeRateStore) writeCache(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err == nil {
		err = s.cache.Set(ctx, key, raw)
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to persist rate cache", slog.String("key", key))
	}
}

// WarmUp loads symbols and latest rates, honoring the cache short-circuit.
func (s *ExchangeRateStore) WarmUp(ctx context.Context) error {
	return errors.Join(s.LoadSymbols(ctx), s.LoadLatest(ctx))
}

// LoadLatest fetches the latest rates unless a non-empty table is already held.
func (s *ExchangeRateStore) LoadLatest(ctx context.Context) error {
	s.mu.Lock()
	if s.latestState.Freshness != domain.FreshnessUnloaded && !s.latest.IsEmpty() {
		s.latestState.Status = domain.FetchSuccess
		s.latestState.Message = ""
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()
	return s.fetchLatest(ctx)
}

// RefreshLatest fetches the latest rates regardless of what is held.
func (s *ExchangeRateStore) RefreshLatest(ctx context.Context) error {
	return s.fetchLatest(ctx)
}

// LoadSymbols fetches currency names unless a non-empty table is already held.
func (s *ExchangeRateStore) LoadSymbols(ctx context.Context) error {
	s.mu.Lock()
	if s.symbolsState.Freshness != domain.FreshnessUnloaded && !s.symbols.IsEmpty() {
		s.symbolsState.Status = domain.FetchSuccess
		s.symbolsState.Message = ""
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()
	return s.fetchSymbols(ctx)
}

// RefreshSymbols fetches currency names regardless of what is held.
func (s *ExchangeRateStore) RefreshSymbols(ctx context.Context) error {
	return s.fetchSymbols(ctx)
}

// RefreshAll refetches symbols and latest rates, and reloads the selected
// historical date if there is one.
func (s *ExchangeRateStore) RefreshAll(ctx context.Context) error {
	errs := []error{s.RefreshSymbols(ctx), s.RefreshLatest(ctx)}

	s.mu.Lock()
	date, has := s.histDate, s.hasHist
	if has {
		delete(s.histCache, date.Format(time.DateOnly))
	}
	s.mu.Unlock()

	if has {
		if _, err := s.LoadHistorical(ctx, date); err != nil && !errors.Is(err, ErrHistoricalSuperseded) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *ExchangeRateStore) fetchLatest(ctx context.Context) error {
	_, err, _ := s.group.Do(string(domain.RateKindLatest), func() (any, error) {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return nil, ErrStoreClosed
		}
		s.latestState.Status = domain.FetchLoading
		s.latestState.Message = ""
		s.mu.Unlock()

		table, err := s.provider.FetchLatest(ctx)
		if err == nil && table.IsEmpty() {
			err = fmt.Errorf("%w: empty latest rate table", apperrors.ErrUpstream)
		}
		if err != nil {
			msg := failureMessage(err, "Failed to load latest rates")
			s.mu.Lock()
			s.latestState.Status = domain.FetchError
			s.latestState.Message = msg
			s.mu.Unlock()
			s.LogWarn(ctx, "Latest rate load failed", slog.String("error", err.Error()))
			return nil, fmt.Errorf("load latest rates: %w", err)
		}

		s.mu.Lock()
		s.latest = table
		s.latestState = domain.LoadState{Status: domain.FetchSuccess, Freshness: domain.FreshnessFresh, UpdatedAt: s.now()}
		s.mu.Unlock()

		s.writeCache(ctx, LatestRatesKey, table.Map())
		s.LogInfo(ctx, "Latest rates loaded", slog.Int("count", table.Len()))
		return nil, nil
	})
	return err
}

func (s *ExchangeRateStore) fetchSymbols(ctx context.Context) error {
	_, err, _ := s.group.Do(string(domain.RateKindSymbols), func() (any, error) {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return nil, ErrStoreClosed
		}
		s.symbolsState.Status = domain.FetchLoading
		s.symbolsState.Message = ""
		s.mu.Unlock()

		table, err := s.provider.FetchSymbols(ctx)
		if err == nil && table.IsEmpty() {
			err = fmt.Errorf("%w: empty symbol table", apperrors.ErrUpstream)
		}
		if err != nil {
			msg := failureMessage(err, "Failed to load currency symbols")
			s.mu.Lock()
			s.symbolsState.Status = domain.FetchError
			s.symbolsState.Message = msg
			s.mu.Unlock()
			s.LogWarn(ctx, "Currency symbol load failed", slog.String("error", err.Error()))
			return nil, fmt.Errorf("load currency symbols: %w", err)
		}

		s.mu.Lock()
		s.symbols = table
		s.symbolsState = domain.LoadState{Status: domain.FetchSuccess, Freshness: domain.FreshnessFresh, UpdatedAt: s.now()}
		s.mu.Unlock()

		s.writeCache(ctx, CurrencySymbolsKey, table.Map())
		s.LogInfo(ctx, "Currency symbols loaded", slog.Int("count", table.Len()))
		return nil, nil
	})
	return err
}

// LoadHistorical selects date and returns its rate table. Dates after now
// are rejected without a request. Selecting a new date cancels the previous
// in-flight request, and a response for a superseded date is discarded.
func (s *ExchangeRateStore) LoadHistorical(ctx context.Context, date time.Time) (domain.RateTable, error) {
	if date.After(s.now()) {
		s.mu.Lock()
		s.histState.Status = domain.FetchError
		s.histState.Message = "Cannot select future dates"
		s.mu.Unlock()
		return domain.RateTable{}, apperrors.ErrFutureDate
	}

	key := date.Format(time.DateOnly)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.RateTable{}, ErrStoreClosed
	}
	if s.histCancel != nil {
		s.histCancel()
		s.histCancel = nil
	}
	s.histGen++
	gen := s.histGen
	s.histDate = date
	s.hasHist = true

	if cached, ok := s.histCache[key]; ok {
		s.histTable = cached
		s.histState.Status = domain.FetchSuccess
		s.histState.Message = ""
		s.mu.Unlock()
		return cached, nil
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	s.histCancel = cancel
	s.histState.Status = domain.FetchLoading
	s.histState.Message = ""
	s.mu.Unlock()
	defer cancel()

	table, err := s.provider.FetchHistorical(fetchCtx, date)
	if err == nil && table.IsEmpty() {
		err = fmt.Errorf("%w: empty historical rate table", apperrors.ErrUpstream)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.histGen {
		s.LogDebug(ctx, "Discarding superseded historical rates", slog.String("date", key))
		return domain.RateTable{}, ErrHistoricalSuperseded
	}
	s.histCancel = nil

	if err != nil {
		s.histState.Status = domain.FetchError
		s.histState.Message = failureMessage(err, "Failed to load historical rates")
		s.LogWarn(ctx, "Historical rate load failed", slog.String("date", key), slog.String("error", err.Error()))
		return domain.RateTable{}, fmt.Errorf("load historical rates for %s: %w", key, err)
	}

	s.histCache[key] = table
	s.histTable = table
	s.histState = domain.LoadState{Status: domain.FetchSuccess, Freshness: domain.FreshnessFresh, UpdatedAt: s.now()}
	return table, nil
}

// failureMessage renders the user-facing text for a failed load.
func failureMessage(err error, fallback string) string {
	if errors.Is(err, apperrors.ErrNetwork) {
		return networkConfigMessage
	}
	var upstream *apperrors.UpstreamError
	if errors.As(err, &upstream) {
		if upstream.Info != "" {
			return "API Error: " + upstream.Info
		}
		return fallback
	}
	if errors.Is(err, apperrors.ErrUpstream) {
		return fallback
	}
	return err.Error()
}

// Close cancels any in-flight historical request. Later loads fail with ErrStoreClosed.
func (s *ExchangeRateStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.histCancel != nil {
		s.histCancel()
		s.histCancel = nil
	}
}

// RunAutoRefresh refreshes the latest rates every interval until ctx ends.
// A non-positive interval returns immediately.
func (s *ExchangeRateStore) RunAutoRefresh(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.RefreshLatest(ctx); err != nil {
				s.LogWarn(ctx, "Scheduled rate refresh failed", slog.String("error", err.Error()))
			}
		}
	}
}

// IsReady reports whether both the latest rate table and the symbol table
// are loaded and non-empty.
func (s *ExchangeRateStore) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readyLocked()
}

func (s *ExchangeRateStore) readyLocked() bool {
	return !s.latest.IsEmpty() && !s.symbols.IsEmpty()
}

// Latest returns the current latest rate table.
func (s *ExchangeRateStore) Latest() domain.RateTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Symbols returns the current symbol table.
func (s *ExchangeRateStore) Symbols() domain.SymbolTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.symbols
}

// Historical returns the selected date and its table. The table is empty
// until the selected date has loaded.
func (s *ExchangeRateStore) Historical() (time.Time, domain.RateTable, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasHist {
		return time.Time{}, domain.RateTable{}, false
	}
	if cached, ok := s.histCache[s.histDate.Format(time.DateOnly)]; ok {
		return s.histDate, cached, true
	}
	return s.histDate, domain.RateTable{}, true
}

// Snapshot returns the load state of every data class.
func (s *ExchangeRateStore) Snapshot() domain.RateStoreSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := domain.RateStoreSnapshot{
		Ready:       s.readyLocked(),
		Latest:      s.latestState,
		Symbols:     s.symbolsState,
		Historical:  s.histState,
		RateCount:   s.latest.Len(),
		SymbolCount: s.symbols.Len(),
	}
	if s.hasHist {
		d := s.histDate
		snap.HistoricalDate = &d
	}
	return snap
}

// Convert converts amount between two currencies using the latest table.
// Unlike the aggregation path it fails instead of passing amounts through.
func (s *ExchangeRateStore) Convert(from, to string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, apperrors.NewValidationError("Please enter a valid amount greater than 0")
	}

	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == "" || to == "" {
		return decimal.Zero, apperrors.NewValidationError("Please select both currencies")
	}

	rates := s.Latest()
	if rates.IsEmpty() {
		return decimal.Zero, apperrors.NewValidationError("Currency rates not available. Please wait for rates to load or refresh.")
	}

	_, fromOK := rates.Rate(from)
	_, toOK := rates.Rate(to)
	if !fromOK || !toOK {
		return decimal.Zero, apperrors.NewValidationError("Exchange rate not available for selected currencies")
	}

	return currency.Convert(from, to, amount, rates), nil
}

// FilterRates lists latest rates whose code contains search, ignoring case.
func (s *ExchangeRateStore) FilterRates(search string) []domain.ExchangeRate {
	s.mu.RLock()
	rates, symbols := s.latest, s.symbols
	s.mu.RUnlock()

	needle := strings.ToLower(search)
	rows := make([]domain.ExchangeRate, 0, rates.Len())
	for _, code := range rates.Codes() {
		if needle != "" && !strings.Contains(strings.ToLower(code), needle) {
			continue
		}
		r, _ := rates.Rate(code)
		name, _ := symbols.Name(code)
		rows = append(rows, domain.ExchangeRate{Currency: code, Rate: r, Name: name})
	}
	return rows
}

// FilterSymbols lists symbols whose code or name contains search, ignoring case.
func (s *ExchangeRateStore) FilterSymbols(search string) []domain.CurrencySymbol {
	symbols := s.Symbols()

	needle := strings.ToLower(search)
	rows := make([]domain.CurrencySymbol, 0, symbols.Len())
	for _, code := range symbols.Codes() {
		name, _ := symbols.Name(code)
		if needle != "" &&
			!strings.Contains(strings.ToLower(code), needle) &&
			!strings.Contains(strings.ToLower(name), needle) {
			continue
		}
		rows = append(rows, domain.CurrencySymbol{Code: code, Name: name})
	}
	return rows
}
