package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/SscSPs/expense_tracker_app/internal/apperrors"
	"github.com/SscSPs/expense_tracker_app/internal/core/domain"
	"github.com/SscSPs/expense_tracker_app/internal/core/services"
	"github.com/SscSPs/expense_tracker_app/internal/repositories/kvstore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock RateProvider ---
type MockRateProvider struct {
	mock.Mock
}

func (m *MockRateProvider) FetchLatest(ctx context.Context) (domain.RateTable, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.RateTable), args.Error(1)
}

func (m *MockRateProvider) FetchSymbols(ctx context.Context) (domain.SymbolTable, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.SymbolTable), args.Error(1)
}

func (m *MockRateProvider) FetchHistorical(ctx context.Context, date time.Time) (domain.RateTable, error) {
	args := m.Called(ctx, date)
	return args.Get(0).(domain.RateTable), args.Error(1)
}

// --- Test Suite ---
type ExchangeRateStoreTestSuite struct {
	suite.Suite
	provider *MockRateProvider
	cache    *kvstore.MemoryStore
	now      time.Time
	store    *services.ExchangeRateStore
}

func (suite *ExchangeRateStoreTestSuite) SetupTest() {
	suite.provider = new(MockRateProvider)
	suite.cache = kvstore.NewMemoryStore()
	suite.now = time.Date(2025, time.January, 20, 12, 0, 0, 0, time.UTC)
	suite.store = services.NewExchangeRateStore(suite.provider, suite.cache, services.WithClock(func() time.Time { return suite.now }))
}

func (suite *ExchangeRateStoreTestSuite) TearDownTest() {
	suite.store.Close()
	suite.provider.AssertExpectations(suite.T())
}

func TestExchangeRateStoreTestSuite(t *testing.T) {
	suite.Run(t, new(ExchangeRateStoreTestSuite))
}

func sampleRates() domain.RateTable {
	return domain.NewRateTable(map[string]float64{"USD": 1.1, "INR": 90.0, "GBP": 0.85})
}

func (suite *ExchangeRateStoreTestSuite) TestInitialStateIsUnloaded() {
	snap := suite.store.Snapshot()
	suite.False(snap.Ready)
	suite.Equal(domain.FetchIdle, snap.Latest.Status)
	suite.Equal(domain.FreshnessUnloaded, snap.Latest.Freshness)
	suite.Equal(domain.FreshnessUnloaded, snap.Symbols.Freshness)
	suite.Nil(snap.HistoricalDate)
}

func (suite *ExchangeRateStoreTestSuite) TestRestore_CachedDataSkipsNetwork() {
	ctx := context.Background()
	suite.Require().NoError(suite.cache.Set(ctx, services.LatestRatesKey, []byte(`{"USD":1.1,"INR":90}`)))
	suite.Require().NoError(suite.cache.Set(ctx, services.CurrencySymbolsKey, []byte(`{"USD":"United States Dollar"}`)))

	suite.Require().NoError(suite.store.Restore(ctx))
	suite.True(suite.store.IsReady())
	suite.Equal(domain.FreshnessCached, suite.store.Snapshot().Latest.Freshness)

	suite.Require().NoError(suite.store.LoadLatest(ctx))
	suite.Require().NoError(suite.store.LoadSymbols(ctx))

	snap := suite.store.Snapshot()
	suite.Equal(domain.FetchSuccess, snap.Latest.Status)
	suite.Equal(domain.FetchSuccess, snap.Symbols.Status)
	suite.Equal(domain.FreshnessCached, snap.Symbols.Freshness)
	suite.provider.AssertNotCalled(suite.T(), "FetchLatest", mock.Anything)
}

func (suite *ExchangeRateStoreTestSuite) TestRestore_RatesWithoutSymbolsIsNotReady() {
	ctx := context.Background()
	suite.Require().NoError(suite.cache.Set(ctx, services.LatestRatesKey, []byte(`{"USD":1.1,"INR":90}`)))

	suite.Require().NoError(suite.store.Restore(ctx))

	suite.Equal(2, suite.store.Latest().Len())
	suite.True(suite.store.Symbols().IsEmpty())
	suite.False(suite.store.IsReady())
	suite.False(suite.store.Snapshot().Ready)
}

func (suite *ExchangeRateStoreTestSuite) TestIsReady_RequiresRatesAndSymbols() {
	ctx := context.Background()
	suite.provider.On("FetchSymbols", mock.Anything).Return(domain.NewSymbolTable(map[string]string{"USD": "United States Dollar"}), nil).Once()
	suite.provider.On("FetchLatest", mock.Anything).Return(sampleRates(), nil).Once()

	suite.Require().NoError(suite.store.LoadSymbols(ctx))
	suite.False(suite.store.IsReady())

	suite.Require().NoError(suite.store.LoadLatest(ctx))
	suite.True(suite.store.IsReady())
	suite.True(suite.store.Snapshot().Ready)
}

func (suite *ExchangeRateStoreTestSuite) TestRestore_IgnoresCorruptEntry() {
	ctx := context.Background()
	suite.Require().NoError(suite.cache.Set(ctx, services.LatestRatesKey, []byte(`not json`)))

	suite.NoError(suite.store.Restore(ctx))
	suite.False(suite.store.IsReady())
}

func (suite *ExchangeRateStoreTestSuite) TestLoadLatest_FetchesOnceAndPersists() {
	ctx := context.Background()
	suite.provider.On("FetchLatest", mock.Anything).Return(sampleRates(), nil).Once()

	suite.Require().NoError(suite.store.LoadLatest(ctx))
	suite.Require().NoError(suite.store.LoadLatest(ctx))

	snap := suite.store.Snapshot()
	suite.False(snap.Ready, "symbols are not loaded yet")
	suite.Equal(domain.FetchSuccess, snap.Latest.Status)
	suite.Equal(domain.FreshnessFresh, snap.Latest.Freshness)
	suite.Equal(suite.now, snap.Latest.UpdatedAt)
	suite.Equal(3, snap.RateCount)

	raw, found, err := suite.cache.Get(ctx, services.LatestRatesKey)
	suite.Require().NoError(err)
	suite.True(found)
	suite.JSONEq(`{"GBP":0.85,"INR":90,"USD":1.1}`, string(raw))
}

func (suite *ExchangeRateStoreTestSuite) TestRefreshLatest_BypassesShortCircuit() {
	ctx := context.Background()
	suite.provider.On("FetchLatest", mock.Anything).Return(sampleRates(), nil).Once()
	suite.provider.On("FetchLatest", mock.Anything).Return(domain.NewRateTable(map[string]float64{"USD": 1.2}), nil).Once()

	suite.Require().NoError(suite.store.LoadLatest(ctx))
	suite.Require().NoError(suite.store.RefreshLatest(ctx))

	rate, ok := suite.store.Latest().Rate("USD")
	suite.True(ok)
	suite.Equal(1.2, rate)
}

func (suite *ExchangeRateStoreTestSuite) TestLoadLatest_FailureMessages() {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{
			name:    "api error with info",
			err:     &apperrors.UpstreamError{Code: 101, Type: "invalid_access_key", Info: "You have not supplied a valid API Access Key."},
			wantMsg: "API Error: You have not supplied a valid API Access Key.",
		},
		{
			name:    "api error without info",
			err:     &apperrors.UpstreamError{},
			wantMsg: "Failed to load latest rates",
		},
		{
			name:    "network failure",
			err:     fmt.Errorf("%w: dial tcp: connection refused", apperrors.ErrNetwork),
			wantMsg: "Network configuration required. Check EXCHANGE_RATE_BASE_URL and outbound access to the rate service.",
		},
		{
			name:    "other failure",
			err:     errors.New("boom"),
			wantMsg: "boom",
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			provider := new(MockRateProvider)
			provider.On("FetchLatest", mock.Anything).Return(domain.RateTable{}, tt.err).Once()
			store := services.NewExchangeRateStore(provider, kvstore.NewMemoryStore())

			err := store.LoadLatest(context.Background())
			suite.Error(err)
			suite.ErrorIs(err, tt.err)

			snap := store.Snapshot()
			suite.Equal(domain.FetchError, snap.Latest.Status)
			suite.Equal(tt.wantMsg, snap.Latest.Message)
			suite.False(snap.Ready)
			provider.AssertExpectations(suite.T())
		})
	}
}

func (suite *ExchangeRateStoreTestSuite) TestRefreshFailureKeepsPreviousTable() {
	ctx := context.Background()
	suite.provider.On("FetchLatest", mock.Anything).Return(sampleRates(), nil).Once()
	suite.provider.On("FetchLatest", mock.Anything).Return(domain.RateTable{}, errors.New("timeout")).Once()

	suite.Require().NoError(suite.store.LoadLatest(ctx))
	suite.Error(suite.store.RefreshLatest(ctx))

	suite.Equal(3, suite.store.Latest().Len())
	suite.Equal(domain.FetchError, suite.store.Snapshot().Latest.Status)
}

func (suite *ExchangeRateStoreTestSuite) TestLoadLatest_EmptyTableIsAnError() {
	suite.provider.On("FetchLatest", mock.Anything).Return(domain.NewRateTable(nil), nil).Once()

	err := suite.store.LoadLatest(context.Background())
	suite.ErrorIs(err, apperrors.ErrUpstream)
	suite.Equal("Failed to load latest rates", suite.store.Snapshot().Latest.Message)
}

func (suite *ExchangeRateStoreTestSuite) TestLoadHistorical_RejectsFutureDate() {
	tomorrow := suite.now.Add(24 * time.Hour)

	_, err := suite.store.LoadHistorical(context.Background(), tomorrow)

	suite.ErrorIs(err, apperrors.ErrFutureDate)
	suite.ErrorIs(err, apperrors.ErrValidation)
	snap := suite.store.Snapshot()
	suite.Equal(domain.FetchError, snap.Historical.Status)
	suite.Equal("Cannot select future dates", snap.Historical.Message)
	suite.provider.AssertNotCalled(suite.T(), "FetchHistorical", mock.Anything, mock.Anything)
}

func (suite *ExchangeRateStoreTestSuite) TestLoadHistorical_CachesPerDate() {
	ctx := context.Background()
	date := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	suite.provider.On("FetchHistorical", mock.Anything, date).Return(sampleRates(), nil).Once()

	first, err := suite.store.LoadHistorical(ctx, date)
	suite.Require().NoError(err)
	second, err := suite.store.LoadHistorical(ctx, date)
	suite.Require().NoError(err)

	suite.Equal(first.Map(), second.Map())
	gotDate, table, ok := suite.store.Historical()
	suite.True(ok)
	suite.Equal(date, gotDate)
	suite.Equal(3, table.Len())
}

func (suite *ExchangeRateStoreTestSuite) TestLoadHistorical_DiscardsSupersededResponse() {
	ctx := context.Background()
	older := time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)

	started := make(chan struct{})
	suite.provider.On("FetchHistorical", mock.Anything, older).Run(func(args mock.Arguments) {
		close(started)
		<-args.Get(0).(context.Context).Done()
	}).Return(domain.NewRateTable(map[string]float64{"USD": 9.9}), nil).Once()
	suite.provider.On("FetchHistorical", mock.Anything, newer).Return(sampleRates(), nil).Once()

	done := make(chan error, 1)
	go func() {
		_, err := suite.store.LoadHistorical(ctx, older)
		done <- err
	}()
	<-started

	table, err := suite.store.LoadHistorical(ctx, newer)
	suite.Require().NoError(err)
	suite.Equal(3, table.Len())

	suite.ErrorIs(<-done, services.ErrHistoricalSuperseded)

	gotDate, current, _ := suite.store.Historical()
	suite.Equal(newer, gotDate)
	rate, _ := current.Rate("USD")
	suite.Equal(1.1, rate)
	suite.Equal(domain.FetchSuccess, suite.store.Snapshot().Historical.Status)
}

func (suite *ExchangeRateStoreTestSuite) TestLoadHistorical_APIError() {
	date := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	suite.provider.On("FetchHistorical", mock.Anything, date).
		Return(domain.RateTable{}, &apperrors.UpstreamError{Code: 302, Type: "invalid_date", Info: "You have entered an invalid date."}).Once()

	_, err := suite.store.LoadHistorical(context.Background(), date)

	suite.ErrorIs(err, apperrors.ErrUpstream)
	suite.Equal("API Error: You have entered an invalid date.", suite.store.Snapshot().Historical.Message)
}

func (suite *ExchangeRateStoreTestSuite) TestClose_CancelsInFlightHistorical() {
	date := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	started := make(chan struct{})
	suite.provider.On("FetchHistorical", mock.Anything, date).Run(func(args mock.Arguments) {
		close(started)
		<-args.Get(0).(context.Context).Done()
	}).Return(domain.RateTable{}, context.Canceled).Once()

	done := make(chan error, 1)
	go func() {
		_, err := suite.store.LoadHistorical(context.Background(), date)
		done <- err
	}()
	<-started
	suite.store.Close()

	suite.ErrorIs(<-done, context.Canceled)

	_, err := suite.store.LoadHistorical(context.Background(), date)
	suite.ErrorIs(err, services.ErrStoreClosed)
}

func (suite *ExchangeRateStoreTestSuite) TestRefreshAll() {
	ctx := context.Background()
	suite.provider.On("FetchSymbols", mock.Anything).Return(domain.NewSymbolTable(map[string]string{"USD": "United States Dollar"}), nil).Once()
	suite.provider.On("FetchLatest", mock.Anything).Return(sampleRates(), nil).Once()

	suite.Require().NoError(suite.store.RefreshAll(ctx))

	snap := suite.store.Snapshot()
	suite.Equal(domain.FreshnessFresh, snap.Latest.Freshness)
	suite.Equal(domain.FreshnessFresh, snap.Symbols.Freshness)
	suite.Equal(1, snap.SymbolCount)
}

func (suite *ExchangeRateStoreTestSuite) TestConvert() {
	suite.provider.On("FetchLatest", mock.Anything).Return(sampleRates(), nil).Once()

	_, err := suite.store.Convert("USD", "INR", decimal.NewFromInt(11))
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.EqualError(err, "Currency rates not available. Please wait for rates to load or refresh.: validation error")

	suite.Require().NoError(suite.store.LoadLatest(context.Background()))

	tests := []struct {
		name    string
		from    string
		to      string
		amount  decimal.Decimal
		want    string
		wantMsg string
	}{
		{name: "usd to inr", from: "USD", to: "INR", amount: decimal.NewFromInt(11), want: "900"},
		{name: "lower case codes", from: "usd", to: "eur", amount: decimal.NewFromInt(11), want: "10"},
		{name: "zero amount", from: "USD", to: "INR", amount: decimal.Zero, wantMsg: "Please enter a valid amount greater than 0"},
		{name: "missing currency", from: "", to: "INR", amount: decimal.NewFromInt(1), wantMsg: "Please select both currencies"},
		{name: "unknown currency", from: "JPY", to: "INR", amount: decimal.NewFromInt(1), wantMsg: "Exchange rate not available for selected currencies"},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			got, err := suite.store.Convert(tt.from, tt.to, tt.amount)
			if tt.wantMsg != "" {
				var appErr *apperrors.AppError
				suite.Require().ErrorAs(err, &appErr)
				suite.Equal(tt.wantMsg, appErr.Message)
				return
			}
			suite.Require().NoError(err)
			suite.True(decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func (suite *ExchangeRateStoreTestSuite) TestFilters() {
	ctx := context.Background()
	suite.provider.On("FetchLatest", mock.Anything).Return(sampleRates(), nil).Once()
	suite.provider.On("FetchSymbols", mock.Anything).Return(domain.NewSymbolTable(map[string]string{
		"USD": "United States Dollar",
		"INR": "Indian Rupee",
		"GBP": "British Pound Sterling",
	}), nil).Once()
	suite.Require().NoError(suite.store.WarmUp(ctx))

	all := suite.store.FilterRates("")
	suite.Len(all, 3)
	suite.Equal("GBP", all[0].Currency)
	suite.Equal("British Pound Sterling", all[0].Name)

	rates := suite.store.FilterRates("us")
	suite.Require().Len(rates, 1)
	suite.Equal("USD", rates[0].Currency)

	symbols := suite.store.FilterSymbols("rupee")
	suite.Require().Len(symbols, 1)
	suite.Equal("INR", symbols[0].Code)

	suite.Len(suite.store.FilterSymbols("POUND"), 1)
	suite.Empty(suite.store.FilterSymbols("xyz"))
}

func (suite *ExchangeRateStoreTestSuite) TestRunAutoRefresh_DisabledInterval() {
	done := make(chan struct{})
	go func() {
		suite.store.RunAutoRefresh(context.Background(), 0)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		suite.Fail("RunAutoRefresh should return for a zero interval")
	}
}
