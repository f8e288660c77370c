package exchangerates_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/expense_tracker_app/internal/adapters/exchangerates"
	"github.com/SscSPs/expense_tracker_app/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, handler http.HandlerFunc) *exchangerates.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return exchangerates.NewClient(srv.URL+"/v1/", "secret", 2*time.Second)
}

func TestClient_FetchLatest(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/latest", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("access_key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"timestamp":1737374400,"base":"EUR","date":"2025-01-20","rates":{"USD":1.1,"INR":90.0,"BAD":0}}`))
	})

	table, err := client.FetchLatest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, table.Len())
	rate, ok := table.Rate("USD")
	assert.True(t, ok)
	assert.Equal(t, 1.1, rate)
	_, ok = table.Rate("BAD")
	assert.False(t, ok)
}

func TestClient_FetchSymbols(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/symbols", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"symbols":{"USD":"United States Dollar","INR":"Indian Rupee"}}`))
	})

	table, err := client.FetchSymbols(context.Background())
	require.NoError(t, err)

	name, ok := table.Name("INR")
	assert.True(t, ok)
	assert.Equal(t, "Indian Rupee", name)
}

func TestClient_FetchHistorical(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/2025-01-10", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"historical":true,"date":"2025-01-10","rates":{"USD":1.03}}`))
	})

	table, err := client.FetchHistorical(context.Background(), time.Date(2025, time.January, 10, 15, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
}

func TestClient_APIError(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"error":{"code":101,"type":"invalid_access_key","info":"You have not supplied a valid API Access Key."}}`))
	})

	_, err := client.FetchLatest(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
	var upstream *apperrors.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, 101, upstream.Code)
	assert.Equal(t, "You have not supplied a valid API Access Key.", upstream.Info)
}

func TestClient_FailureWithoutErrorBody(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false}`))
	})

	_, err := client.FetchSymbols(context.Background())

	var upstream *apperrors.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Empty(t, upstream.Info)
}

func TestClient_InvalidJSON(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	})

	_, err := client.FetchLatest(context.Background())

	assert.ErrorIs(t, err, apperrors.ErrUpstream)
	assert.NotErrorIs(t, err, apperrors.ErrNetwork)
}

func TestClient_ConnectionRefusedIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	client := exchangerates.NewClient(addr, "secret", time.Second)
	_, err := client.FetchLatest(context.Background())

	assert.ErrorIs(t, err, apperrors.ErrNetwork)
}

func TestClient_CancelledContext(t *testing.T) {
	release := make(chan struct{})
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchHistorical(ctx, time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, context.Canceled)
}
