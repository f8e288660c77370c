// Package exchangerates is the HTTP client for the remote exchange-rate
// service (exchangeratesapi.io compatible). All rates are quoted against EUR.
package exchangerates

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SscSPs/expense_tracker_app/internal/apperrors"
	"github.com/SscSPs/expense_tracker_app/internal/core/domain"
	portssvc "github.com/SscSPs/expense_tracker_app/internal/core/ports/services"
)

// DefaultBaseURL is the public service endpoint.
const DefaultBaseURL = "http://api.exchangeratesapi.io/v1"

const maxBodyBytes = 4 << 20

// Client fetches latest, historical and symbol data.
type Client struct {
	baseURL    string
	accessKey  string
	httpClient *http.Client
}

var _ portssvc.RateProvider = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for baseURL. A non-positive timeout leaves
// requests bounded only by their context.
func NewClient(baseURL, accessKey string, timeout time.Duration, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		accessKey:  accessKey,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type apiError struct {
	Code int    `json:"code"`
	Type string `json:"type"`
	Info string `json:"info"`
}

type envelope struct {
	Success   bool               `json:"success"`
	Timestamp int64              `json:"timestamp,omitempty"`
	Base      string             `json:"base,omitempty"`
	Date      string             `json:"date,omitempty"`
	Rates     map[string]float64 `json:"rates,omitempty"`
	Symbols   map[string]string  `json:"symbols,omitempty"`
	Error     *apiError          `json:"error,omitempty"`
}

// FetchLatest implements portssvc.RateProvider.
func (c *Client) FetchLatest(ctx context.Context) (domain.RateTable, error) {
	env, err := c.get(ctx, "latest")
	if err != nil {
		return domain.RateTable{}, fmt.Errorf("fetch latest rates: %w", err)
	}
	return domain.NewRateTable(env.Rates), nil
}

// FetchSymbols implements portssvc.RateProvider.
func (c *Client) FetchSymbols(ctx context.Context) (domain.SymbolTable, error) {
	env, err := c.get(ctx, "symbols")
	if err != nil {
		return domain.SymbolTable{}, fmt.Errorf("fetch symbols: %w", err)
	}
	return domain.NewSymbolTable(env.Symbols), nil
}

// FetchHistorical implements portssvc.RateProvider.
func (c *Client) FetchHistorical(ctx context.Context, date time.Time) (domain.RateTable, error) {
	day := date.Format(time.DateOnly)
	env, err := c.get(ctx, day)
	if err != nil {
		return domain.RateTable{}, fmt.Errorf("fetch historical rates for %s: %w", day, err)
	}
	return domain.NewRateTable(env.Rates), nil
}

func (c *Client) get(ctx context.Context, path string) (*envelope, error) {
	q := url.Values{}
	q.Set("access_key", c.accessKey)
	endpoint := c.baseURL + "/" + path + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", apperrors.ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("request %s: %w", path, ctxErr)
		}
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", apperrors.ErrUpstream, err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: status %d: decode body: %v", apperrors.ErrUpstream, resp.StatusCode, err)
	}
	if !env.Success {
		upstream := &apperrors.UpstreamError{Code: resp.StatusCode}
		if env.Error != nil {
			upstream.Code = env.Error.Code
			upstream.Type = env.Error.Type
			upstream.Info = env.Error.Info
		}
		return nil, upstream
	}
	return &env, nil
}

// classifyTransportError separates "cannot reach the service" failures,
// which need a configuration fix, from everything else.
func classifyTransportError(err error) error {
	var dnsErr *net.DNSError
	var opErr *net.OpError
	var certErr *tls.CertificateVerificationError
	var headerErr tls.RecordHeaderError
	var netErr net.Error

	switch {
	case errors.As(err, &dnsErr),
		errors.As(err, &opErr),
		errors.As(err, &certErr),
		errors.As(err, &headerErr),
		errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("%w: %v", apperrors.ErrNetwork, err)
	default:
		return fmt.Errorf("%w: %v", apperrors.ErrUpstream, err)
	}
}
