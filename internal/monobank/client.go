// Package monobank is a thin client for the Monobank personal statement
// API. The API enforces a request-rate limit; callers are expected to
// self-throttle and treat ErrRateLimited as a normal outcome.
package monobank

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.monobank.ua"

// ErrRateLimited is returned when the API answers 429. Expected under the
// cooldown regime; callers swallow it and wait for the next window.
var ErrRateLimited = errors.New("monobank: rate limited")

// StatementItem is one entry of GET /personal/statement. Amount is in minor
// currency units, negative for outflows.
type StatementItem struct {
	ID              string `json:"id"`
	Time            int64  `json:"time"`
	Description     string `json:"description"`
	MCC             int    `json:"mcc"`
	OriginalMCC     int    `json:"originalMcc"`
	Amount          int64  `json:"amount"`
	OperationAmount int64  `json:"operationAmount"`
	CurrencyCode    int    `json:"currencyCode"`
	CommissionRate  int64  `json:"commissionRate"`
	CashbackAmount  int64  `json:"cashbackAmount"`
	Balance         int64  `json:"balance"`
	Comment         string `json:"comment,omitempty"`
}

// Date returns the item's booking time.
func (s StatementItem) Date() time.Time {
	return time.Unix(s.Time, 0)
}

// AbsAmount returns the unsigned amount in major currency units.
func (s StatementItem) AbsAmount() float64 {
	a := s.Amount
	if a < 0 {
		a = -a
	}
	return float64(a) / 100
}

// Client talks to the Monobank API. The zero value is not usable; construct
// with NewClient.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at a different endpoint (tests, proxies).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// NewClient creates a Monobank API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Statement fetches the statement for an account between from and to.
// Authentication is the per-integration token sent in the X-Token header.
func (c *Client) Statement(ctx context.Context, token, account string, from, to time.Time) ([]StatementItem, error) {
	url := fmt.Sprintf("%s/personal/statement/%s/%d/%d", c.baseURL, account, from.Unix(), to.Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("Statement: build request: %w", err)
	}
	req.Header.Set("X-Token", token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Statement: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("Statement: unexpected status %d: %s", resp.StatusCode, body)
	}

	var items []StatementItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("Statement: decode response: %w", err)
	}
	return items, nil
}
