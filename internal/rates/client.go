// Package rates fetches exchange-rate tables from an open.er-api.com
// compatible endpoint.
package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DefaultBaseURL is the free open.er-api.com endpoint.
	DefaultBaseURL = "https://open.er-api.com/v6/latest"
	requestTimeout = 10 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
)

var (
	// ErrRateLimited indicates the provider's rate limit was hit.
	ErrRateLimited = errors.New("rates: rate limited")
	// ErrUnavailable indicates the provider could not serve a table.
	ErrUnavailable = errors.New("rates: provider unavailable")
)

// Client fetches rate tables over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for baseURL. An empty URL uses DefaultBaseURL.
func NewClient(baseURL string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
	}
}

// BaseURL returns the endpoint the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// FetchLatest returns the current table quoted against base.
func (c *Client) FetchLatest(ctx context.Context, base string) (*Snapshot, error) {
	base = strings.ToUpper(strings.TrimSpace(base))
	if base == "" {
		base = "USD"
	}

	body, err := c.get(ctx, "/"+base)
	if err != nil {
		return nil, err
	}

	var raw LatestResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("rates: parsing response: %w", err)
	}
	if raw.Result != "success" {
		if raw.ErrorType == "" {
			raw.ErrorType = "unknown error"
		}
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, raw.ErrorType)
	}

	snap := &Snapshot{
		Base:      strings.ToUpper(raw.BaseCode),
		Source:    c.baseURL,
		FetchedAt: time.Now(),
		Rates:     make(map[string]decimal.Decimal, len(raw.Rates)),
	}
	if snap.Base == "" {
		snap.Base = base
	}
	if raw.TimeLastUpdateUnix > 0 {
		snap.UpdatedAt = time.Unix(raw.TimeLastUpdateUnix, 0).UTC()
	}
	for code, num := range raw.Rates {
		d, err := decimal.NewFromString(num.String())
		if err != nil || !d.IsPositive() {
			continue
		}
		snap.Rates[strings.ToUpper(code)] = d
	}
	if len(snap.Rates) == 0 {
		return nil, fmt.Errorf("%w: empty rate table", ErrUnavailable)
	}
	return snap, nil
}

// get performs a GET request and returns the response body.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("rates: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "github.com/theirongolddev/abroad/1.0")

	//nolint:gosec // URL comes from local configuration
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rates: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("rates: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("rates: reading response: %w", err)
	}
	return body, nil
}
