// Package upstream talks to the provider's open-data endpoint: one GET per
// region, JSON body with a data array of flat station+charger records.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrUnavailable marks transport failures and non-200 responses.
	ErrUnavailable = errors.New("upstream: unavailable")
	// ErrMalformed marks bodies that are not the expected {data:[...]} shape.
	ErrMalformed = errors.New("upstream: malformed response")
)

// Client issues region queries against the provider API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient builds a provider client with a bounded request timeout.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

type regionResponse struct {
	Data []Item `json:"data"`
}

// FetchByRegion requests all charger records for a region. A 200 with an
// empty data array is not an error: it returns an empty slice.
func (c *Client) FetchByRegion(ctx context.Context, region string) ([]Item, error) {
	params := url.Values{}
	params.Set("addr", region)
	params.Set("apiKey", c.apiKey)
	params.Set("returnType", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("upstream request failed", zap.String("region", region), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("upstream returned non-200", zap.String("region", region), zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var decoded regionResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if decoded.Data == nil {
		// A JSON body without a data array is the wrong shape, not an empty result.
		return nil, fmt.Errorf("%w: missing data array", ErrMalformed)
	}

	return decoded.Data, nil
}
