// Package geocode resolves a coordinate to the coarse administrative region
// string the upstream provider filters on. The reverse geocoder is rate
// limited and unreliable; callers substitute a configured fallback region on
// any failure and never retry.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// ErrUnavailable marks any reverse-geocode failure; callers fall back.
var ErrUnavailable = errors.New("geocode: unavailable")

// Client is a Nominatim-style reverse geocoder.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// NewClient builds a reverse geocoder with a bounded request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: "chargemap-stations/1.0",
	}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		City     string `json:"city"`
		Province string `json:"province"`
		District string `json:"city_district"`
		Borough  string `json:"borough"`
		Suburb   string `json:"suburb"`
	} `json:"address"`
}

// ResolveRegion reverse-geocodes (lat, lon) into a region string built from
// the city/district/suburb components, falling back to the raw display name.
// An empty region with a nil error never happens: failures return ErrUnavailable.
func (c *Client) ResolveRegion(ctx context.Context, lat, lon float64) (string, error) {
	endpoint := strings.TrimRight(c.baseURL, "/") + "/reverse"
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("format", "json")
	params.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var decoded reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	region := joinRegion(
		firstNonEmpty(decoded.Address.City, decoded.Address.Province),
		firstNonEmpty(decoded.Address.District, decoded.Address.Borough),
		decoded.Address.Suburb,
	)
	if region == "" {
		region = strings.TrimSpace(decoded.DisplayName)
	}
	if region == "" {
		return "", fmt.Errorf("%w: empty address", ErrUnavailable)
	}
	return region, nil
}

func joinRegion(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
