package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ngmaloney/weather-now/internal/models"
)

// API Docs: https://open-meteo.com/en/docs/geocoding-api
// Sample request: https://geocoding-api.open-meteo.com/v1/search?name=Paris&count=1

// GeocodingClient implements Geocoder using the Open-Meteo geocoding API
type GeocodingClient struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// NewGeocodingClient creates a new geocoding client
func NewGeocodingClient(opts ...Option) *GeocodingClient {
	o := buildOptions(DefaultGeocodingURL, opts)
	return &GeocodingClient{
		baseURL:    o.baseURL,
		httpClient: o.httpClient,
		userAgent:  o.userAgent,
	}
}

// geocodingResponse represents the geocoding API response
type geocodingResponse struct {
	Results []struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Name      string  `json:"name"`
		Country   string  `json:"country"`
	} `json:"results"`
}

// Search resolves name to the first matching location
func (c *GeocodingClient) Search(ctx context.Context, name string) (*models.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name cannot be empty")
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	q := u.Query()
	q.Set("name", name)
	q.Set("count", "1")
	u.RawQuery = q.Encode()

	req, err := newRequest(ctx, u.String(), c.userAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch location: %w", err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("geocoding API returned status %d: %s", resp.StatusCode, string(body))
	}

	var geoResp geocodingResponse
	if err := json.NewDecoder(resp.Body).Decode(&geoResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(geoResp.Results) == 0 {
		return nil, fmt.Errorf("%w for '%s'", ErrNotFound, name)
	}

	first := geoResp.Results[0]
	return &models.Location{
		Latitude:  first.Latitude,
		Longitude: first.Longitude,
		Name:      first.Name,
		Country:   first.Country,
	}, nil
}
