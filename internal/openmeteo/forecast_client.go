package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ngmaloney/weather-now/internal/models"
)

// API Docs: https://open-meteo.com/en/docs
// Sample request: https://api.open-meteo.com/v1/forecast?latitude=48.85&longitude=2.35&current_weather=true

// ForecastClient implements WeatherClient using the Open-Meteo forecast API
type ForecastClient struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// NewForecastClient creates a new forecast client
func NewForecastClient(opts ...Option) *ForecastClient {
	o := buildOptions(DefaultForecastURL, opts)
	return &ForecastClient{
		baseURL:    o.baseURL,
		httpClient: o.httpClient,
		userAgent:  o.userAgent,
	}
}

type forecastResponse struct {
	CurrentWeather *models.CurrentWeather `json:"current_weather"`
}

// CurrentWeather fetches the current observation for the given coordinates
func (c *ForecastClient) CurrentWeather(ctx context.Context, lat, lon float64) (*models.CurrentWeather, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("current_weather", "true")
	u.RawQuery = q.Encode()

	req, err := newRequest(ctx, u.String(), c.userAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch weather: %w", err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("forecast API returned status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if apiResp.CurrentWeather == nil {
		return nil, fmt.Errorf("response is missing current_weather")
	}

	return apiResp.CurrentWeather, nil
}
