package openmeteo

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ngmaloney/weather-now/internal/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const (
	DefaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	DefaultForecastURL  = "https://api.open-meteo.com/v1/forecast"
	DefaultUserAgent    = "WeatherNow/1.0 (github.com/ngmaloney/weather-now)"
	DefaultTimeout      = 10 * time.Second
)

// ErrNotFound is returned when the geocoding service has no match for a query
var ErrNotFound = errors.New("no matching location")

// Geocoder resolves a place name to a location
type Geocoder interface {
	// Search returns the first location matching name
	Search(ctx context.Context, name string) (*models.Location, error)
}

// WeatherClient fetches current conditions for a coordinate
type WeatherClient interface {
	// CurrentWeather retrieves the current observation at lat/lon
	CurrentWeather(ctx context.Context, lat, lon float64) (*models.CurrentWeather, error)
}

// Option configures the Open-Meteo clients
type Option func(*options)

type options struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// WithBaseURL overrides the endpoint URL
func WithBaseURL(u string) Option {
	return func(o *options) {
		if u != "" {
			o.baseURL = u
		}
	}
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) Option {
	return func(o *options) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}

// WithTimeout sets the HTTP client timeout
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithHTTPClient replaces the HTTP client entirely
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.httpClient = c
		}
	}
}

func buildOptions(baseURL string, opts []Option) options {
	o := options{
		baseURL:    baseURL,
		userAgent:  DefaultUserAgent,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// newRequest builds a GET request carrying the trace context of ctx
func newRequest(ctx context.Context, reqURL, userAgent string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	return req, nil
}
