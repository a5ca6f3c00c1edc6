package openmeteo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type countingTransport struct {
	requests atomic.Int32
}

func (c *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.requests.Add(1)
	return http.DefaultTransport.RoundTrip(req)
}

func TestNewGeocodingClient(t *testing.T) {
	client := NewGeocodingClient()

	if client == nil {
		t.Fatal("NewGeocodingClient() returned nil")
	}

	if client.baseURL != DefaultGeocodingURL {
		t.Errorf("baseURL = %s, want %s", client.baseURL, DefaultGeocodingURL)
	}

	if client.httpClient.Timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", client.httpClient.Timeout, DefaultTimeout)
	}

	if client.userAgent == "" {
		t.Error("userAgent should not be empty")
	}
}

func TestNewGeocodingClient_Options(t *testing.T) {
	client := NewGeocodingClient(
		WithBaseURL("http://localhost:9999/search"),
		WithUserAgent("test-agent"),
		WithTimeout(3*time.Second),
	)

	if client.baseURL != "http://localhost:9999/search" {
		t.Errorf("baseURL = %s, want override", client.baseURL)
	}
	if client.userAgent != "test-agent" {
		t.Errorf("userAgent = %s, want test-agent", client.userAgent)
	}
	if client.httpClient.Timeout != 3*time.Second {
		t.Errorf("timeout = %v, want 3s", client.httpClient.Timeout)
	}
}

func TestGeocodingClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("User-Agent header not set")
		}
		if got := r.URL.Query().Get("name"); got != "Paris" {
			t.Errorf("name = %q, want Paris", got)
		}
		if got := r.URL.Query().Get("count"); got != "1" {
			t.Errorf("count = %q, want 1", got)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[
			{"latitude":48.85,"longitude":2.35,"name":"Paris","country":"France"},
			{"latitude":33.66,"longitude":-95.55,"name":"Paris","country":"United States"}
		]}`))
	}))
	defer server.Close()

	client := NewGeocodingClient(WithBaseURL(server.URL))
	loc, err := client.Search(context.Background(), "  Paris ")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if loc.Name != "Paris" || loc.Country != "France" {
		t.Errorf("Search() = %+v, want first result (Paris, France)", loc)
	}
	if loc.Latitude != 48.85 || loc.Longitude != 2.35 {
		t.Errorf("coordinates = %v,%v, want 48.85,2.35", loc.Latitude, loc.Longitude)
	}
}

func TestGeocodingClient_Search_Errors(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantNotFound bool
	}{
		{"empty results", http.StatusOK, `{"results":[]}`, true},
		{"missing results", http.StatusOK, `{"generationtime_ms":0.5}`, true},
		{"server error", http.StatusInternalServerError, `oops`, false},
		{"bad request", http.StatusBadRequest, `{"error":true}`, false},
		{"malformed json", http.StatusOK, `{"results":[`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewGeocodingClient(WithBaseURL(server.URL))
			_, err := client.Search(context.Background(), "Nowhere")
			if err == nil {
				t.Fatal("Search() expected error, got nil")
			}
			if got := errors.Is(err, ErrNotFound); got != tt.wantNotFound {
				t.Errorf("errors.Is(err, ErrNotFound) = %v, want %v (err: %v)", got, tt.wantNotFound, err)
			}
		})
	}
}

func TestGeocodingClient_Search_EmptyName(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewGeocodingClient(WithBaseURL(server.URL))
	if _, err := client.Search(context.Background(), "   "); err == nil {
		t.Error("Search() with blank name should fail")
	}
	if called {
		t.Error("Search() with blank name should not hit the network")
	}
}

func TestGeocodingClient_Search_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewGeocodingClient(WithBaseURL(server.URL))
	_, err := client.Search(context.Background(), "Paris")
	if err == nil {
		t.Fatal("Search() against closed server should fail")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("transport error should not be ErrNotFound")
	}
}

func TestGeocodingClient_WithHTTPClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"latitude":48.85,"longitude":2.35,"name":"Paris","country":"France"}]}`))
	}))
	defer server.Close()

	transport := &countingTransport{}
	httpClient := &http.Client{Transport: transport}
	client := NewGeocodingClient(WithBaseURL(server.URL), WithHTTPClient(httpClient))

	if client.httpClient != httpClient {
		t.Error("WithHTTPClient() client not used")
	}
	if _, err := client.Search(context.Background(), "Paris"); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got := transport.requests.Load(); got != 1 {
		t.Errorf("transport saw %d requests, want 1", got)
	}

	// nil keeps the default client
	if c := NewGeocodingClient(WithHTTPClient(nil)); c.httpClient == nil {
		t.Error("WithHTTPClient(nil) cleared the client")
	}
}

func TestGeocodingClient_Search_NonOKSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNonAuthoritativeInfo)
		_, _ = w.Write([]byte(`{"results":[{"latitude":48.85,"longitude":2.35,"name":"Paris","country":"France"}]}`))
	}))
	defer server.Close()

	client := NewGeocodingClient(WithBaseURL(server.URL))
	loc, err := client.Search(context.Background(), "Paris")
	if err != nil {
		t.Fatalf("Search() with status 203 error = %v", err)
	}
	if loc.Name != "Paris" {
		t.Errorf("Search() = %+v, want Paris", loc)
	}
}

func TestGeocodingClient_Search_PropagatesTraceContext(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	ctx, span := tp.Tracer("test").Start(context.Background(), "geocode")
	defer span.End()

	headers := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Get("traceparent")
		_, _ = w.Write([]byte(`{"results":[{"latitude":48.85,"longitude":2.35,"name":"Paris","country":"France"}]}`))
	}))
	defer server.Close()

	client := NewGeocodingClient(WithBaseURL(server.URL))
	if _, err := client.Search(ctx, "Paris"); err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	traceparent := <-headers
	if traceparent == "" {
		t.Fatal("traceparent header not sent")
	}
	if want := span.SpanContext().TraceID().String(); !strings.Contains(traceparent, want) {
		t.Errorf("traceparent = %q, want trace id %s", traceparent, want)
	}
}
