package ui

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ngmaloney/weather-now/internal/lookup"
	"github.com/ngmaloney/weather-now/internal/openmeteo"
)

// TestIntegration_OpenMeteoFlow drives the UI against fake Open-Meteo
// endpoints using the real HTTP clients.
func TestIntegration_OpenMeteoFlow(t *testing.T) {
	var forecastCalls atomic.Int32

	geoServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("name") {
		case "Paris":
			_, _ = w.Write([]byte(`{"results":[{"latitude":48.85,"longitude":2.35,"name":"Paris","country":"France"}]}`))
		case "Broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			_, _ = w.Write([]byte(`{"generationtime_ms":0.4}`))
		}
	}))
	defer geoServer.Close()

	forecastServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		forecastCalls.Add(1)
		if r.URL.Query().Get("current_weather") != "true" {
			t.Errorf("forecast request missing current_weather=true: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"current_weather":{"temperature":18.4,"windspeed":10.2,"winddirection":270}}`))
	}))
	defer forecastServer.Close()

	controller := lookup.NewController(
		openmeteo.NewGeocodingClient(openmeteo.WithBaseURL(geoServer.URL)),
		openmeteo.NewForecastClient(openmeteo.WithBaseURL(forecastServer.URL)),
	)
	m := NewModel(controller)
	m.width = 100
	m.height = 30

	tests := []struct {
		query         string
		want          []string
		wantForecasts int32
	}{
		{"Paris", []string{"Paris, France", "18.4°C", "10.2 km/h", "270° (W)"}, 1},
		{"Atlantis", []string{"City not found"}, 0},
		{"Broken", []string{"Failed to fetch location"}, 0},
		{"Paris", []string{"Paris, France", "18.4°C"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			before := forecastCalls.Load()

			m.searchInput.SetValue(tt.query)
			next, cmd := pressEnter(m)
			m = runCmd(t, next, cmd)

			view := m.View()
			for _, want := range tt.want {
				if !strings.Contains(view, want) {
					t.Errorf("view for %q missing %q:\n%s", tt.query, want, view)
				}
			}
			if got := forecastCalls.Load() - before; got != tt.wantForecasts {
				t.Errorf("forecast calls for %q = %d, want %d", tt.query, got, tt.wantForecasts)
			}
		})
	}
}

func TestIntegration_ForecastFailureDiscardsLocation(t *testing.T) {
	geoServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"latitude":48.85,"longitude":2.35,"name":"Paris","country":"France"}]}`))
	}))
	defer geoServer.Close()

	forecastServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer forecastServer.Close()

	controller := lookup.NewController(
		openmeteo.NewGeocodingClient(openmeteo.WithBaseURL(geoServer.URL)),
		openmeteo.NewForecastClient(openmeteo.WithBaseURL(forecastServer.URL)),
	)
	m := NewModel(controller)
	m.width = 100
	m.height = 30

	m.searchInput.SetValue("Paris")
	next, cmd := pressEnter(m)
	m = runCmd(t, next, cmd)

	state := m.Lookup()
	if !state.IsFailed() || state.Message != lookup.MsgWeatherFailed {
		t.Fatalf("lookup = %+v, want failed with %q", state, lookup.MsgWeatherFailed)
	}
	if strings.Contains(m.View(), "France") {
		t.Error("view shows the geocoded location after the forecast failed")
	}
}
