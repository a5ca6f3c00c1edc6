package models

import "math"

// Location represents a geocoded place
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name"`
	Country   string  `json:"country"`
}

// DisplayName returns "Name, Country", or just the name when no country is known
func (l Location) DisplayName() string {
	if l.Country == "" {
		return l.Name
	}
	return l.Name + ", " + l.Country
}

// CurrentWeather represents an instantaneous weather observation
type CurrentWeather struct {
	Temperature   float64 `json:"temperature"`   // Celsius
	WindSpeed     float64 `json:"windspeed"`     // km/h
	WindDirection float64 `json:"winddirection"` // degrees, 0-360
}

var compassPoints = []string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// Compass converts the wind direction to a 16-point compass label
func (w CurrentWeather) Compass() string {
	deg := math.Mod(w.WindDirection, 360)
	if deg < 0 {
		deg += 360
	}
	idx := int(math.Floor(deg/22.5+0.5)) % len(compassPoints)
	return compassPoints[idx]
}
