package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/ngmaloney/weather-now/internal/models"
)

// RenderCard renders the result card for a location and its current weather
func RenderCard(loc models.Location, w models.CurrentWeather) string {
	lines := []string{
		cardHeaderStyle.Render(loc.DisplayName()),
		temperatureStyle.Render(formatTemperature(w.Temperature)),
		labelStyle.Render("Windspeed: ") + valueStyle.Render(formatWindSpeed(w.WindSpeed)),
		labelStyle.Render("Direction: ") + valueStyle.Render(formatDirection(w)),
	}
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Center, lines...))
}

// PlainCard renders the result card without styling, for non-terminal output
func PlainCard(loc models.Location, w models.CurrentWeather) string {
	return fmt.Sprintf("%s\n%s\nWindspeed: %s\nDirection: %s\n",
		loc.DisplayName(),
		formatTemperature(w.Temperature),
		formatWindSpeed(w.WindSpeed),
		formatDirection(w),
	)
}

func formatTemperature(c float64) string {
	return fmt.Sprintf("%s°C", formatNumber(c))
}

func formatWindSpeed(kmh float64) string {
	return fmt.Sprintf("%s km/h", formatNumber(kmh))
}

func formatDirection(w models.CurrentWeather) string {
	return fmt.Sprintf("%s° (%s)", formatNumber(w.WindDirection), w.Compass())
}

// formatNumber prints a value the way the API reported it: 270 stays 270,
// 18.4 stays 18.4
func formatNumber(v float64) string {
	return fmt.Sprintf("%g", v)
}
