package lookup

import "github.com/ngmaloney/weather-now/internal/models"

// Status identifies which variant of State is active
type Status int

const (
	StatusIdle      Status = iota // No lookup has run yet
	StatusLoading                 // A lookup is in flight
	StatusFailed                  // The last lookup failed
	StatusSucceeded               // The last lookup produced a result
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusFailed:
		return "failed"
	case StatusSucceeded:
		return "succeeded"
	}
	return "unknown"
}

// User-facing failure messages
const (
	MsgLocationFailed = "Failed to fetch location"
	MsgCityNotFound   = "City not found"
	MsgWeatherFailed  = "Failed to fetch weather"
)

// State is the observable result of the lookup controller. Only the fields
// belonging to Status are populated; use the constructors to build one.
type State struct {
	Status Status

	// Loading
	Query string

	// Failed
	Message string
	Cause   error

	// Succeeded
	Location *models.Location
	Weather  *models.CurrentWeather
}

// Idle returns the initial state
func Idle() State {
	return State{Status: StatusIdle}
}

// Loading returns an in-flight state for query
func Loading(query string) State {
	return State{Status: StatusLoading, Query: query}
}

// Failed returns a failure state carrying a user-facing message
func Failed(message string, cause error) State {
	return State{Status: StatusFailed, Message: message, Cause: cause}
}

// Succeeded returns a state holding a resolved location and its weather
func Succeeded(location models.Location, weather models.CurrentWeather) State {
	return State{Status: StatusSucceeded, Location: &location, Weather: &weather}
}

func (s State) IsIdle() bool      { return s.Status == StatusIdle }
func (s State) IsLoading() bool   { return s.Status == StatusLoading }
func (s State) IsFailed() bool    { return s.Status == StatusFailed }
func (s State) IsSucceeded() bool { return s.Status == StatusSucceeded }
