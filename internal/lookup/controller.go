package lookup

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/ngmaloney/weather-now/internal/models"
	"github.com/ngmaloney/weather-now/internal/openmeteo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/ngmaloney/weather-now/internal/lookup"

// Ticket identifies one started lookup. A ticket goes stale as soon as a
// newer lookup is started.
type Ticket struct {
	Query      string
	Generation uint64

	// Location, when set, is an already resolved place; the geocode stage
	// is skipped for it.
	Location *models.Location
}

// Controller resolves a city name to its current weather and exposes the
// outcome as a single State.
type Controller struct {
	geocoder openmeteo.Geocoder
	weather  openmeteo.WeatherClient
	tracer   trace.Tracer
	logger   *slog.Logger

	mu          sync.Mutex
	state       State
	generation  uint64
	cancel      context.CancelFunc
	subscribers map[int]chan State
	nextSubID   int
}

// Option configures a Controller
type Option func(*Controller)

// WithLogger sets the controller's logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTracer sets the tracer used for the geocode and forecast stages
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Controller) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// NewController creates a controller in the Idle state
func NewController(geocoder openmeteo.Geocoder, weather openmeteo.WeatherClient, opts ...Option) *Controller {
	c := &Controller{
		geocoder:    geocoder,
		weather:     weather,
		tracer:      otel.Tracer(tracerName),
		logger:      slog.Default(),
		state:       Idle(),
		subscribers: make(map[int]chan State),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a snapshot of the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// InFlight reports whether a lookup is currently running
func (c *Controller) InFlight() bool {
	return c.State().IsLoading()
}

// Start begins a lookup for query. Blank queries are ignored and report
// false. Otherwise any earlier in-flight lookup is superseded and the state
// moves to Loading.
func (c *Controller) Start(query string) (Ticket, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Ticket{}, false
	}

	return c.begin(Ticket{Query: query}), true
}

// StartLocation begins a lookup for a location resolved earlier, such as a
// recent search. Only the forecast stage runs for it. A location without a
// name is ignored and reports false.
func (c *Controller) StartLocation(loc models.Location) (Ticket, bool) {
	if strings.TrimSpace(loc.Name) == "" {
		return Ticket{}, false
	}
	return c.begin(Ticket{Query: loc.DisplayName(), Location: &loc}), true
}

// begin supersedes any in-flight lookup, moves to Loading and stamps t with
// the new generation.
func (c *Controller) begin(t Ticket) Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.generation++
	c.setLocked(Loading(t.Query))

	t.Generation = c.generation
	c.logger.Debug("lookup started", "query", t.Query, "generation", t.Generation)
	return t
}

// Resolve runs the geocode and forecast stages for t and records the
// outcome. The returned bool is false when t is not the pending lookup:
// a zero ticket, a superseded one, or one already resolved or resolving.
// Such a ticket issues no network calls and the current State is returned.
func (c *Controller) Resolve(ctx context.Context, t Ticket) (State, bool) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	if t.Generation == 0 || t.Generation != c.generation || !c.state.IsLoading() || c.cancel != nil {
		current := c.state
		c.mu.Unlock()
		c.logger.Debug("ignoring ticket that is not pending", "query", t.Query, "generation", t.Generation)
		return current, false
	}
	c.cancel = cancel
	c.mu.Unlock()

	result := c.run(ctx, t)

	c.mu.Lock()
	defer c.mu.Unlock()
	if t.Generation != c.generation {
		c.logger.Debug("discarding stale lookup result", "query", t.Query, "generation", t.Generation)
		return c.state, false
	}
	c.cancel = nil
	c.setLocked(result)

	if result.IsFailed() {
		c.logger.Warn("lookup failed", "query", t.Query, "message", result.Message, "error", result.Cause)
	} else {
		c.logger.Info("lookup succeeded",
			"query", t.Query,
			"location", result.Location.DisplayName(),
			"temperature", result.Weather.Temperature,
		)
	}
	return result, true
}

// Lookup starts and resolves a lookup for query in one call. A blank query
// leaves the state untouched and returns it.
func (c *Controller) Lookup(ctx context.Context, query string) State {
	t, ok := c.Start(query)
	if !ok {
		return c.State()
	}
	state, _ := c.Resolve(ctx, t)
	return state
}

// run executes the two stages in order. The forecast stage is only reached
// once geocoding produced a location.
func (c *Controller) run(ctx context.Context, t Ticket) State {
	location := t.Location
	if location == nil {
		var err error
		location, err = c.geocode(ctx, t.Query)
		if err != nil {
			if errors.Is(err, openmeteo.ErrNotFound) {
				return Failed(MsgCityNotFound, err)
			}
			return Failed(MsgLocationFailed, err)
		}
	}

	weather, err := c.forecast(ctx, location)
	if err != nil {
		return Failed(MsgWeatherFailed, err)
	}

	return Succeeded(*location, *weather)
}

func (c *Controller) geocode(ctx context.Context, query string) (*models.Location, error) {
	ctx, span := c.tracer.Start(ctx, "geocode", trace.WithAttributes(attribute.String("query", query)))
	defer span.End()

	location, err := c.geocoder.Search(ctx, query)
	if err == nil && location == nil {
		err = openmeteo.ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("location.name", location.Name),
		attribute.String("location.country", location.Country),
	)
	return location, nil
}

func (c *Controller) forecast(ctx context.Context, location *models.Location) (*models.CurrentWeather, error) {
	ctx, span := c.tracer.Start(ctx, "forecast", trace.WithAttributes(
		attribute.Float64("latitude", location.Latitude),
		attribute.Float64("longitude", location.Longitude),
	))
	defer span.End()

	weather, err := c.weather.CurrentWeather(ctx, location.Latitude, location.Longitude)
	if err == nil && weather == nil {
		err = errors.New("empty weather response")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return weather, nil
}

// Subscribe returns a channel that receives every state the controller
// records from now on, and a function that ends the subscription. A slow
// subscriber only ever misses intermediate states, never the latest one.
func (c *Controller) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = ch
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subscribers, id)
			c.mu.Unlock()
			close(ch)
		})
	}
}

// setLocked records s and notifies subscribers. c.mu must be held.
func (c *Controller) setLocked(s State) {
	c.state = s
	for _, ch := range c.subscribers {
		select {
		case ch <- s:
		default:
			// drop the unread state so the newest one is delivered
			select {
			case <-ch:
			default:
			}
			ch <- s
		}
	}
}
