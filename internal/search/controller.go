package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/weatherify/internal/client"
	"github.com/kjstillabower/weatherify/internal/models"
	"github.com/kjstillabower/weatherify/internal/observability"
	"github.com/kjstillabower/weatherify/internal/panel"
)

// State is the search controller state.
type State string

const (
	StateIdle               State = "idle"
	StateTyping             State = "typing"
	StateSuggestionsVisible State = "suggestions_visible"
	StateResolved           State = "resolved"
)

// ErrSuggestionNotFound is returned by Select for an id not in the current list.
var ErrSuggestionNotFound = errors.New("suggestion not found")

// Autocompleter resolves free text into ranked place suggestions.
type Autocompleter interface {
	Autocomplete(ctx context.Context, text string) ([]models.PlaceSuggestion, error)
}

// WeatherDispatcher starts a weather fetch whose result lands on target.
type WeatherDispatcher interface {
	FetchWeather(coords models.Coordinates, target *panel.Panel)
}

// Controller owns the search box: raw text, the suggestion list and the
// transition to a resolved place.
//
// Every issued autocomplete request carries a tag. Only a completion whose
// tag matches the most recently issued one may touch the suggestion list;
// clearing the input or selecting a suggestion also retires outstanding tags.
type Controller struct {
	ctx       context.Context
	geocoder  Autocompleter
	weather   WeatherDispatcher
	target    *panel.Panel
	debouncer *Debouncer
	logger    *zap.Logger

	mu          sync.Mutex
	rawText     string
	suggestions []models.PlaceSuggestion
	state       State
	latestTag   uint64

	wg sync.WaitGroup
}

// Option configures a Controller.
type Option func(*controllerOptions)

type controllerOptions struct {
	clock    Clock
	debounce time.Duration
	logger   *zap.Logger
}

// WithClock overrides the clock used for debouncing.
func WithClock(c Clock) Option {
	return func(o *controllerOptions) { o.clock = c }
}

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(o *controllerOptions) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// WithLogger sets the controller logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *controllerOptions) { o.logger = l }
}

// NewController returns an idle controller. ctx bounds autocomplete requests;
// selections fetch weather through weather into target.
func NewController(ctx context.Context, geocoder Autocompleter, weather WeatherDispatcher, target *panel.Panel, opts ...Option) *Controller {
	o := controllerOptions{clock: RealClock(), debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return &Controller{
		ctx:       ctx,
		geocoder:  geocoder,
		weather:   weather,
		target:    target,
		debouncer: NewDebouncer(o.clock, o.debounce),
		logger:    o.logger,
		state:     StateIdle,
	}
}

// Input handles one keystroke. Non-blank text re-arms the debounce; blank
// text clears suggestions immediately without a network call.
func (c *Controller) Input(text string) models.SearchQueryState {
	observability.SearchKeystrokesTotal.Inc()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.rawText = text
	if strings.TrimSpace(text) == "" {
		c.debouncer.Cancel()
		c.latestTag++
		c.suggestions = nil
		c.state = StateIdle
		return c.snapshotLocked()
	}

	c.state = StateTyping
	c.debouncer.Schedule(func() { c.issue(text) })
	return c.snapshotLocked()
}

// issue runs when the debounce elapses. The request is tagged and its
// completion handled off the caller's goroutine.
func (c *Controller) issue(text string) {
	c.mu.Lock()
	if text != c.rawText {
		c.mu.Unlock()
		return
	}
	c.latestTag++
	tag := c.latestTag
	c.wg.Add(1)
	c.mu.Unlock()

	observability.AutocompleteRequestsTotal.Inc()
	c.logger.Debug("autocomplete issued", zap.String("query", text), zap.Uint64("tag", tag))

	go func() {
		defer c.wg.Done()
		results, err := c.geocoder.Autocomplete(c.ctx, text)
		c.complete(tag, text, results, err)
	}()
}

func (c *Controller) complete(tag uint64, text string, results []models.PlaceSuggestion, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tag != c.latestTag {
		observability.AutocompleteStaleTotal.Inc()
		c.logger.Debug("stale autocomplete dropped", zap.String("query", text), zap.Uint64("tag", tag), zap.Uint64("latest", c.latestTag))
		return
	}
	if err != nil {
		category := client.CategorizeError(err)
		observability.RecordUpstreamError(observability.UpstreamGeocodeAutocomplete, string(category))
		c.logger.Error("fetching suggestions failed",
			zap.String("query", text),
			zap.String("error_category", string(category)),
			zap.Error(err))
		return
	}
	if len(results) == 0 {
		c.logger.Debug("autocomplete returned no suggestions", zap.String("query", text))
		return
	}

	c.suggestions = results
	c.state = StateSuggestionsVisible
}

// Select resolves the suggestion with the given id: the searched panel gets
// its label and a weather fetch, and the list is cleared. A suggestion
// without geometry is rejected and the list stays as it was.
func (c *Controller) Select(id string) error {
	c.mu.Lock()

	idx := -1
	for i, s := range c.suggestions {
		if s.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		observability.SuggestionSelectionsTotal.WithLabelValues("not_found").Inc()
		return fmt.Errorf("%w: %q", ErrSuggestionNotFound, id)
	}

	chosen := c.suggestions[idx]
	if chosen.Coordinates == nil {
		c.mu.Unlock()
		observability.SuggestionSelectionsTotal.WithLabelValues("invalid_geometry").Inc()
		err := fmt.Errorf("%w: suggestion %q has no coordinates", client.ErrInvalidGeometry, id)
		c.logger.Error("geometry or coordinates not found in suggestion",
			zap.String("suggestion_id", id),
			zap.String("error_category", string(client.ErrorCategoryInvalidGeometry)),
			zap.Error(err))
		return err
	}

	c.debouncer.Cancel()
	c.latestTag++
	c.suggestions = nil
	c.state = StateResolved
	coords := *chosen.Coordinates
	c.mu.Unlock()

	c.target.SetLabel(chosen.FormattedName)
	c.weather.FetchWeather(coords, c.target)
	observability.SuggestionSelectionsTotal.WithLabelValues("dispatched").Inc()
	c.logger.Info("place selected",
		zap.String("suggestion_id", id),
		zap.String("place", chosen.FormattedName),
		zap.Float64("latitude", coords.Latitude),
		zap.Float64("longitude", coords.Longitude))
	return nil
}

// State returns a copy of the current search state.
func (c *Controller) State() models.SearchQueryState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() models.SearchQueryState {
	out := make([]models.PlaceSuggestion, len(c.suggestions))
	copy(out, c.suggestions)
	return models.SearchQueryState{
		RawText:     c.rawText,
		State:       string(c.state),
		Suggestions: out,
	}
}

// Wait blocks until outstanding autocomplete requests have completed or ctx is done.
func (c *Controller) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels any pending debounce. In-flight requests still complete.
func (c *Controller) Close() {
	c.debouncer.Cancel()
}
