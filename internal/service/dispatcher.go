package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/kjstillabower/weatherify/internal/client"
	"github.com/kjstillabower/weatherify/internal/models"
	"github.com/kjstillabower/weatherify/internal/observability"
	"github.com/kjstillabower/weatherify/internal/panel"
)

// Dispatcher issues fire-and-forget upstream calls whose results land on a
// pre-bound panel. Calls never block the caller and never coalesce: two
// fetches for the same coordinates are two requests.
type Dispatcher struct {
	ctx      context.Context
	weather  client.WeatherClient
	geocoder client.GeocodeClient
	logger   *zap.Logger
	wg       sync.WaitGroup
}

// NewDispatcher returns a Dispatcher. ctx bounds every background call;
// cancel it on shutdown.
func NewDispatcher(ctx context.Context, weather client.WeatherClient, geocoder client.GeocodeClient, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		ctx:      ctx,
		weather:  weather,
		geocoder: geocoder,
		logger:   logger,
	}
}

// FetchWeather fetches current conditions for coords into target. On failure
// the error is logged and target keeps its previous snapshot.
func (d *Dispatcher) FetchWeather(coords models.Coordinates, target *panel.Panel) {
	d.launch(func() {
		snap, err := d.weather.FetchCurrent(d.ctx, coords)
		if err != nil {
			d.logFailure("weather fetch failed", observability.UpstreamForecast, coords, target, err)
			return
		}
		target.SetSnapshot(snap)
		d.logger.Debug("weather updated",
			zap.String("panel", target.Name()),
			zap.Float64("temperature_c", snap.TemperatureCelsius),
			zap.Float64("wind_kph", snap.WindSpeedKph))
	})
}

// ResolveLabel reverse-geocodes coords into target's label. On failure the
// label is left unset.
func (d *Dispatcher) ResolveLabel(coords models.Coordinates, target *panel.Panel) {
	d.launch(func() {
		label, err := d.geocoder.ReverseLookup(d.ctx, coords)
		if err != nil {
			d.logFailure("location name lookup failed", observability.UpstreamGeocodeReverse, coords, target, err)
			return
		}
		target.SetLabel(label)
	})
}

// Wait blocks until all dispatched calls have completed or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) launch(fn func()) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		fn()
	}()
}

func (d *Dispatcher) logFailure(msg, upstream string, coords models.Coordinates, target *panel.Panel, err error) {
	category := client.CategorizeError(err)
	observability.RecordUpstreamError(upstream, string(category))
	d.logger.Error(msg,
		zap.String("panel", target.Name()),
		zap.Float64("latitude", coords.Latitude),
		zap.Float64("longitude", coords.Longitude),
		zap.String("error_category", string(category)),
		zap.Error(err))
}
