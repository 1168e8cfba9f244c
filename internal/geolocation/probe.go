package geolocation

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/weatherify/internal/client"
	"github.com/kjstillabower/weatherify/internal/models"
	"github.com/kjstillabower/weatherify/internal/observability"
	"github.com/kjstillabower/weatherify/internal/panel"
)

// DefaultTimeout bounds a single position request.
const DefaultTimeout = 10 * time.Second

// Sink receives the located position for a panel.
type Sink interface {
	FetchWeather(coords models.Coordinates, target *panel.Panel)
	ResolveLabel(coords models.Coordinates, target *panel.Panel)
}

// Probe asks the locator for the position exactly once and feeds the
// result into the current-location panel. Failures are logged; the panel
// stays unresolved.
type Probe struct {
	locator Locator
	sink    Sink
	target  *panel.Panel
	timeout time.Duration
	logger  *zap.Logger

	once sync.Once
}

// NewProbe returns a probe writing into target.
func NewProbe(locator Locator, sink Sink, target *panel.Panel, timeout time.Duration, logger *zap.Logger) *Probe {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Probe{
		locator: locator,
		sink:    sink,
		target:  target,
		timeout: timeout,
		logger:  logger,
	}
}

// Run locates the host on the first call. Later calls do nothing.
func (p *Probe) Run(ctx context.Context) {
	p.once.Do(func() { p.run(ctx) })
}

func (p *Probe) run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	coords, err := p.locator.Locate(ctx)
	if err != nil {
		category := client.CategorizeError(err)
		observability.RecordUpstreamError(observability.UpstreamGeolocation, string(category))
		p.logger.Error("geolocation failed",
			zap.String("panel", p.target.Name()),
			zap.String("error_category", string(category)),
			zap.Error(err))
		return
	}

	p.logger.Info("position located",
		zap.Float64("latitude", coords.Latitude),
		zap.Float64("longitude", coords.Longitude))
	p.sink.FetchWeather(coords, p.target)
	p.sink.ResolveLabel(coords, p.target)
}
