package geolocation

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kjstillabower/weatherify/internal/client"
	"github.com/kjstillabower/weatherify/internal/models"
	"github.com/kjstillabower/weatherify/internal/panel"
)

type countingLocator struct {
	mu     sync.Mutex
	calls  int
	coords models.Coordinates
	err    error
	block  bool
}

func (l *countingLocator) Locate(ctx context.Context) (models.Coordinates, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	if l.block {
		<-ctx.Done()
		return models.Coordinates{}, ctx.Err()
	}
	return l.coords, l.err
}

type recordingSink struct {
	weather []models.Coordinates
	labels  []models.Coordinates
	target  *panel.Panel
}

func (s *recordingSink) FetchWeather(coords models.Coordinates, target *panel.Panel) {
	s.weather = append(s.weather, coords)
	s.target = target
}

func (s *recordingSink) ResolveLabel(coords models.Coordinates, target *panel.Panel) {
	s.labels = append(s.labels, coords)
}

func TestProbe_SuccessFeedsCurrentPanel(t *testing.T) {
	loc := &countingLocator{coords: models.Coordinates{Latitude: 40.71, Longitude: -74.0}}
	sink := &recordingSink{}
	board := panel.NewBoard()

	p := NewProbe(loc, sink, board.Current, time.Second, zap.NewNop())
	p.Run(context.Background())

	if len(sink.weather) != 1 || sink.weather[0] != loc.coords {
		t.Errorf("FetchWeather calls = %+v", sink.weather)
	}
	if len(sink.labels) != 1 || sink.labels[0] != loc.coords {
		t.Errorf("ResolveLabel calls = %+v", sink.labels)
	}
	if sink.target != board.Current {
		t.Error("probe should feed the current-location panel")
	}
}

func TestProbe_RunsOnce(t *testing.T) {
	loc := &countingLocator{coords: models.Coordinates{Latitude: 1, Longitude: 2}}
	sink := &recordingSink{}
	p := NewProbe(loc, sink, panel.New(panel.Current), time.Second, nil)

	p.Run(context.Background())
	p.Run(context.Background())
	p.Run(context.Background())

	if loc.calls != 1 {
		t.Errorf("Locate calls = %d, want 1", loc.calls)
	}
	if len(sink.weather) != 1 {
		t.Errorf("FetchWeather calls = %d, want 1", len(sink.weather))
	}
}

func TestProbe_FailureLogged(t *testing.T) {
	tests := []struct {
		name     string
		loc      *countingLocator
		category client.ErrorCategory
	}{
		{"permission denied", &countingLocator{err: client.ErrPermissionDenied}, client.ErrorCategoryPermissionDenied},
		{"unsupported", &countingLocator{err: client.ErrPlatformUnsupported}, client.ErrorCategoryPlatformUnsupported},
		{"timeout", &countingLocator{block: true}, client.ErrorCategoryTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.ErrorLevel)
			sink := &recordingSink{}
			target := panel.New(panel.Current)

			p := NewProbe(tt.loc, sink, target, 10*time.Millisecond, zap.New(core))
			p.Run(context.Background())

			if len(sink.weather) != 0 || len(sink.labels) != 0 {
				t.Error("no fetch expected after geolocation failure")
			}
			if _, ok := target.Snapshot(); ok {
				t.Error("panel should stay unresolved")
			}
			entries := logs.FilterMessage("geolocation failed").All()
			if len(entries) != 1 {
				t.Fatalf("failure logs = %d, want 1", len(entries))
			}
			if got := entries[0].ContextMap()["error_category"]; got != string(tt.category) {
				t.Errorf("error_category = %v, want %s", got, tt.category)
			}
		})
	}
}
