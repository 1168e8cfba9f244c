package panel

import (
	"sync"

	"github.com/kjstillabower/weatherify/internal/classify"
	"github.com/kjstillabower/weatherify/internal/models"
	"github.com/kjstillabower/weatherify/internal/observability"
)

// Panel names.
const (
	Current  = "current"
	Searched = "searched"
)

// Panel holds what one location panel displays: a label and the last
// successful snapshot. Both start unset; a failed fetch never clears them.
type Panel struct {
	name string

	mu       sync.RWMutex
	label    string
	snapshot *models.WeatherSnapshot
}

// New returns an unresolved panel.
func New(name string) *Panel {
	return &Panel{name: name}
}

// Name returns the panel name.
func (p *Panel) Name() string {
	return p.name
}

// SetSnapshot replaces the snapshot wholesale.
func (p *Panel) SetSnapshot(s models.WeatherSnapshot) {
	p.mu.Lock()
	p.snapshot = &s
	p.mu.Unlock()
	observability.PanelUpdatesTotal.WithLabelValues(p.name, "snapshot").Inc()
}

// SetLabel replaces the location label.
func (p *Panel) SetLabel(label string) {
	p.mu.Lock()
	p.label = label
	p.mu.Unlock()
	observability.PanelUpdatesTotal.WithLabelValues(p.name, "label").Inc()
}

// Snapshot returns the current snapshot and whether one has been set.
func (p *Panel) Snapshot() (models.WeatherSnapshot, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.snapshot == nil {
		return models.WeatherSnapshot{}, false
	}
	return *p.snapshot, true
}

// Label returns the current label, empty when unset.
func (p *Panel) Label() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.label
}

// View is the render-ready form of a panel.
type View struct {
	Name               string        `json:"name"`
	Label              string        `json:"label"`
	Loading            bool          `json:"loading"`
	TemperatureCelsius *float64      `json:"temperatureCelsius,omitempty"`
	WindSpeedKph       *float64      `json:"windSpeedKph,omitempty"`
	Icon               classify.Icon `json:"icon,omitempty"`
}

// View renders the panel. Loading stays true until the first snapshot arrives.
func (p *Panel) View() View {
	p.mu.RLock()
	defer p.mu.RUnlock()

	v := View{Name: p.name, Label: p.label, Loading: p.snapshot == nil}
	if p.snapshot != nil {
		temp := p.snapshot.TemperatureCelsius
		wind := p.snapshot.WindSpeedKph
		v.TemperatureCelsius = &temp
		v.WindSpeedKph = &wind
		v.Icon = classify.ByTemperature(temp)
	}
	return v
}

// Board groups the two panels the widget shows.
type Board struct {
	Current  *Panel
	Searched *Panel
}

// NewBoard returns a board with both panels unresolved.
func NewBoard() *Board {
	return &Board{Current: New(Current), Searched: New(Searched)}
}

// Get returns the panel with the given name.
func (b *Board) Get(name string) (*Panel, bool) {
	switch name {
	case Current:
		return b.Current, true
	case Searched:
		return b.Searched, true
	}
	return nil, false
}
