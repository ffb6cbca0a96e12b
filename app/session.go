package app

import (
	"fmt"
	"sync"

	"github.com/paulmach/orb"
	"github.com/rotblauer/densitymap/params"
	"github.com/rotblauer/densitymap/render"
	"github.com/rotblauer/densitymap/zoom"
)

// Session is one viewer's interaction with a map. Its handlers are
// serialized, so a viewer's events apply one at a time in arrival order.
type Session struct {
	m        *Map
	viewport params.Viewport

	mu      sync.Mutex
	zoom    *zoom.Controller
	tooltip *render.Tooltip
}

// NewSession opens a view of the map in viewport v. An invalid viewport
// falls back to the default one. The animator may be nil.
func (m *Map) NewSession(v params.Viewport, animator zoom.Animator) *Session {
	if !v.Valid() {
		v = params.DefaultViewport()
	}
	return &Session{
		m:        m,
		viewport: v,
		zoom:     zoom.NewController(v, m.config.Zoom, animator),
		tooltip:  render.NewTooltip(m.config.Tooltip),
	}
}

func (s *Session) Map() *Map {
	return s.m
}

func (s *Session) Viewport() params.Viewport {
	return s.viewport
}

func (s *Session) State() zoom.ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoom.State()
}

// Transform is the target transform of the current view.
func (s *Session) Transform() zoom.Transform {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoom.Transform()
}

// HandleClick handles a click on the county with the given id, or on the
// background when id is empty.
func (s *Session) HandleClick(id string) (zoom.ViewState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		return s.zoom.HandleClick(nil), nil
	}
	f, ok := s.m.Feature(id)
	if !ok {
		return s.zoom.State(), fmt.Errorf("%w: %q", ErrUnknownFeature, id)
	}
	return s.zoom.HandleClick(f), nil
}

// HandleHover shows the tooltip for a county at pointer.
func (s *Session) HandleHover(id string, pointer orb.Point) (render.TooltipUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.m.Feature(id)
	if !ok {
		return s.tooltip.Last(), fmt.Errorf("%w: %q", ErrUnknownFeature, id)
	}
	return s.tooltip.Show(f, pointer), nil
}

func (s *Session) HandleUnhover() render.TooltipUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tooltip.Hide()
}
