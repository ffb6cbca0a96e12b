// Package zoom owns the map's view state: which county, if any, is centered,
// and the pan/zoom transform that follows from it.
//
// A Controller is a two-state machine. Clicking a county centers it at the
// configured magnification; clicking the centered county again, or the
// background, returns to the unzoomed view. Every click issues an animation
// to the resulting transform through an injected Animator.
package zoom

import (
	"time"

	"github.com/paulmach/orb"
	"github.com/rotblauer/densitymap/params"
	"github.com/rotblauer/densitymap/types/county"
)

type State int

const (
	Uncentered State = iota
	Centered
)

func (s State) String() string {
	if s == Centered {
		return "centered"
	}
	return "uncentered"
}

// ViewState is a snapshot of the controller.
// ZoomLevel is 1 exactly when Centered is nil.
type ViewState struct {
	Centered  *county.Feature
	ZoomLevel float64
	Focal     orb.Point
}

func (v ViewState) State() State {
	if v.Centered == nil {
		return Uncentered
	}
	return Centered
}

// Transform is the view transform for this state in viewport v.
func (v ViewState) Transform(vp params.Viewport) Transform {
	return Target(vp, v.Focal, v.ZoomLevel)
}

// Animator animates the drawing group's transform. A new call supersedes
// any animation still running.
type Animator interface {
	AnimateTransform(from, to Transform, d time.Duration, ease Ease)
}

// currenter is implemented by animators that know the transform currently
// on screen, which may be partway through an animation.
type currenter interface {
	Current() Transform
}

type Controller struct {
	viewport params.Viewport
	config   params.ZoomConfig
	animator Animator
	ease     Ease

	state ViewState
	last  Transform
}

func NewController(v params.Viewport, config params.ZoomConfig, animator Animator) *Controller {
	c := &Controller{
		viewport: v,
		config:   config,
		animator: animator,
		ease:     EaseCubicOut,
	}
	c.state = c.uncentered()
	c.last = c.state.Transform(v)
	return c
}

func (c *Controller) uncentered() ViewState {
	return ViewState{ZoomLevel: 1, Focal: c.viewport.Center()}
}

func (c *Controller) State() ViewState {
	return c.state
}

func (c *Controller) Viewport() params.Viewport {
	return c.viewport
}

// Transform is the target transform of the current state.
func (c *Controller) Transform() Transform {
	return c.last
}

// HandleClick handles a click on a county, or on the background when f is nil.
// It returns the new state.
func (c *Controller) HandleClick(f *county.Feature) ViewState {
	if f != nil && c.state.Centered != f {
		c.state = ViewState{
			Centered:  f,
			ZoomLevel: c.config.Level,
			Focal:     f.Centroid(),
		}
	} else {
		c.state = c.uncentered()
	}
	c.animate(c.state.Transform(c.viewport))
	return c.state
}

func (c *Controller) animate(to Transform) {
	from := c.last
	if cur, ok := c.animator.(currenter); ok {
		from = cur.Current()
	}
	c.last = to
	if c.animator != nil {
		c.animator.AnimateTransform(from, to, c.config.Duration, c.ease)
	}
}
