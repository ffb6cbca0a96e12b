package params

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Viewport is the size of the drawing surface, fixed when a map is opened.
type Viewport struct {
	Width  float64 `json:"width" mapstructure:"width"`
	Height float64 `json:"height" mapstructure:"height"`
}

func DefaultViewport() Viewport {
	return Viewport{Width: 960, Height: 600}
}

// Center is the middle of the surface, the focal point of the unzoomed view.
func (v Viewport) Center() orb.Point {
	return orb.Point{v.Width / 2, v.Height / 2}
}

// Valid reports whether both dimensions are positive.
func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0
}

func (v Viewport) String() string {
	return fmt.Sprintf("%gx%g", v.Width, v.Height)
}
