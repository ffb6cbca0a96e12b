package zoom

import (
	"math"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/rotblauer/densitymap/params"
)

// Transform is a view transform: uniform scale K followed by translation (X, Y).
// A drawing-space point p lands on screen at (X + K*p.x, Y + K*p.y).
type Transform struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	K float64 `json:"k"`
}

func Identity() Transform {
	return Transform{K: 1}
}

// Target is translate(center)·scale(k)·translate(-focal): it magnifies by k
// and puts focal at the center of the viewport.
func Target(v params.Viewport, focal orb.Point, k float64) Transform {
	c := v.Center()
	return Transform{
		X: c[0] - k*focal[0],
		Y: c[1] - k*focal[1],
		K: k,
	}
}

func (t Transform) Apply(p orb.Point) orb.Point {
	return orb.Point{t.X + t.K*p[0], t.Y + t.K*p[1]}
}

// Invert maps a screen point back into drawing space.
func (t Transform) Invert(p orb.Point) orb.Point {
	return orb.Point{(p[0] - t.X) / t.K, (p[1] - t.Y) / t.K}
}

// String formats the transform as an SVG transform attribute.
func (t Transform) String() string {
	buf := make([]byte, 0, 48)
	buf = append(buf, "translate("...)
	buf = strconv.AppendFloat(buf, t.X, 'f', -1, 64)
	buf = append(buf, ',')
	buf = strconv.AppendFloat(buf, t.Y, 'f', -1, 64)
	buf = append(buf, ")scale("...)
	buf = strconv.AppendFloat(buf, t.K, 'f', -1, 64)
	buf = append(buf, ')')
	return string(buf)
}

// Interpolate blends a and b component-wise at t in [0, 1].
func Interpolate(a, b Transform, t float64) Transform {
	return Transform{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		K: a.K + (b.K-a.K)*t,
	}
}

// Near reports whether two transforms are equal within eps.
func Near(a, b Transform, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps && math.Abs(a.K-b.K) <= eps
}

// Ease maps normalized time onto normalized progress.
type Ease func(t float64) float64

func EaseLinear(t float64) float64 {
	return t
}

// EaseCubicOut decelerates to a stop: fast at first, flat at the end.
func EaseCubicOut(t float64) float64 {
	t--
	return t*t*t + 1
}
