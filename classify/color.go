package classify

import (
	"fmt"
	"math"
)

// Color is an opaque sRGB color. It implements image/color.Color.
type Color struct {
	R, G, B uint8
}

func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R) * 0x101
	g = uint32(c.G) * 0x101
	b = uint32(c.B) * 0x101
	return r, g, b, 0xffff
}

// String formats the color as a CSS rgb() value.
func (c Color) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Reds is the nine-class ColorBrewer sequential red scheme, light to dark.
var Reds = []Color{
	{0xff, 0xf5, 0xf0},
	{0xfe, 0xe0, 0xd2},
	{0xfc, 0xbb, 0xa1},
	{0xfc, 0x92, 0x72},
	{0xfb, 0x6a, 0x4a},
	{0xef, 0x3b, 0x2c},
	{0xcb, 0x18, 0x1d},
	{0xa5, 0x0f, 0x15},
	{0x67, 0x00, 0x0d},
}

// ColorFor maps t in [0, 1] onto the Reds ramp: 0 is near white,
// 1 the darkest red. Values outside [0, 1] are clamped.
func ColorFor(t float64) Color {
	r := make([]float64, len(Reds))
	g := make([]float64, len(Reds))
	b := make([]float64, len(Reds))
	for i, c := range Reds {
		r[i], g[i], b[i] = float64(c.R), float64(c.G), float64(c.B)
	}
	return Color{
		R: channel(basisSpline(r, t)),
		G: channel(basisSpline(g, t)),
		B: channel(basisSpline(b, t)),
	}
}

func channel(v float64) uint8 {
	v = math.Floor(v + 0.5)
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// basisSpline evaluates a uniform cubic B-spline through values at t in [0, 1].
// The end segments use reflected phantom points so the curve starts and ends
// exactly on the first and last values.
func basisSpline(values []float64, t float64) float64 {
	n := len(values) - 1
	var i int
	switch {
	case t <= 0:
		t = 0
		i = 0
	case t >= 1:
		t = 1
		i = n - 1
	default:
		i = int(math.Floor(t * float64(n)))
	}
	v1, v2 := values[i], values[i+1]
	v0 := 2*v1 - v2
	if i > 0 {
		v0 = values[i-1]
	}
	v3 := 2*v2 - v1
	if i < n-1 {
		v3 = values[i+2]
	}
	return basis((t-float64(i)/float64(n))*float64(n), v0, v1, v2, v3)
}

func basis(t1, v0, v1, v2, v3 float64) float64 {
	t2 := t1 * t1
	t3 := t2 * t1
	return ((1-3*t1+3*t2-t3)*v0 +
		(4-6*t2+3*t3)*v1 +
		(1+3*t1+3*t2-3*t3)*v2 +
		t3*v3) / 6
}

// LevelColors returns the color of every output level, in order.
func LevelColors() []Color {
	out := make([]Color, len(Levels))
	for i, l := range Levels {
		out[i] = ColorFor(l)
	}
	return out
}
