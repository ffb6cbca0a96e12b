// Package albers implements the Albers USA composite projection:
// a conic equal-area projection of the lower 48 states
// with Alaska and Hawaii drawn as insets beneath it.
//
// Constants and inset offsets follow the conventional web-map
// composition (scale 1070, translate [480, 250] for a 960x500 surface).
package albers

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

const (
	DefaultScale      = 1070.0
	DefaultTranslateX = 480.0
	DefaultTranslateY = 250.0
)

const radians = math.Pi / 180

// conic is a configured conic equal-area projection.
// Input points are [lon, lat] in degrees, output points are planar pixels.
type conic struct {
	rotate    float64 // degrees added to longitude before projecting
	n, c, r0  float64
	k, tx, ty float64

	// raw projected center, scaled in project
	centerX, centerY float64
}

func newConic(rotate, centerLon, centerLat, parallelLo, parallelHi, k, tx, ty float64) *conic {
	sy0 := math.Sin(parallelLo * radians)
	n := (sy0 + math.Sin(parallelHi*radians)) / 2
	c := 1 + sy0*(2*n-sy0)
	cp := &conic{
		rotate: rotate,
		n:      n,
		c:      c,
		r0:     math.Sqrt(c) / n,
		k:      k,
		tx:     tx,
		ty:     ty,
	}
	// The center is projected unrotated; it shifts the whole plane
	// so that the center lands on the translate point.
	cp.centerX, cp.centerY = cp.raw(centerLon*radians, centerLat*radians)
	return cp
}

func (cp *conic) raw(lambda, phi float64) (x, y float64) {
	r := math.Sqrt(cp.c-2*cp.n*math.Sin(phi)) / cp.n
	lambda *= cp.n
	return r * math.Sin(lambda), cp.r0 - r*math.Cos(lambda)
}

func (cp *conic) project(p orb.Point) orb.Point {
	lambda := wrapLongitude((p[0] + cp.rotate) * radians)
	x, y := cp.raw(lambda, p[1]*radians)
	return orb.Point{
		cp.tx - cp.k*cp.centerX + cp.k*x,
		cp.ty + cp.k*cp.centerY - cp.k*y,
	}
}

func wrapLongitude(lambda float64) float64 {
	if lambda > math.Pi {
		return lambda - 2*math.Pi
	}
	if lambda < -math.Pi {
		return lambda + 2*math.Pi
	}
	return lambda
}

// Region names the sub-projection used for a coordinate.
type Region int

const (
	RegionLower48 Region = iota
	RegionAlaska
	RegionHawaii
)

func (r Region) String() string {
	switch r {
	case RegionAlaska:
		return "alaska"
	case RegionHawaii:
		return "hawaii"
	default:
		return "lower48"
	}
}

// Projection is the composite Albers USA projection.
type Projection struct {
	Scale      float64
	TranslateX float64
	TranslateY float64

	lower48 *conic
	alaska  *conic
	hawaii  *conic
}

// New returns a composite projection at scale k centered on (tx, ty).
func New(k, tx, ty float64) *Projection {
	return &Projection{
		Scale:      k,
		TranslateX: tx,
		TranslateY: ty,
		lower48:    newConic(96, -0.6, 38.7, 29.5, 45.5, k, tx, ty),
		alaska:     newConic(154, -2, 58.5, 55, 65, k*0.35, tx-0.307*k, ty+0.201*k),
		hawaii:     newConic(157, -3, 19.9, 8, 18, k, tx-0.205*k, ty+0.212*k),
	}
}

// Default returns the projection with the conventional scale and translate.
func Default() *Projection {
	return New(DefaultScale, DefaultTranslateX, DefaultTranslateY)
}

// RegionFor classifies a geographic [lon, lat] point.
// Alaska includes the Aleutians west of the antimeridian.
func RegionFor(p orb.Point) Region {
	lon, lat := p[0], p[1]
	if lat >= 50 && (lon <= -129 || lon >= 170) {
		return RegionAlaska
	}
	if lat < 24 && lon < -150 && lon > -179 {
		return RegionHawaii
	}
	return RegionLower48
}

// Point projects one geographic point, choosing its sub-projection by location.
func (p *Projection) Point(pt orb.Point) orb.Point {
	return p.In(RegionFor(pt))(pt)
}

// In returns the orb.Projection for one sub-projection.
func (p *Projection) In(r Region) orb.Projection {
	switch r {
	case RegionAlaska:
		return p.alaska.project
	case RegionHawaii:
		return p.hawaii.project
	default:
		return p.lower48.project
	}
}

// Geometry projects a whole geometry with a single sub-projection so that
// a county's rings are never split across insets. The region is the one
// most of its vertices fall in; a bound center would land near longitude 0
// for counties crossing the antimeridian.
func (p *Projection) Geometry(g orb.Geometry) orb.Geometry {
	if g == nil {
		return nil
	}
	g = orb.Clone(g)
	return project.Geometry(g, p.In(RegionOf(g)))
}

// RegionOf returns the region holding the most vertices of g.
// Ties go to the lower region.
func RegionOf(g orb.Geometry) Region {
	var votes [RegionHawaii + 1]int
	project.Geometry(g, func(pt orb.Point) orb.Point {
		votes[RegionFor(pt)]++
		return pt
	})
	best := RegionLower48
	for r := range votes {
		if votes[r] > votes[best] {
			best = Region(r)
		}
	}
	return best
}
