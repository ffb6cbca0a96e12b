// Package classify buckets county densities into six color levels.
//
// A Scale quantizes the domain [0, mean density] into six equal-width
// sub-ranges. Values at or above a boundary belong to the upper bucket, and
// values past the end of the domain clamp into the last one.
package classify

import (
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/rotblauer/densitymap/types/county"
)

// Levels are the scale's output values, one per bucket.
var Levels = []float64{0, 0.2, 0.4, 0.6, 0.8, 1}

// Buckets is the number of buckets a Scale partitions its domain into.
var Buckets = len(Levels)

type Scale struct {
	lo, hi     float64
	thresholds []float64
}

// NewScale partitions [lo, hi] into len(Levels) equal-width buckets.
func NewScale(lo, hi float64) Scale {
	n := Buckets - 1
	thresholds := make([]float64, n)
	for i := 0; i < n; i++ {
		thresholds[i] = (float64(i+1)*hi - float64(i-n)*lo) / float64(n+1)
	}
	return Scale{lo: lo, hi: hi, thresholds: thresholds}
}

// Build derives the scale from the mean of the present densities.
// Missing densities do not contribute to the mean. With no densities
// at all the mean, and so the domain, collapses to [0, 0].
func Build(densities []float64) Scale {
	mean, err := stats.Mean(densities)
	if err != nil {
		mean = 0
	}
	return NewScale(0, mean)
}

// BuildFrom builds the scale for a collection.
func BuildFrom(c *county.Collection) Scale {
	return Build(c.Densities())
}

// Mean is the upper end of the domain.
func (s Scale) Mean() float64 {
	return s.hi
}

func (s Scale) Domain() (lo, hi float64) {
	return s.lo, s.hi
}

// Thresholds returns a copy of the interior bucket boundaries, in order.
func (s Scale) Thresholds() []float64 {
	return append([]float64(nil), s.thresholds...)
}

// Bucket returns the bucket index for v.
func (s Scale) Bucket(v float64) int {
	return sort.Search(len(s.thresholds), func(i int) bool {
		return s.thresholds[i] > v
	})
}

// ClassifyValue returns the output level for a present density.
func (s Scale) ClassifyValue(v float64) float64 {
	return Levels[s.Bucket(v)]
}

// Classify returns the output level for a possibly missing density;
// missing densities classify as 0.
func (s Scale) Classify(v *float64) float64 {
	if v == nil {
		return s.ClassifyValue(0)
	}
	return s.ClassifyValue(*v)
}

// ClassifyFeature classifies a county by its density.
func (s Scale) ClassifyFeature(f *county.Feature) float64 {
	return s.Classify(f.Density)
}

// LevelIndex returns the bucket index of an output level.
func LevelIndex(level float64) (int, bool) {
	for i, l := range Levels {
		if l == level {
			return i, true
		}
	}
	return -1, false
}

// InvertExtent returns the domain extent [lo, hi) covered by an output level.
func (s Scale) InvertExtent(level float64) (lo, hi float64, ok bool) {
	i, ok := LevelIndex(level)
	if !ok {
		return 0, 0, false
	}
	lo, hi = s.lo, s.hi
	if i > 0 {
		lo = s.thresholds[i-1]
	}
	if i < len(s.thresholds) {
		hi = s.thresholds[i]
	}
	return lo, hi, true
}

func (s Scale) String() string {
	return fmt.Sprintf("quantize[%g, %g] -> %v", s.lo, s.hi, Levels)
}
