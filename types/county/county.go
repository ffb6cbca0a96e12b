package county

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"github.com/rotblauer/densitymap/types/topo"
	"github.com/tidwall/gjson"
)

const (
	NameProperty    = "county"
	DensityProperty = "density"
)

// Projector maps geographic geometries onto the drawing plane.
type Projector interface {
	Geometry(g orb.Geometry) orb.Geometry
}

// Feature is one county. It is never modified after load.
type Feature struct {
	ID      string
	Name    string
	Density *float64

	Properties json.RawMessage
	Geographic orb.Geometry
	Projected  orb.Geometry

	centroid orb.Point
}

// New builds a feature from raw properties. A nil projector means geom is
// already in drawing coordinates.
func New(id string, props json.RawMessage, geom orb.Geometry, proj Projector) *Feature {
	f := &Feature{
		ID:         id,
		Name:       gjson.GetBytes(props, NameProperty).String(),
		Density:    densityOf(props),
		Properties: props,
		Geographic: geom,
	}
	f.Projected = geom
	if geom != nil && proj != nil {
		f.Projected = proj.Geometry(geom)
	}
	if f.Projected != nil {
		f.centroid, _ = planar.CentroidArea(f.Projected)
	}
	return f
}

// densityOf returns the density property, or nil when it is absent, null,
// or not a finite number. Numeric strings such as "12.5" count as numbers.
func densityOf(props json.RawMessage) *float64 {
	res := gjson.GetBytes(props, DensityProperty)
	var v float64
	switch res.Type {
	case gjson.Number:
		v = res.Float()
	case gjson.String:
		s := strings.TrimSpace(res.Str)
		if s == "" {
			return nil
		}
		var err error
		if v, err = strconv.ParseFloat(s, 64); err != nil {
			return nil
		}
	default:
		return nil
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// HasDensity reports whether the county carries a density value.
func (f *Feature) HasDensity() bool {
	return f.Density != nil
}

// DensityOrZero is the value used for coloring: missing densities count as 0.
func (f *Feature) DensityOrZero() float64 {
	if f.Density == nil {
		return 0
	}
	return *f.Density
}

// Centroid is the area-weighted centroid of the projected shape.
func (f *Feature) Centroid() orb.Point {
	return f.centroid
}

// DensityText is the raw density as shown in the tooltip.
func (f *Feature) DensityText() string {
	if f.Density == nil {
		return "no data"
	}
	return strconv.FormatFloat(*f.Density, 'f', -1, 64)
}

func (f *Feature) String() string {
	return fmt.Sprintf("%s (%s)", f.Name, f.ID)
}

// PathData renders the projected geometry as SVG path data, one subpath per
// ring. The closing vertex of each ring is replaced by Z.
// Precision is the number of decimals kept; -1 keeps the shortest exact form.
func (f *Feature) PathData(precision int) string {
	var buf []byte
	switch g := f.Projected.(type) {
	case orb.Polygon:
		buf = appendPolygon(buf, g, precision)
	case orb.MultiPolygon:
		for _, p := range g {
			buf = appendPolygon(buf, p, precision)
		}
	case orb.Ring:
		buf = appendRing(buf, g, precision)
	}
	return string(buf)
}

func appendPolygon(buf []byte, p orb.Polygon, precision int) []byte {
	for _, r := range p {
		buf = appendRing(buf, r, precision)
	}
	return buf
}

func appendRing(buf []byte, r orb.Ring, precision int) []byte {
	n := len(r)
	if n > 1 && r.Closed() {
		n--
	}
	if n == 0 {
		return buf
	}
	for i := 0; i < n; i++ {
		if i == 0 {
			buf = append(buf, 'M')
		} else {
			buf = append(buf, 'L')
		}
		buf = strconv.AppendFloat(buf, r[i][0], 'f', precision, 64)
		buf = append(buf, ',')
		buf = strconv.AppendFloat(buf, r[i][1], 'f', precision, 64)
	}
	return append(buf, 'Z')
}

// Collection is the ordered, immutable set of loaded counties.
type Collection struct {
	features []*Feature
	byID     map[string]*Feature
}

// NewCollection indexes features by id. Missing or duplicate ids are
// replaced with a positional id.
func NewCollection(features []*Feature) *Collection {
	c := &Collection{
		features: features,
		byID:     make(map[string]*Feature, len(features)),
	}
	for i, f := range features {
		if _, dup := c.byID[f.ID]; f.ID == "" || dup {
			f.ID = "f" + strconv.Itoa(i)
		}
		c.byID[f.ID] = f
	}
	return c
}

// FromTopo builds a collection from decoded topology features.
func FromTopo(in []*topo.Feature, proj Projector) *Collection {
	features := make([]*Feature, 0, len(in))
	for _, tf := range in {
		features = append(features, New(tf.ID, tf.Properties, tf.Geometry, proj))
	}
	return NewCollection(features)
}

// FromGeoJSON builds a collection from a GeoJSON feature collection.
func FromGeoJSON(fc *geojson.FeatureCollection, proj Projector) (*Collection, error) {
	features := make([]*Feature, 0, len(fc.Features))
	for _, gf := range fc.Features {
		props, err := json.Marshal(gf.Properties)
		if err != nil {
			return nil, fmt.Errorf("marshal properties: %w", err)
		}
		id := ""
		if gf.ID != nil {
			id = fmt.Sprint(gf.ID)
		}
		features = append(features, New(id, props, gf.Geometry, proj))
	}
	return NewCollection(features), nil
}

func (c *Collection) Len() int {
	return len(c.features)
}

// Features returns the counties in load order.
func (c *Collection) Features() []*Feature {
	return c.features
}

func (c *Collection) Get(id string) (*Feature, bool) {
	f, ok := c.byID[id]
	return f, ok
}

// Contains reports whether f is a member of the collection (by identity).
func (c *Collection) Contains(f *Feature) bool {
	if f == nil {
		return false
	}
	g, ok := c.byID[f.ID]
	return ok && g == f
}

// Densities returns the present density values, skipping counties without one.
func (c *Collection) Densities() []float64 {
	out := make([]float64, 0, len(c.features))
	for _, f := range c.features {
		if f.Density != nil {
			out = append(out, *f.Density)
		}
	}
	return out
}
