// Package topo decodes TopoJSON topologies into orb geometries.
//
// Only the parts of the format needed for polygon datasets are supported:
// quantized (delta-encoded) and unquantized arcs, Polygon, MultiPolygon
// and GeometryCollection objects, and null geometries.
package topo

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/tidwall/gjson"
)

var (
	ErrNotTopology         = errors.New("not a topology")
	ErrObjectNotFound      = errors.New("topology object not found")
	ErrUnsupportedGeometry = errors.New("unsupported topology geometry")
	ErrArcIndex            = errors.New("arc index out of range")
)

type Topology struct {
	Type      string               `json:"type"`
	Transform *Transform           `json:"transform,omitempty"`
	Objects   map[string]*Geometry `json:"objects"`
	Arcs      [][][]float64        `json:"arcs"`
}

// Transform dequantizes integer arc positions.
type Transform struct {
	Scale     [2]float64 `json:"scale"`
	Translate [2]float64 `json:"translate"`
}

type Geometry struct {
	Type       string          `json:"type"`
	ID         json.RawMessage `json:"id,omitempty"`
	Properties json.RawMessage `json:"properties,omitempty"`
	Arcs       json.RawMessage `json:"arcs,omitempty"`
	Geometries []*Geometry     `json:"geometries,omitempty"`
}

// Feature is a decoded object geometry with its raw properties.
type Feature struct {
	ID         string
	Properties json.RawMessage
	Geometry   orb.Geometry
}

// IsTopology reports whether data looks like a TopoJSON document.
func IsTopology(data []byte) bool {
	return gjson.GetBytes(data, "type").String() == "Topology"
}

func Unmarshal(data []byte) (*Topology, error) {
	t := &Topology{}
	if err := json.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("decode topology: %w", err)
	}
	if t.Type != "Topology" {
		return nil, fmt.Errorf("%w: type=%q", ErrNotTopology, t.Type)
	}
	return t, nil
}

// Features decodes the named object into a flat list of features.
// A GeometryCollection yields one feature per member geometry;
// any other object yields exactly one feature.
func (t *Topology) Features(object string) ([]*Feature, error) {
	obj, ok := t.Objects[object]
	if !ok || obj == nil {
		return nil, fmt.Errorf("%w: %q", ErrObjectNotFound, object)
	}
	arcs := t.decodeArcs()

	members := []*Geometry{obj}
	if obj.Type == "GeometryCollection" {
		members = obj.Geometries
	}
	out := make([]*Feature, 0, len(members))
	for i, g := range members {
		geom, err := g.decode(arcs)
		if err != nil {
			return nil, fmt.Errorf("object %q geometry %d: %w", object, i, err)
		}
		out = append(out, &Feature{
			ID:         idString(g.ID),
			Properties: g.Properties,
			Geometry:   geom,
		})
	}
	return out, nil
}

func idString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	return gjson.ParseBytes(raw).String()
}

// decodeArcs returns absolute, dequantized arc positions.
func (t *Topology) decodeArcs() [][]orb.Point {
	out := make([][]orb.Point, len(t.Arcs))
	for i, arc := range t.Arcs {
		pts := make([]orb.Point, 0, len(arc))
		var x, y float64
		for _, pos := range arc {
			if len(pos) < 2 {
				continue
			}
			if t.Transform == nil {
				pts = append(pts, orb.Point{pos[0], pos[1]})
				continue
			}
			x += pos[0]
			y += pos[1]
			pts = append(pts, orb.Point{
				x*t.Transform.Scale[0] + t.Transform.Translate[0],
				y*t.Transform.Scale[1] + t.Transform.Translate[1],
			})
		}
		out[i] = pts
	}
	return out
}

func (g *Geometry) decode(arcs [][]orb.Point) (orb.Geometry, error) {
	switch g.Type {
	case "", "null":
		return nil, nil
	case "Polygon":
		var idx [][]int
		if err := json.Unmarshal(g.Arcs, &idx); err != nil {
			return nil, fmt.Errorf("polygon arcs: %w", err)
		}
		return polygon(arcs, idx)
	case "MultiPolygon":
		var idx [][][]int
		if err := json.Unmarshal(g.Arcs, &idx); err != nil {
			return nil, fmt.Errorf("multipolygon arcs: %w", err)
		}
		mp := make(orb.MultiPolygon, 0, len(idx))
		for _, p := range idx {
			poly, err := polygon(arcs, p)
			if err != nil {
				return nil, err
			}
			mp = append(mp, poly)
		}
		return mp, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedGeometry, g.Type)
	}
}

func polygon(arcs [][]orb.Point, rings [][]int) (orb.Polygon, error) {
	poly := make(orb.Polygon, 0, len(rings))
	for _, r := range rings {
		ring, err := stitch(arcs, r)
		if err != nil {
			return nil, err
		}
		poly = append(poly, ring)
	}
	return poly, nil
}

// stitch joins arcs into a closed ring. Consecutive arcs share an endpoint,
// which is kept once. A negative index ~i refers to arc i reversed.
func stitch(arcs [][]orb.Point, indexes []int) (orb.Ring, error) {
	var ring orb.Ring
	for _, i := range indexes {
		reversed := i < 0
		if reversed {
			i = ^i
		}
		if i >= len(arcs) {
			return nil, fmt.Errorf("%w: %d", ErrArcIndex, i)
		}
		arc := arcs[i]
		if len(ring) > 0 {
			ring = ring[:len(ring)-1]
		}
		if reversed {
			for k := len(arc) - 1; k >= 0; k-- {
				ring = append(ring, arc[k])
			}
		} else {
			ring = append(ring, arc...)
		}
	}
	if len(ring) > 0 && !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return ring, nil
}
