package topo

import (
	"errors"
	"os"
	"testing"

	"github.com/paulmach/orb"
	"github.com/tidwall/gjson"
)

func readTestTopology(t *testing.T) *Topology {
	t.Helper()
	data, err := os.ReadFile("testdata/two_squares.topojson")
	if err != nil {
		t.Fatal(err)
	}
	if !IsTopology(data) {
		t.Fatal("expected testdata to sniff as topology")
	}
	topology, err := Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	return topology
}

func TestTopology_Features(t *testing.T) {
	topology := readTestTopology(t)
	features, err := topology.Features("counties")
	if err != nil {
		t.Fatal(err)
	}
	if len(features) != 3 {
		t.Fatalf("expected 3 features, got %d", len(features))
	}

	west := features[0]
	if west.ID != "01001" {
		t.Errorf("expected string id preserved, got %q", west.ID)
	}
	if gjson.GetBytes(west.Properties, "county").String() != "West" {
		t.Errorf("unexpected properties %s", west.Properties)
	}
	wantWest := orb.Ring{{0, 0}, {0, 1}, {-1, 1}, {-1, 0}, {0, 0}}
	if got := west.Geometry.(orb.Polygon)[0]; !got.Equal(wantWest) {
		t.Errorf("west ring: expected %v, got %v", wantWest, got)
	}

	east := features[1]
	if east.ID != "1003" {
		t.Errorf("expected numeric id as string, got %q", east.ID)
	}
	wantEast := orb.Ring{{0, 1}, {0, 0}, {1, 0}, {1, 1}, {0, 1}}
	if got := east.Geometry.(orb.Polygon)[0]; !got.Equal(wantEast) {
		t.Errorf("east ring: expected %v, got %v", wantEast, got)
	}

	if features[2].Geometry != nil {
		t.Errorf("expected nil geometry for null type, got %v", features[2].Geometry)
	}
}

func TestTopology_QuantizedArcs(t *testing.T) {
	topology, err := Unmarshal([]byte(`{
		"type": "Topology",
		"transform": {"scale": [0.5, 0.5], "translate": [10, 20]},
		"objects": {"counties": {"type": "MultiPolygon", "arcs": [[[0]]]}},
		"arcs": [[[0, 0], [2, 0], [0, 2], [-2, 0], [0, -2]]]
	}`))
	if err != nil {
		t.Fatal(err)
	}
	features, err := topology.Features("counties")
	if err != nil {
		t.Fatal(err)
	}
	mp, ok := features[0].Geometry.(orb.MultiPolygon)
	if !ok {
		t.Fatalf("expected multipolygon, got %T", features[0].Geometry)
	}
	want := orb.Ring{{10, 20}, {11, 20}, {11, 21}, {10, 21}, {10, 20}}
	if !mp[0][0].Equal(want) {
		t.Errorf("expected %v, got %v", want, mp[0][0])
	}
}

func TestTopology_Errors(t *testing.T) {
	topology := readTestTopology(t)
	if _, err := topology.Features("states"); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("expected ErrObjectNotFound, got %v", err)
	}

	if _, err := Unmarshal([]byte(`{"type": "FeatureCollection", "features": []}`)); !errors.Is(err, ErrNotTopology) {
		t.Errorf("expected ErrNotTopology, got %v", err)
	}

	bad, err := Unmarshal([]byte(`{"type": "Topology", "objects": {"o": {"type": "Polygon", "arcs": [[7]]}}, "arcs": []}`))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := bad.Features("o"); !errors.Is(err, ErrArcIndex) {
		t.Errorf("expected ErrArcIndex, got %v", err)
	}

	line, err := Unmarshal([]byte(`{"type": "Topology", "objects": {"o": {"type": "LineString", "arcs": [0]}}, "arcs": [[[0,0],[1,1]]]}`))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := line.Features("o"); !errors.Is(err, ErrUnsupportedGeometry) {
		t.Errorf("expected ErrUnsupportedGeometry, got %v", err)
	}
}
