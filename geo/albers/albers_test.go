package albers

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func near(a, b orb.Point) bool {
	return math.Abs(a[0]-b[0]) < 1e-6 && math.Abs(a[1]-b[1]) < 1e-6
}

func TestProjection_CentersLandOnTranslate(t *testing.T) {
	p := Default()
	k := DefaultScale
	cases := []struct {
		name string
		in   orb.Point
		want orb.Point
	}{
		{"lower48", orb.Point{-96.6, 38.7}, orb.Point{480, 250}},
		{"alaska", orb.Point{-156, 58.5}, orb.Point{480 - 0.307*k, 250 + 0.201*k}},
		{"hawaii", orb.Point{-160, 19.9}, orb.Point{480 - 0.205*k, 250 + 0.212*k}},
	}
	for _, c := range cases {
		got := p.Point(c.in)
		if !near(got, c.want) {
			t.Errorf("%s: expected %v, got %v", c.name, c.want, got)
		}
	}
}

func TestProjection_Orientation(t *testing.T) {
	p := Default()
	west := p.Point(orb.Point{-120, 40})
	east := p.Point(orb.Point{-75, 40})
	if west[0] >= east[0] {
		t.Errorf("expected west of east, got %v %v", west, east)
	}
	north := p.Point(orb.Point{-96, 48})
	south := p.Point(orb.Point{-96, 30})
	if north[1] >= south[1] {
		t.Errorf("expected north above south (smaller y), got %v %v", north, south)
	}
}

func TestRegionFor(t *testing.T) {
	cases := map[Region]orb.Point{
		RegionLower48: {-89.4, 43.1},
		RegionAlaska:  {-149.9, 61.2},
		RegionHawaii:  {-157.8, 21.3},
	}
	for want, pt := range cases {
		if got := RegionFor(pt); got != want {
			t.Errorf("%v: expected %s, got %s", pt, want, got)
		}
	}
}

func TestProjection_GeometryDoesNotMutateInput(t *testing.T) {
	p := Default()
	poly := orb.Polygon{{{-97, 38}, {-96, 38}, {-96, 39}, {-97, 39}, {-97, 38}}}
	out := p.Geometry(poly).(orb.Polygon)
	if poly[0][0] != (orb.Point{-97, 38}) {
		t.Fatalf("input mutated: %v", poly[0][0])
	}
	if !near(out[0][0], p.Point(orb.Point{-97, 38})) {
		t.Errorf("unexpected projected vertex %v", out[0][0])
	}
	if p.Geometry(nil) != nil {
		t.Error("expected nil for nil geometry")
	}
}

func TestProjection_GeometryAcrossAntimeridian(t *testing.T) {
	p := Default()
	aleutians := orb.Polygon{{
		{172.5, 52.9}, {179.9, 51.4}, {-178, 51.7}, {-176.5, 51.9}, {172.5, 52.9},
	}}
	if got := RegionOf(aleutians); got != RegionAlaska {
		t.Fatalf("expected alaska, got %s", got)
	}
	out := p.Geometry(aleutians).(orb.Polygon)
	alaska := p.In(RegionAlaska)
	for i, pt := range aleutians[0] {
		want := alaska(pt)
		if !near(out[0][i], want) {
			t.Errorf("vertex %d: expected %v, got %v", i, want, out[0][i])
		}
		if out[0][i][0] < 0 || out[0][i][0] > 960 || out[0][i][1] < 0 || out[0][i][1] > 600 {
			t.Errorf("vertex %d projected off the map: %v", i, out[0][i])
		}
	}
}

func TestRegionOf(t *testing.T) {
	cases := []struct {
		geom orb.Geometry
		want Region
	}{
		{orb.Polygon{{{-97, 38}, {-96, 38}, {-96, 39}, {-97, 38}}}, RegionLower48},
		{orb.Polygon{{{-158, 21}, {-157, 21}, {-157, 22}, {-158, 21}}}, RegionHawaii},
		{orb.MultiPolygon{
			{{{-150, 61}, {-149, 61}, {-149, 62}, {-150, 61}}},
			{{{178, 51.5}, {179, 51.5}, {179, 52}, {178, 51.5}}},
		}, RegionAlaska},
		{orb.Point{-149.9, 61.2}, RegionAlaska},
	}
	for _, c := range cases {
		if got := RegionOf(c.geom); got != c.want {
			t.Errorf("%v: expected %s, got %s", c.geom, c.want, got)
		}
	}
}
