package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"strings"
	"sync"
	"testing"

	"github.com/paulmach/orb"
	"github.com/rotblauer/densitymap/loader"
	"github.com/rotblauer/densitymap/params"
	"github.com/rotblauer/densitymap/types/county"
	"github.com/rotblauer/densitymap/zoom"
)

func square(x, y, size float64) orb.Polygon {
	return orb.Polygon{{{x, y}, {x + size, y}, {x + size, y + size}, {x, y + size}, {x, y}}}
}

func newTestMap(t *testing.T) *Map {
	t.Helper()
	c := county.NewCollection([]*county.Feature{
		county.New("a", json.RawMessage(`{"county": "Adams", "density": 10}`), square(100, 100, 20), nil),
		county.New("b", json.RawMessage(`{"county": "Brown", "density": 30}`), square(400, 300, 20), nil),
		county.New("c", json.RawMessage(`{"county": "Clark"}`), square(700, 100, 20), nil),
	})
	m, err := Init(loader.Loaded("test", c, 0), params.DefaultMapConfig())
	if err != nil {
		t.Fatal(err)
	}
	return m
}

var testViewport = params.Viewport{Width: 960, Height: 600}

func TestInit(t *testing.T) {
	m := newTestMap(t)
	if m.Scale().Mean() != 20 {
		t.Errorf("expected mean of present densities 20, got %v", m.Scale().Mean())
	}
	if len(m.Legend()) != 6 {
		t.Errorf("expected 6 legend entries, got %d", len(m.Legend()))
	}
	if _, ok := m.Feature("b"); !ok {
		t.Error("expected feature b")
	}
	if m.Source() != "test" {
		t.Errorf("unexpected source %q", m.Source())
	}
}

func TestInit_Failed(t *testing.T) {
	cause := errors.New("connection refused")
	m, err := Init(loader.Failed("http://example.invalid/final.json", cause), nil)
	if m != nil {
		t.Error("expected no map after a failed load")
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected wrapped load error, got %v", err)
	}
}

func TestInit_BadZoomLevel(t *testing.T) {
	c := county.NewCollection([]*county.Feature{
		county.New("a", json.RawMessage(`{"county": "Adams", "density": 10}`), square(100, 100, 20), nil),
	})
	config := params.DefaultMapConfig()
	config.Zoom.Level = 1
	m, err := Init(loader.Loaded("test", c, 0), config)
	if m != nil || !errors.Is(err, params.ErrZoomLevel) {
		t.Errorf("expected ErrZoomLevel and no map, got %v %v", m, err)
	}
}

func TestLoad(t *testing.T) {
	config := params.DefaultMapConfig()
	config.Data.Source = "../loader/testdata/counties.geojson"
	m, err := Load(context.Background(), config)
	if err != nil {
		t.Fatal(err)
	}
	if m.Collection().Len() != 2 {
		t.Errorf("expected 2 features, got %d", m.Collection().Len())
	}

	config.Data.Source = "../loader/testdata/missing.json"
	if _, err := Load(context.Background(), config); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestSession_Click(t *testing.T) {
	m := newTestMap(t)
	anim := zoom.NewRecordingAnimator(zoom.Identity())
	s := m.NewSession(testViewport, anim)

	st, err := s.HandleClick("a")
	if err != nil {
		t.Fatal(err)
	}
	if st.State() != zoom.Centered || st.Centered.ID != "a" || st.ZoomLevel != 5 {
		t.Errorf("expected centered on a at 5x, got %+v", st)
	}
	// The centroid of a lands on the center of the viewport.
	a, _ := m.Feature("a")
	if got := s.Transform().Apply(a.Centroid()); got != testViewport.Center() {
		t.Errorf("expected centroid at %v, got %v", testViewport.Center(), got)
	}

	st, err = s.HandleClick("a")
	if err != nil {
		t.Fatal(err)
	}
	if st.State() != zoom.Uncentered || st.ZoomLevel != 1 {
		t.Errorf("expected reset after second click, got %+v", st)
	}

	s.HandleClick("b")
	st, _ = s.HandleClick("")
	if st.State() != zoom.Uncentered {
		t.Errorf("expected background click to reset, got %+v", st)
	}
	if len(anim.Calls) != 4 {
		t.Errorf("expected 4 animations, got %d", len(anim.Calls))
	}
}

func TestSession_UnknownFeature(t *testing.T) {
	m := newTestMap(t)
	s := m.NewSession(testViewport, nil)
	s.HandleClick("b")

	st, err := s.HandleClick("zz")
	if !errors.Is(err, ErrUnknownFeature) {
		t.Errorf("expected ErrUnknownFeature, got %v", err)
	}
	if st.Centered == nil || st.Centered.ID != "b" {
		t.Errorf("expected state untouched, got %+v", st)
	}
	if _, err := s.HandleHover("zz", orb.Point{}); !errors.Is(err, ErrUnknownFeature) {
		t.Errorf("expected ErrUnknownFeature, got %v", err)
	}
}

func TestSession_Hover(t *testing.T) {
	m := newTestMap(t)
	s := m.NewSession(testViewport, nil)

	u, err := s.HandleHover("c", orb.Point{10, 20})
	if err != nil {
		t.Fatal(err)
	}
	if u.HTML != "Clark<br/>no data" || u.Opacity != 0.9 {
		t.Errorf("unexpected tooltip %+v", u)
	}
	u = s.HandleUnhover()
	if u.Opacity != 0 || u.Left != 10 || u.Top != 20 {
		t.Errorf("unexpected hidden tooltip %+v", u)
	}
}

func TestSession_Independent(t *testing.T) {
	m := newTestMap(t)
	s1 := m.NewSession(testViewport, nil)
	s2 := m.NewSession(params.Viewport{}, nil)
	if s2.Viewport() != params.DefaultViewport() {
		t.Errorf("expected default viewport for invalid size, got %v", s2.Viewport())
	}
	s1.HandleClick("a")
	if s2.State().State() != zoom.Uncentered {
		t.Error("expected sessions not to share view state")
	}
}

func TestSession_Concurrent(t *testing.T) {
	m := newTestMap(t)
	s := m.NewSession(testViewport, nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := []string{"a", "b", "", "c"}[i%4]
			s.HandleClick(id)
			s.HandleHover("a", orb.Point{float64(i), 0})
			s.HandleUnhover()
		}(i)
	}
	wg.Wait()
	st := s.State()
	if (st.Centered == nil) != (st.ZoomLevel == 1) {
		t.Errorf("zoom level %v inconsistent with centered %v", st.ZoomLevel, st.Centered)
	}
}

func TestMap_Write(t *testing.T) {
	m := newTestMap(t)
	buf := new(bytes.Buffer)
	if err := m.WriteSVG(buf, testViewport); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `transform="translate(0,0)scale(1)"`) {
		t.Error("expected identity transform in svg")
	}
	buf.Reset()
	if err := m.WriteHTML(buf, testViewport, "/socket"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "<title>Population Density by County (pop/square mile)</title>") {
		t.Error("expected legend title as page title")
	}
}
