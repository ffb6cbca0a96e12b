package webd

import (
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/rotblauer/densitymap/app"
	"github.com/rotblauer/densitymap/loader"
	"github.com/rotblauer/densitymap/params"
	"github.com/rotblauer/densitymap/types/county"
)

func square(x, y, size float64) orb.Polygon {
	return orb.Polygon{{{x, y}, {x + size, y}, {x + size, y + size}, {x, y + size}, {x, y}}}
}

// newTestMap builds a three-county map: Adams (10), Brown (30), and Clark
// with no density. The mean is 20.
func newTestMap(t *testing.T, config *params.MapConfig) *app.Map {
	t.Helper()
	c := county.NewCollection([]*county.Feature{
		county.New("a", json.RawMessage(`{"county": "Adams", "density": 10}`), square(100, 100, 20), nil),
		county.New("b", json.RawMessage(`{"county": "Brown", "density": 30}`), square(400, 300, 20), nil),
		county.New("c", json.RawMessage(`{"county": "Clark"}`), square(700, 100, 20), nil),
	})
	m, err := app.Init(loader.Loaded("test", c, 0), config)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

// newTestWebDaemon creates a WebDaemon over the test map.
// Animations are short so socket tests see them finish.
func newTestWebDaemon(t *testing.T) *WebDaemon {
	t.Helper()
	accessLog = io.Discard
	config := params.DefaultTestWebDaemonConfig()
	config.Map.Zoom.Duration = 50 * time.Millisecond
	config.Map.Zoom.FrameRate = 100
	d, err := NewWebDaemon(config, newTestMap(t, config.Map))
	if err != nil {
		t.Fatal(err)
	}
	return d
}

var testTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)
