// Package app wires a loaded dataset into a ready map: the classifier, the
// renderer and legend built once, and per-viewer sessions that own their
// own zoom state and tooltip.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/rotblauer/densitymap/classify"
	"github.com/rotblauer/densitymap/geo/albers"
	"github.com/rotblauer/densitymap/legend"
	"github.com/rotblauer/densitymap/loader"
	"github.com/rotblauer/densitymap/params"
	"github.com/rotblauer/densitymap/render"
	"github.com/rotblauer/densitymap/types/county"
	"github.com/rotblauer/densitymap/zoom"
)

var ErrUnknownFeature = errors.New("unknown feature")

// Map is an initialized map. It is immutable and safe to share between
// sessions.
type Map struct {
	config     *params.MapConfig
	source     string
	collection *county.Collection
	scale      classify.Scale
	renderer   *render.Renderer
	logger     *slog.Logger
}

// Init consumes a load result. A failed load is logged and returned;
// no map exists in that case.
func Init(res loader.Result, config *params.MapConfig) (*Map, error) {
	if config == nil {
		config = params.DefaultMapConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if !res.OK() {
		err := res.Err
		if err == nil {
			err = errors.New("no features loaded")
		}
		slog.Error("Failed to load dataset", "source", res.Source, "error", err)
		return nil, fmt.Errorf("load %s: %w", res.Source, err)
	}
	scale := classify.BuildFrom(res.Collection)
	m := &Map{
		config:     config,
		source:     res.Source,
		collection: res.Collection,
		scale:      scale,
		renderer:   render.NewRenderer(res.Collection, scale, config.Render),
		logger:     slog.With("map", res.Source),
	}
	m.logger.Info("Map ready", "features", res.Collection.Len(), "scale", scale)
	return m, nil
}

// Projection is the projection configured for maps built from config.
func Projection(config *params.MapConfig) *albers.Projection {
	p := config.Projection
	return albers.New(p.Scale, p.TranslateX, p.TranslateY)
}

// Load fetches the configured dataset, bounded by the configured timeout,
// and initializes the map from it.
func Load(ctx context.Context, config *params.MapConfig) (*Map, error) {
	if config == nil {
		config = params.DefaultMapConfig()
	}
	if config.Data.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Data.Timeout)
		defer cancel()
	}
	res := loader.Load(ctx, config.Data.Source, config.Data.Object, Projection(config))
	return Init(res, config)
}

func (m *Map) Config() *params.MapConfig {
	return m.config
}

func (m *Map) Source() string {
	return m.source
}

func (m *Map) Collection() *county.Collection {
	return m.collection
}

func (m *Map) Feature(id string) (*county.Feature, bool) {
	return m.collection.Get(id)
}

func (m *Map) Scale() classify.Scale {
	return m.scale
}

func (m *Map) Legend() []legend.Entry {
	return m.renderer.Legend()
}

func (m *Map) Renderer() *render.Renderer {
	return m.renderer
}

// Document is the static document for viewport v under transform t.
func (m *Map) Document(v params.Viewport, t zoom.Transform) render.Document {
	return render.Document{
		Viewport:  v,
		Transform: t,
		Legend:    m.config.Legend,
	}
}

// WriteSVG writes the unzoomed map for viewport v.
func (m *Map) WriteSVG(w io.Writer, v params.Viewport) error {
	return m.renderer.WriteSVG(w, m.Document(v, zoom.Identity()))
}

// WriteHTML writes the interactive page for viewport v. The page connects
// to socketPath for frames and tooltips.
func (m *Map) WriteHTML(w io.Writer, v params.Viewport, socketPath string) error {
	return m.renderer.WriteHTML(w, render.Page{
		Document:   m.Document(v, zoom.Identity()),
		Title:      m.config.Legend.Title,
		SocketPath: socketPath,
	})
}
