// Package render turns a classified county collection into drawable output:
// one filled shape per county, the legend, and the tooltip, as SVG or as an
// interactive HTML page.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/rotblauer/densitymap/classify"
	"github.com/rotblauer/densitymap/legend"
	"github.com/rotblauer/densitymap/params"
	"github.com/rotblauer/densitymap/types/county"
	"github.com/rotblauer/densitymap/zoom"
)

//go:embed templates
var templatesFS embed.FS

var templates = template.Must(template.New("").ParseFS(templatesFS, "templates/*.tmpl"))

// Shape is the drawable form of one county.
type Shape struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Density     string  `json:"density"`
	Level       float64 `json:"level"`
	Path        string  `json:"-"`
	Fill        string  `json:"fill"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"stroke_width"`
	Cursor      string  `json:"cursor"`
}

type Renderer struct {
	config  params.RenderConfig
	scale   classify.Scale
	shapes  []Shape
	byID    map[string]int
	entries []legend.Entry
}

// NewRenderer builds every shape up front. Fill colors and legend entries
// come from the same scale.
func NewRenderer(c *county.Collection, s classify.Scale, config params.RenderConfig) *Renderer {
	r := &Renderer{
		config:  config,
		scale:   s,
		shapes:  make([]Shape, 0, c.Len()),
		byID:    make(map[string]int, c.Len()),
		entries: legend.Entries(s),
	}
	for _, f := range c.Features() {
		level := s.ClassifyFeature(f)
		r.byID[f.ID] = len(r.shapes)
		r.shapes = append(r.shapes, Shape{
			ID:          f.ID,
			Name:        f.Name,
			Density:     f.DensityText(),
			Level:       level,
			Path:        f.PathData(config.Precision),
			Fill:        classify.ColorFor(level).String(),
			Stroke:      config.Stroke,
			StrokeWidth: config.StrokeWidth,
			Cursor:      config.Cursor,
		})
	}
	return r
}

func (r *Renderer) Shapes() []Shape {
	return r.shapes
}

func (r *Renderer) Shape(id string) (Shape, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Shape{}, false
	}
	return r.shapes[i], true
}

func (r *Renderer) Legend() []legend.Entry {
	return r.entries
}

func (r *Renderer) Scale() classify.Scale {
	return r.scale
}

// Document describes one rendered map.
type Document struct {
	Viewport  params.Viewport
	Transform zoom.Transform
	Legend    params.LegendConfig
}

type svgView struct {
	Viewport  params.Viewport
	Transform zoom.Transform
	Shapes    []Shape
	Legend    template.HTML
}

// WriteSVG writes a standalone SVG document of the map.
func (r *Renderer) WriteSVG(w io.Writer, doc Document) error {
	v, err := r.svgView(doc)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>`+"\n"); err != nil {
		return err
	}
	return templates.ExecuteTemplate(w, "map.svg.tmpl", v)
}

func (r *Renderer) svgView(doc Document) (svgView, error) {
	buf := new(bytes.Buffer)
	layout := legend.NewLayout(doc.Viewport, doc.Legend)
	if err := legend.Render(buf, layout, r.entries); err != nil {
		return svgView{}, fmt.Errorf("render legend: %w", err)
	}
	return svgView{
		Viewport:  doc.Viewport,
		Transform: doc.Transform,
		Shapes:    r.shapes,
		// Produced by the legend template, already escaped.
		Legend: template.HTML(buf.String()),
	}, nil
}

// Page describes the interactive HTML page.
type Page struct {
	Document
	Title string
	// SocketPath is where the page connects to receive frames and tooltips.
	SocketPath string
}

type pageView struct {
	Title      string
	SocketPath string
	Viewport   params.Viewport
	SVG        template.HTML
}

// WriteHTML writes the interactive page with the map inlined.
func (r *Renderer) WriteHTML(w io.Writer, p Page) error {
	v, err := r.svgView(p.Document)
	if err != nil {
		return err
	}
	svg := new(bytes.Buffer)
	if err := templates.ExecuteTemplate(svg, "map.svg.tmpl", v); err != nil {
		return fmt.Errorf("render svg: %w", err)
	}
	return templates.ExecuteTemplate(w, "page.html.tmpl", pageView{
		Title:      p.Title,
		SocketPath: p.SocketPath,
		Viewport:   p.Viewport,
		SVG:        template.HTML(svg.String()),
	})
}
