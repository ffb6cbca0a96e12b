// Package legend derives the density legend from a classify.Scale:
// one swatch and one range label per bucket, under a title line.
package legend

import (
	"html/template"
	"io"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/rotblauer/densitymap/classify"
	"github.com/rotblauer/densitymap/params"
	"github.com/shopspring/decimal"
)

// Entry is one legend swatch.
type Entry struct {
	Level float64        `json:"level"`
	Label string         `json:"label"`
	Color classify.Color `json:"-"`
	Fill  string         `json:"fill"`
}

// formatBound renders v with one decimal digit. Exact halves round away
// from zero; everything else rounds to the nearer digit of its exact value.
func formatBound(v float64) string {
	// 1074 digits hold any float64 exactly.
	d, err := decimal.NewFromString(strconv.FormatFloat(v, 'f', 1074, 64))
	if err != nil {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return d.StringFixed(1)
}

// Labels returns one label per bucket. The first bucket is labeled with
// its upper bound ("<x"), every other bucket with its lower bound (">y").
func Labels(s classify.Scale) []string {
	labels := make([]string, len(classify.Levels))
	for i, level := range classify.Levels {
		lo, hi, _ := s.InvertExtent(level)
		if i == 0 {
			labels[i] = "<" + formatBound(hi)
			continue
		}
		labels[i] = ">" + formatBound(lo)
	}
	return labels
}

// Entries pairs each label with its bucket color.
func Entries(s classify.Scale) []Entry {
	labels := Labels(s)
	out := make([]Entry, len(labels))
	for i, level := range classify.Levels {
		c := classify.ColorFor(level)
		out[i] = Entry{
			Level: level,
			Label: labels[i],
			Color: c,
			Fill:  c.String(),
		}
	}
	return out
}

type Rect struct {
	X, Y, Width, Height float64
}

// Layout is the resolved geometry of the legend for one viewport.
type Layout struct {
	Panel        Rect
	CornerRadius float64
	Swatches     []Rect
	Labels       []orb.Point
	LabelSize    float64
	Title        string
	TitleAt      orb.Point
	TitleSize    float64
}

func NewLayout(v params.Viewport, c params.LegendConfig) Layout {
	panel := Rect{
		X:      v.Width * c.PanelXFrac,
		Y:      v.Height * c.PanelYFrac,
		Width:  c.PanelWidth,
		Height: c.PanelHeight,
	}
	l := Layout{
		Panel:        panel,
		CornerRadius: c.CornerRadius,
		Swatches:     make([]Rect, classify.Buckets),
		Labels:       make([]orb.Point, classify.Buckets),
		LabelSize:    c.LabelFontSize,
		Title:        c.Title,
		TitleAt:      orb.Point{panel.X + c.TitleInsetX, panel.Y + c.TitleOffsetY},
		TitleSize:    c.TitleFontSize,
	}
	for i := range l.Swatches {
		l.Swatches[i] = Rect{
			X:      panel.X + c.SwatchWidth*float64(i) + c.SwatchInsetX,
			Y:      panel.Y + c.SwatchOffsetY,
			Width:  c.SwatchWidth,
			Height: c.SwatchHeight,
		}
		l.Labels[i] = orb.Point{
			panel.X + c.SwatchWidth*float64(i) + c.LabelInsetX,
			panel.Y + c.LabelOffsetY,
		}
	}
	return l
}

type item struct {
	Swatch Rect
	At     orb.Point
	Entry  Entry
}

type view struct {
	Layout
	Items []item
}

var tmpl = template.Must(template.New("legend").Parse(`<rect id="legend-container" x="{{.Panel.X}}" y="{{.Panel.Y}}" rx="{{.CornerRadius}}" ry="{{.CornerRadius}}" width="{{.Panel.Width}}" height="{{.Panel.Height}}"></rect>
{{- range .Items}}
<g class="legend"><rect x="{{.Swatch.X}}" y="{{.Swatch.Y}}" width="{{.Swatch.Width}}" height="{{.Swatch.Height}}" fill="{{.Entry.Fill}}" opacity="1"></rect><text x="{{index .At 0}}" y="{{index .At 1}}" font-size="{{$.LabelSize}}">{{.Entry.Label}}</text></g>
{{- end}}
<text class="legend-title" x="{{index .TitleAt 0}}" y="{{index .TitleAt 1}}" font-size="{{.TitleSize}}" font-weight="bold">{{.Title}}</text>
`))

// Render writes the legend as SVG elements. It draws min(len(swatches),
// len(entries)) swatches.
func Render(w io.Writer, l Layout, entries []Entry) error {
	n := len(entries)
	if len(l.Swatches) < n {
		n = len(l.Swatches)
	}
	v := view{Layout: l, Items: make([]item, n)}
	for i := 0; i < n; i++ {
		v.Items[i] = item{Swatch: l.Swatches[i], At: l.Labels[i], Entry: entries[i]}
	}
	return tmpl.Execute(w, v)
}
