package render

import (
	"html"
	"time"

	"github.com/paulmach/orb"
	"github.com/rotblauer/densitymap/params"
	"github.com/rotblauer/densitymap/types/county"
)

// TooltipUpdate is a transition of the tooltip box. Left and Top are page
// pixels; HTML is ready to be set as the box's inner HTML.
type TooltipUpdate struct {
	Opacity  float64       `json:"opacity"`
	Duration time.Duration `json:"duration"`
	HTML     string        `json:"html,omitempty"`
	Left     float64       `json:"left"`
	Top      float64       `json:"top"`
}

// Visible reports whether the tooltip ends the transition on screen.
func (u TooltipUpdate) Visible() bool {
	return u.Opacity > 0
}

// Tooltip tracks the hover box for one viewer. Hiding keeps the last text
// and position so the box fades out in place.
type Tooltip struct {
	config params.TooltipConfig
	last   TooltipUpdate
}

func NewTooltip(config params.TooltipConfig) *Tooltip {
	return &Tooltip{config: config}
}

// TooltipHTML is the tooltip body for f: the county name, a line break,
// then its density.
func TooltipHTML(f *county.Feature) string {
	return html.EscapeString(f.Name) + "<br/>" + html.EscapeString(f.DensityText())
}

// Show fades the tooltip in at pointer with f's name and density.
func (t *Tooltip) Show(f *county.Feature, pointer orb.Point) TooltipUpdate {
	t.last = TooltipUpdate{
		Opacity:  t.config.Opacity,
		Duration: t.config.ShowDuration,
		HTML:     TooltipHTML(f),
		Left:     pointer[0],
		Top:      pointer[1],
	}
	return t.last
}

func (t *Tooltip) Hide() TooltipUpdate {
	t.last.Opacity = 0
	t.last.Duration = t.config.HideDuration
	return t.last
}

// Last is the most recent update.
func (t *Tooltip) Last() TooltipUpdate {
	return t.last
}
