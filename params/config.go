package params

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrZoomLevel = errors.New("zoom level must be greater than 1")

// MapConfig is everything needed to load, classify, and draw one map.
type MapConfig struct {
	Data       DataConfig       `mapstructure:"data"`
	Projection ProjectionConfig `mapstructure:"projection"`
	Zoom       ZoomConfig       `mapstructure:"zoom"`
	Tooltip    TooltipConfig    `mapstructure:"tooltip"`
	Legend     LegendConfig     `mapstructure:"legend"`
	Render     RenderConfig     `mapstructure:"render"`
}

func DefaultMapConfig() *MapConfig {
	return &MapConfig{
		Data:       DefaultDataConfig(),
		Projection: DefaultProjectionConfig(),
		Zoom:       DefaultZoomConfig(),
		Tooltip:    DefaultTooltipConfig(),
		Legend:     DefaultLegendConfig(),
		Render:     DefaultRenderConfig(),
	}
}

// Validate rejects settings that would break the map's invariants.
func (c *MapConfig) Validate() error {
	return c.Zoom.Validate()
}

type DataConfig struct {
	// Source is a local path or an http(s) URL.
	Source string `mapstructure:"source"`
	// Object names the topology object holding the counties.
	Object string `mapstructure:"object"`
	// Timeout bounds the one-shot fetch of a remote source.
	Timeout time.Duration `mapstructure:"timeout"`
}

func DefaultDataConfig() DataConfig {
	return DataConfig{
		Source:  "data/final.json",
		Object:  "counties",
		Timeout: 30 * time.Second,
	}
}

type ProjectionConfig struct {
	Scale      float64 `mapstructure:"scale"`
	TranslateX float64 `mapstructure:"translate_x"`
	TranslateY float64 `mapstructure:"translate_y"`
}

func DefaultProjectionConfig() ProjectionConfig {
	return ProjectionConfig{
		Scale:      1070,
		TranslateX: 480,
		TranslateY: 250,
	}
}

type ZoomConfig struct {
	// Level is the magnification applied when a county is centered.
	Level    float64       `mapstructure:"level"`
	Duration time.Duration `mapstructure:"duration"`
	// FrameRate is the number of frames per second emitted by live animations.
	FrameRate int `mapstructure:"frame_rate"`
}

// Validate requires a magnification above 1, so that a centered view is
// always distinguishable from the reset one.
func (c ZoomConfig) Validate() error {
	if math.IsNaN(c.Level) || math.IsInf(c.Level, 0) || c.Level <= 1 {
		return fmt.Errorf("%w: got %v", ErrZoomLevel, c.Level)
	}
	return nil
}

func DefaultZoomConfig() ZoomConfig {
	return ZoomConfig{
		Level:     5,
		Duration:  1000 * time.Millisecond,
		FrameRate: 30,
	}
}

type TooltipConfig struct {
	Opacity      float64       `mapstructure:"opacity"`
	ShowDuration time.Duration `mapstructure:"show_duration"`
	HideDuration time.Duration `mapstructure:"hide_duration"`
}

func DefaultTooltipConfig() TooltipConfig {
	return TooltipConfig{
		Opacity:      0.9,
		ShowDuration: 200 * time.Millisecond,
		HideDuration: 300 * time.Millisecond,
	}
}

// LegendConfig positions the legend panel. The panel origin is a fraction
// of the viewport; everything inside it is in fixed pixels.
type LegendConfig struct {
	Title         string  `mapstructure:"title"`
	PanelXFrac    float64 `mapstructure:"panel_x_frac"`
	PanelYFrac    float64 `mapstructure:"panel_y_frac"`
	PanelWidth    float64 `mapstructure:"panel_width"`
	PanelHeight   float64 `mapstructure:"panel_height"`
	CornerRadius  float64 `mapstructure:"corner_radius"`
	SwatchWidth   float64 `mapstructure:"swatch_width"`
	SwatchHeight  float64 `mapstructure:"swatch_height"`
	SwatchInsetX  float64 `mapstructure:"swatch_inset_x"`
	SwatchOffsetY float64 `mapstructure:"swatch_offset_y"`
	LabelInsetX   float64 `mapstructure:"label_inset_x"`
	LabelOffsetY  float64 `mapstructure:"label_offset_y"`
	LabelFontSize float64 `mapstructure:"label_font_size"`
	TitleInsetX   float64 `mapstructure:"title_inset_x"`
	TitleOffsetY  float64 `mapstructure:"title_offset_y"`
	TitleFontSize float64 `mapstructure:"title_font_size"`
}

func DefaultLegendConfig() LegendConfig {
	return LegendConfig{
		Title:         "Population Density by County (pop/square mile)",
		PanelXFrac:    0.03,
		PanelYFrac:    0.82,
		PanelWidth:    350,
		PanelHeight:   90,
		CornerRadius:  10,
		SwatchWidth:   50,
		SwatchHeight:  15,
		SwatchInsetX:  20,
		SwatchOffsetY: 55,
		LabelInsetX:   30,
		LabelOffsetY:  52,
		LabelFontSize: 12,
		TitleInsetX:   13,
		TitleOffsetY:  29,
		TitleFontSize: 16,
	}
}

type RenderConfig struct {
	Stroke      string  `mapstructure:"stroke"`
	StrokeWidth float64 `mapstructure:"stroke_width"`
	Cursor      string  `mapstructure:"cursor"`
	// Precision is the number of decimals kept in path data.
	Precision int `mapstructure:"precision"`
}

func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Stroke:      "grey",
		StrokeWidth: 0.3,
		Cursor:      "pointer",
		Precision:   2,
	}
}
