package chart

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Style is the chart's static presentation. It never changes after startup.
type Style struct {
	Width        int `koanf:"width"`
	Height       int `koanf:"height"`
	MarginTop    int `koanf:"margin_top"`
	MarginRight  int `koanf:"margin_right"`
	MarginBottom int `koanf:"margin_bottom"`
	MarginLeft   int `koanf:"margin_left"`

	XTicks        int     `koanf:"x_ticks"`
	YTicks        int     `koanf:"y_ticks"`
	TickFontSize  float64 `koanf:"tick_font_size"`
	LabelFontSize float64 `koanf:"label_font_size"`
	LabelOffset   int     `koanf:"label_offset"`

	LineWidth          float64 `koanf:"line_width"`
	LineColor          string  `koanf:"line_color"`
	HighlightLineColor string  `koanf:"highlight_line_color"`
	HighlightColor     string  `koanf:"highlight_color"`
	HighlightOpacity   float64 `koanf:"highlight_opacity"`

	FocusRadius float64 `koanf:"focus_radius"`
	FocusWidth  float64 `koanf:"focus_width"`
	FocusColor  string  `koanf:"focus_color"`

	AxisColor  string `koanf:"axis_color"`
	Background string `koanf:"background"`

	Transition time.Duration `koanf:"transition"`
}

// DefaultStyle matches the dashboard's original look: a blue line on a dark
// panel with a translucent white highlight band.
func DefaultStyle() Style {
	return Style{
		Width:        640,
		Height:       426,
		MarginTop:    20,
		MarginRight:  24,
		MarginBottom: 56,
		MarginLeft:   76,

		XTicks:        25,
		YTicks:        20,
		TickFontSize:  10,
		LabelFontSize: 14,
		LabelOffset:   40,

		LineWidth:          3,
		LineColor:          "#0000ff",
		HighlightLineColor: "#ffd700",
		HighlightColor:     "#ffffff",
		HighlightOpacity:   0.2,

		FocusRadius: 8,
		FocusWidth:  3,
		FocusColor:  "#000000",

		AxisColor:  "#d8d8d8",
		Background: "#2b2b2b",

		Transition: 500 * time.Millisecond,
	}
}

// LoadStyle overlays the YAML file at path onto DefaultStyle. An empty path
// returns the defaults.
func LoadStyle(path string) (Style, error) {
	s := DefaultStyle()
	if path == "" {
		return s, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return Style{}, fmt.Errorf("load chart style %s: %w", path, err)
	}
	if err := k.Unmarshal("", &s); err != nil {
		return Style{}, fmt.Errorf("unmarshal chart style: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Style{}, fmt.Errorf("chart style %s: %w", path, err)
	}
	return s, nil
}

// Validate rejects styles that leave no room to draw or name unknown colours.
func (s Style) Validate() error {
	var errs []error
	if s.Width <= 0 || s.Height <= 0 {
		errs = append(errs, fmt.Errorf("size %dx%d must be positive", s.Width, s.Height))
	}
	if s.MarginLeft < 0 || s.MarginRight < 0 || s.MarginTop < 0 || s.MarginBottom < 0 {
		errs = append(errs, errors.New("margins must not be negative"))
	}
	if p := s.Plot(); p.W <= 0 || p.H <= 0 {
		errs = append(errs, errors.New("margins leave no plot area"))
	}
	if s.XTicks <= 0 || s.YTicks <= 0 {
		errs = append(errs, errors.New("tick counts must be positive"))
	}
	if s.HighlightOpacity < 0 || s.HighlightOpacity > 1 {
		errs = append(errs, fmt.Errorf("highlight_opacity %v outside [0, 1]", s.HighlightOpacity))
	}
	for name, c := range map[string]string{
		"line_color":           s.LineColor,
		"highlight_line_color": s.HighlightLineColor,
		"highlight_color":      s.HighlightColor,
		"focus_color":          s.FocusColor,
		"axis_color":           s.AxisColor,
		"background":           s.Background,
	} {
		if !validHex(c) {
			errs = append(errs, fmt.Errorf("%s %q is not a #rrggbb colour", name, c))
		}
	}
	return errors.Join(errs...)
}

// Plot is the drawable rectangle in canvas coordinates.
func (s Style) Plot() Rect {
	return Rect{
		X: float64(s.MarginLeft),
		Y: float64(s.MarginTop),
		W: float64(s.Width - s.MarginLeft - s.MarginRight),
		H: float64(s.Height - s.MarginTop - s.MarginBottom),
	}
}

func validHex(c string) bool {
	c = strings.TrimPrefix(c, "#")
	if len(c) != 6 {
		return false
	}
	for _, r := range c {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}
