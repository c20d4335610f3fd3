package mapview

import "github.com/couchcryptid/wildfire-price-dashboard/internal/geo"

// Screen-space stroke widths. Dividing by k keeps them constant on screen.
const (
	countyStroke   = 0.2
	cityStroke     = 0.1
	fireStroke     = 0.2
	selectedStroke = 2.0
)

// Styles is how features and labels are drawn at one zoom level.
type Styles struct {
	K                   float64 `json:"k"`
	CountyLabelOpacity  float64 `json:"county_label_opacity"`
	CountyLabelFontSize float64 `json:"county_label_font_size"`
	CityLabelOpacity    float64 `json:"city_label_opacity"`
	CityLabelFontSize   float64 `json:"city_label_font_size"`
	CountyStrokeWidth   float64 `json:"county_stroke_width"`
	CityStrokeWidth     float64 `json:"city_stroke_width"`
	FireStrokeWidth     float64 `json:"fire_stroke_width"`
	SelectedStrokeWidth float64 `json:"selected_stroke_width"`
}

// ComputeStyles derives every zoom-dependent style from k alone.
func ComputeStyles(k float64) Styles {
	return Styles{
		K:                   k,
		CountyLabelOpacity:  countyLabelOpacity(k),
		CountyLabelFontSize: max(6, 10-(k-1)*1.5),
		CityLabelOpacity:    cityLabelOpacity(k),
		CityLabelFontSize:   max(0.7, 20/k),
		CountyStrokeWidth:   countyStroke / k,
		CityStrokeWidth:     cityStroke / k,
		FireStrokeWidth:     fireStroke / k,
		SelectedStrokeWidth: selectedStroke / k,
	}
}

// StrokeWidth returns the width for a feature of the given layer.
func (s Styles) StrokeWidth(layer geo.Layer, selected bool) float64 {
	switch {
	case selected:
		return s.SelectedStrokeWidth
	case layer == geo.LayerCity:
		return s.CityStrokeWidth
	case layer == geo.LayerFire:
		return s.FireStrokeWidth
	default:
		return s.CountyStrokeWidth
	}
}

// County labels fade in between 1.5 and 2.5, hold until 5 and fade out by 9.
func countyLabelOpacity(k float64) float64 {
	switch {
	case k >= 1.5 && k < 2.5:
		return k - 1.5
	case k >= 2.5 && k <= 5:
		return 1
	case k > 5 && k < 9:
		return 1 - (k-5)/4
	default:
		return 0
	}
}

// City labels fade in between 5 and 10 and stay visible.
func cityLabelOpacity(k float64) float64 {
	switch {
	case k >= 10:
		return 1
	case k >= 5:
		return (k - 5) / 5
	default:
		return 0
	}
}
