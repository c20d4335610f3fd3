package domain

import "context"

// Place is a geocoded search hit: a point and how the provider named it.
type Place struct {
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Name       string  `json:"name"`
	Address    string  `json:"address"`
	Confidence float64 `json:"confidence"` // 0.0–1.0 provider relevance
}

// Found reports whether the provider returned a usable point.
func (p Place) Found() bool {
	return p.Lat != 0 || p.Lon != 0
}

// PlaceFinder turns free-text queries (addresses, landmarks, neighbourhoods)
// into coordinates. Search uses it when no region name matches.
type PlaceFinder interface {
	FindPlace(ctx context.Context, query string) (Place, error)
}
