package dashboard

import (
	"github.com/couchcryptid/wildfire-price-dashboard/internal/chart"
	"github.com/couchcryptid/wildfire-price-dashboard/internal/domain"
	"github.com/couchcryptid/wildfire-price-dashboard/internal/mapview"
)

// View is a snapshot of everything a client draws for one session.
type View struct {
	ID          string              `json:"id"`
	Selection   domain.Selection    `json:"selection"`
	Region      *domain.Selection   `json:"region,omitempty"`
	Mode        domain.ChartMode    `json:"mode"`
	Year        int                 `json:"year"`
	SidebarOpen bool                `json:"sidebar_open"`
	Domain      *domain.ChartDomain `json:"domain,omitempty"`
	Focus       *domain.Point       `json:"focus,omitempty"`
	Chart       chart.Scene         `json:"chart"`
	Map         MapState            `json:"map"`
	Fires       []domain.Fire       `json:"fires"`
}

// MapState is the map part of a View.
type MapState struct {
	Transform mapview.Transform   `json:"transform"`
	Target    mapview.Transform   `json:"target"`
	Animating bool                `json:"animating"`
	Styles    mapview.Styles      `json:"styles"`
	Selected  *mapview.FeatureRef `json:"selected,omitempty"`
}

// View snapshots the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		ID:          s.id,
		Selection:   s.state.Current(),
		Mode:        s.mode,
		Year:        s.year,
		SidebarOpen: s.sidebarOpen,
		Chart:       s.surface.Scene(),
		Fires:       s.d.Fires(s.year),
		Map: MapState{
			Transform: s.view.Transform(),
			Target:    s.view.Target(),
			Animating: s.view.Animating(),
			Styles:    s.view.Styles(),
		},
	}
	if region, ok := s.state.Region(); ok {
		v.Region = &region
	}
	if s.frame != nil {
		dom := s.frame.Domain
		v.Domain = &dom
	}
	if p, ok := s.renderer.Focus(); ok {
		v.Focus = &p
	}
	if ref, ok := s.view.Selected(); ok {
		v.Map.Selected = &ref
	}
	return v
}
