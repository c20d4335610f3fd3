package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/wildfire-price-dashboard/internal/chart"
	"github.com/couchcryptid/wildfire-price-dashboard/internal/domain"
	"github.com/couchcryptid/wildfire-price-dashboard/internal/geo"
	"github.com/couchcryptid/wildfire-price-dashboard/internal/mapview"
)

// Interaction outcomes recorded in metrics and events.
const (
	OutcomeOK           = "ok"
	OutcomeNotFound     = "not_found"
	OutcomeInvalidRange = "invalid_range"
	OutcomeError        = "error"
)

// Session is one viewer. Each operation runs to completion under the
// session lock, so a selection, its chart domain and its render never
// interleave with another operation.
type Session struct {
	id     string
	d      *Dashboard
	logger *slog.Logger

	mu          sync.Mutex
	state       domain.SelectionState
	mode        domain.ChartMode
	year        int
	sidebarOpen bool
	frame       *chart.Frame
	surface     *chart.SceneSurface
	renderer    *chart.Renderer
	view        *mapview.Controller
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// SelectRegion selects a county or city: the chart switches to the region's
// full-domain view, the map flags and frames its feature, and the sidebar
// opens. An unknown region leaves the session exactly as it was.
func (s *Session) SelectRegion(ctx context.Context, kind domain.RegionKind, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel := domain.RegionSelection(kind, name)
	err := s.selectRegion(ctx, sel)
	s.record(domain.InteractionSelectRegion, kind, sel.RegionName, err)
	return err
}

func (s *Session) selectRegion(ctx context.Context, sel domain.Selection) error {
	if err := sel.Validate(); err != nil {
		return err
	}
	series, _, err := s.d.index.Resolve(sel.Kind, sel.RegionName)
	if err != nil {
		s.logger.WarnContext(ctx, "region not found, keeping current view", "kind", sel.Kind, "region", sel.RegionName)
		return err
	}
	dom, err := domain.ComputeFullDomain(sel, s.d.index)
	if err != nil {
		return err
	}
	if _, err := s.state.Select(sel); err != nil {
		return err
	}

	s.mode = domain.ModeFull
	s.render(chart.Frame{Label: sel.RegionName, Series: series, Domain: dom})

	layer, _ := geo.LayerFor(sel.Kind)
	ref := mapview.FeatureRef{Layer: layer, ID: sel.RegionName}
	s.view.SetSelected(ref)
	if f, ok := s.d.layers[layer].Get(sel.RegionName); ok {
		s.view.ZoomToFeature(ref, s.d.proj.Bounds(f.Geometry))
	} else {
		s.logger.DebugContext(ctx, "region has no boundary to zoom to", "kind", sel.Kind, "region", sel.RegionName)
	}
	s.sidebarOpen = true
	return nil
}

// SelectFire selects a fire perimeter. The map flags the fire and, when a
// county or city has been selected, its chart is re-scoped to the fire's
// active window. A fire with unusable dates falls back to the region's full
// domain and reports ErrInvalidRange. In that case the map's selected
// feature is the fire while View.Selection stays on the previous selection,
// since the fire never became the chart's selection.
func (s *Session) SelectFire(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.selectFire(ctx, id)
	s.record(domain.InteractionSelectFire, domain.KindFire, id, err)
	return err
}

func (s *Session) selectFire(ctx context.Context, id string) error {
	f, ok := s.d.layers[geo.LayerFire].Get(id)
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrFireNotFound, id)
	}
	ref := mapview.FeatureRef{Layer: geo.LayerFire, ID: id}
	region, hasRegion := s.state.Region()

	r, err := f.Fire().ActiveRange()
	if err != nil {
		s.logger.WarnContext(ctx, "invalid fire range, showing full domain", "fire", id, "error", err)
		s.view.SetSelected(ref)
		if hasRegion {
			if ferr := s.renderRegion(region, domain.ModeFull, nil); ferr != nil {
				return errors.Join(err, ferr)
			}
		}
		return err
	}

	if _, err := s.state.Select(domain.FireSelection(id, r)); err != nil {
		return err
	}
	s.view.SetSelected(ref)
	if !hasRegion {
		return nil
	}
	return s.renderRegion(region, domain.ModeRange, &r)
}

// SetYear moves the fire-year slider. In year mode the chart follows; in
// full mode the slider year is banded on the chart. A fire's range chart is
// left alone.
func (s *Session) SetYear(ctx context.Context, year int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.year = year
	var err error
	if region, ok := s.state.Region(); ok {
		switch s.mode {
		case domain.ModeYear:
			err = s.renderRegion(region, domain.ModeYear, nil)
		case domain.ModeFull:
			err = s.renderYearBand(region)
		}
		if err != nil {
			s.logger.WarnContext(ctx, "year domain failed", "year", year, "error", err)
		}
	}
	s.record(domain.InteractionSetYear, domain.KindNone, "", err)
	return err
}

// SetMode switches the region chart between the full span and the slider year.
func (s *Session) SetMode(ctx context.Context, mode domain.ChartMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.setMode(mode)
	if err != nil {
		s.logger.DebugContext(ctx, "mode change rejected", "mode", mode, "error", err)
	}
	s.record(domain.InteractionSetMode, domain.KindNone, mode.String(), err)
	return err
}

func (s *Session) setMode(mode domain.ChartMode) error {
	if mode == domain.ModeRange {
		return errors.New("range mode is entered by selecting a fire")
	}
	region, ok := s.state.Region()
	if !ok {
		return domain.ErrNoRegionSelected
	}
	return s.renderRegion(region, mode, nil)
}

// Search suggests regions for the search box.
func (s *Session) Search(ctx context.Context, query string) SearchResult {
	res := s.d.Search(ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	if len(res.Suggestions) == 0 && query != "" {
		err = domain.ErrRegionNotFound
	}
	s.record(domain.InteractionSearch, domain.KindNone, query, err)
	return res
}

// Clear drops the selection, unflags the map and closes the sidebar. The
// chart keeps showing its last frame.
func (s *Session) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Clear()
	s.view.ClearSelected()
	s.sidebarOpen = false
	s.logger.DebugContext(ctx, "selection cleared")
	s.record(domain.InteractionClear, domain.KindNone, "", nil)
}

// Zoom applies a user pan or zoom and returns the resulting styles.
func (s *Session) Zoom(t mapview.Transform) mapview.Styles {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.OnZoom(t)
}

// PointerMove focuses the sample nearest to px on the chart.
func (s *Session) PointerMove(px float64) (domain.Point, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderer.PointerMove(px)
}

// PointerLeave hides the chart focus.
func (s *Session) PointerLeave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renderer.PointerLeave()
}

// Chart paints the current chart in the given format.
func (s *Session) Chart(w io.Writer, format chart.Format) error {
	s.mu.Lock()
	scene := s.surface.Scene()
	s.mu.Unlock()

	start := time.Now()
	if err := chart.Paint(scene, s.d.opts.Style, format.Provider(), w); err != nil {
		return err
	}
	s.d.metrics.ChartRenders.WithLabelValues(string(format)).Inc()
	s.d.metrics.ChartRenderDuration.Observe(time.Since(start).Seconds())
	return nil
}

// renderRegion computes the domain for mode and renders the region's series.
// Nothing changes when the domain cannot be computed.
func (s *Session) renderRegion(region domain.Selection, mode domain.ChartMode, r *domain.DateRange) error {
	series, _, err := s.d.index.Resolve(region.Kind, region.RegionName)
	if err != nil {
		return err
	}

	var dom domain.ChartDomain
	switch mode {
	case domain.ModeYear:
		dom, err = domain.ComputeYearDomain(region, s.d.index, s.year)
	case domain.ModeRange:
		dom, err = domain.ComputeRangeDomain(region, s.d.index, *r)
	default:
		dom, err = domain.ComputeFullDomain(region, s.d.index)
	}
	if err != nil {
		return err
	}

	s.mode = mode
	s.render(chart.Frame{Label: region.RegionName, Series: series, Domain: dom})
	return nil
}

// renderYearBand renders the region's full domain with the slider year banded.
func (s *Session) renderYearBand(region domain.Selection) error {
	series, _, err := s.d.index.Resolve(region.Kind, region.RegionName)
	if err != nil {
		return err
	}
	dom, err := domain.ComputeFullDomain(region, s.d.index)
	if err != nil {
		return err
	}
	s.mode = domain.ModeFull
	s.render(chart.Frame{Label: region.RegionName, Series: series, Domain: dom.WithYearBand(s.year)})
	return nil
}

func (s *Session) render(f chart.Frame) {
	s.frame = &f
	s.renderer.Render(f)
}

func (s *Session) record(typ string, kind domain.RegionKind, target string, err error) {
	outcome := outcomeOf(err)
	s.d.metrics.Interactions.WithLabelValues(typ, outcome).Inc()
	if s.d.opts.Events != nil {
		s.d.opts.Events.Publish(domain.NewInteractionEvent(s.id, typ, kind, target, s.year, outcome))
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrRegionNotFound), errors.Is(err, domain.ErrFireNotFound):
		return OutcomeNotFound
	case errors.Is(err, domain.ErrInvalidRange):
		return OutcomeInvalidRange
	default:
		return OutcomeError
	}
}
