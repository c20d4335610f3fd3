// Package loader fetches the dashboard's five input files as one batch.
// Nothing downstream is built until every file has arrived and parsed.
package loader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/wildfire-price-dashboard/internal/domain"
	"github.com/couchcryptid/wildfire-price-dashboard/internal/geo"
)

// maxFileBytes caps a single input; the full city CSV is about 40 MB.
const maxFileBytes = 256 << 20

// Sources names where each input lives: a local path or an http(s) URL.
type Sources struct {
	CountyCSV     string
	CityCSV       string
	CountyGeoJSON string
	CityGeoJSON   string
	FireGeoJSON   string
}

// Bundle is every input, decoded but not yet indexed.
type Bundle struct {
	Counties     domain.Table
	Cities       domain.Table
	CountyShapes *geo.Collection
	CityShapes   *geo.Collection
	FireShapes   *geo.Collection
}

// Loader fetches inputs from disk or over HTTP.
type Loader struct {
	client *http.Client
	logger *slog.Logger
}

// New creates a loader. A nil client uses one with a 30s timeout.
func New(client *http.Client, logger *slog.Logger) *Loader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Loader{client: client, logger: logger}
}

// Load fetches and decodes all five inputs concurrently. The first failure
// cancels the rest and is returned wrapped in domain.ErrDatasetLoad.
func (l *Loader) Load(ctx context.Context, src Sources) (*Bundle, error) {
	var b Bundle
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t, err := l.loadTable(ctx, src.CountyCSV)
		b.Counties = t
		return err
	})
	g.Go(func() error {
		t, err := l.loadTable(ctx, src.CityCSV)
		b.Cities = t
		return err
	})
	g.Go(func() error {
		c, err := l.loadFeatures(ctx, src.CountyGeoJSON, geo.LayerCounty)
		b.CountyShapes = c
		return err
	})
	g.Go(func() error {
		c, err := l.loadFeatures(ctx, src.CityGeoJSON, geo.LayerCity)
		b.CityShapes = c
		return err
	})
	g.Go(func() error {
		c, err := l.loadFeatures(ctx, src.FireGeoJSON, geo.LayerFire)
		b.FireShapes = c
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDatasetLoad, err)
	}
	return &b, nil
}

func (l *Loader) loadTable(ctx context.Context, location string) (domain.Table, error) {
	data, err := l.fetch(ctx, location)
	if err != nil {
		return domain.Table{}, err
	}
	t, encoding, err := DecodeCSV(location, data)
	if err != nil {
		return domain.Table{}, err
	}
	l.logger.Info("csv loaded", "file", location, "rows", len(t.Rows), "columns", len(t.Header), "encoding", encoding)
	return t, nil
}

func (l *Loader) loadFeatures(ctx context.Context, location string, layer geo.Layer) (*geo.Collection, error) {
	data, err := l.fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	c, err := geo.ParseFeatures(data, layer)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}
	if c.Dropped > 0 {
		l.logger.Warn("dropped features with invalid geometry", "file", location, "layer", layer.String(), "dropped", c.Dropped)
	}
	l.logger.Info("geojson loaded", "file", location, "layer", layer.String(), "features", len(c.Features))
	return c, nil
}

// fetch reads a local file or GETs an http(s) URL.
func (l *Loader) fetch(ctx context.Context, location string) ([]byte, error) {
	if location == "" {
		return nil, fmt.Errorf("empty input location")
	}
	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		data, err := os.ReadFile(location)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", location, err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", location, err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", location, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFileBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", location, err)
	}
	return data, nil
}
