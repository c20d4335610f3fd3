//go:build mapbox

package mapbox

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/wildfire-price-dashboard/internal/observability"
)

// These tests hit the real Mapbox API and require a valid MAPBOX_TOKEN env var.
// Run with: go test -tags=mapbox ./internal/adapter/mapbox/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	token := os.Getenv("MAPBOX_TOKEN")
	if token == "" {
		t.Fatal("MAPBOX_TOKEN must be set to run smoke tests")
	}
	return NewClient(token, 10*time.Second, observability.NewMetricsForTesting(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSmoke_FindPlace(t *testing.T) {
	c := smokeClient(t)

	place, err := c.FindPlace(context.Background(), "Paradise, CA")
	require.NoError(t, err)

	assert.InDelta(t, 39.76, place.Lat, 0.1, "lat should be near Paradise")
	assert.InDelta(t, -121.62, place.Lon, 0.1, "lon should be near Paradise")
	assert.Contains(t, place.Address, "Paradise")
	assert.Greater(t, place.Confidence, 0.5)
}

func TestSmoke_FindPlace_Nonsense(t *testing.T) {
	c := smokeClient(t)

	// Fuzzy matching may still return something; the client must not error.
	_, err := c.FindPlace(context.Background(), "XYZNONEXISTENT99")
	require.NoError(t, err)
}

func TestSmoke_CachedFinder(t *testing.T) {
	c := smokeClient(t)
	cached := NewCachedFinder(c, 10, observability.NewMetricsForTesting())

	p1, err := cached.FindPlace(context.Background(), "Chico, CA")
	require.NoError(t, err)
	p2, err := cached.FindPlace(context.Background(), "chico, ca")
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
}
