package geojson

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/couchcryptid/smoke-zone-etl/internal/domain"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBatch(t *testing.T) domain.ZoneBatch {
	t.Helper()
	h := domain.GridHeader{Lo1: 100, La1: -5, Lo2: 101, La2: -4, Dx: 1, Dy: 1, Nx: 2, Ny: 2}
	in := domain.Inputs{
		Fires: []domain.FirePoint{{Latitude: -4.6, Longitude: 100.4, Intensity: 10}},
		Wind: domain.WindField{
			U: domain.WindGrid{Header: h, Data: []float64{5, 5, 5, 5}},
			V: domain.WindGrid{Header: h, Data: []float64{0, 0, 0, 0}},
		},
	}
	batch, err := domain.BuildZoneBatch("run-geo", in, domain.DefaultDispersionParams())
	require.NoError(t, err)
	batch.GeneratedAt = time.Date(2023, 10, 8, 6, 0, 0, 0, time.UTC)
	return batch
}

func TestFeatureCollection(t *testing.T) {
	batch := testBatch(t)

	fc := FeatureCollection(batch)
	require.Len(t, fc.Features, 3)

	assert.Equal(t, "source", fc.Features[0].Properties["zone"])
	assert.Equal(t, orb.Point{100.4, -4.6}, fc.Features[0].Geometry)
	assert.Equal(t, "red", fc.Features[1].Properties["zone"])
	assert.Equal(t, "yellow", fc.Features[2].Properties["zone"])
	assert.Equal(t, batch.Zones[0].RedArea, fc.Features[1].Properties["area_km2"])
	assert.Equal(t, batch.Zones[0].YellowArea, fc.Features[2].Properties["area_km2"])

	// u' = 10 m/s -> 10 km eastward drift, yellow 15 km.
	assert.InDelta(t, 10.0, fc.Features[1].Properties["drift_km"], 0.05)
	assert.InDelta(t, 15.0, fc.Features[2].Properties["drift_km"], 0.05)

	data, err := json.Marshal(fc)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "FeatureCollection", decoded["type"])
	assert.Equal(t, "run-geo", decoded["run_id"])
}

func TestCircle(t *testing.T) {
	poly := Circle(-2, 110, 5)
	require.Len(t, poly, 1)

	ring := poly[0]
	require.Len(t, ring, circleSegments+1)
	assert.Equal(t, ring[0], ring[len(ring)-1])

	center := orb.Point{110, -2}
	for _, p := range ring {
		assert.InDelta(t, 5000, geo.Distance(center, p), 1)
	}
}

func TestCircle_ZeroRadius(t *testing.T) {
	ring := Circle(-2, 110, 0)[0]
	for _, p := range ring {
		assert.InDelta(t, 110, p.Lon(), 1e-9)
		assert.InDelta(t, -2, p.Lat(), 1e-9)
	}
}

func TestFeatureCollection_Empty(t *testing.T) {
	fc := FeatureCollection(domain.ZoneBatch{RunID: "empty", Zones: []domain.DispersedZone{}})
	assert.Empty(t, fc.Features)
}
