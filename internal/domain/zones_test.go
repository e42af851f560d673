package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformField(h GridHeader, u, v float64) WindField {
	n := h.Nx * h.Ny
	ug := WindGrid{Header: h, Data: make([]float64, n)}
	vg := WindGrid{Header: h, Data: make([]float64, n)}
	for i := 0; i < n; i++ {
		ug.Data[i] = u
		vg.Data[i] = v
	}
	return WindField{U: ug, V: vg}
}

func TestAssembleZones_SingleFireScenario(t *testing.T) {
	h := GridHeader{Lo1: 100, La1: -5, Lo2: 101, La2: -4, Dx: 1, Dy: 1, Nx: 2, Ny: 2}
	field := WindField{
		U: WindGrid{Header: h, Data: []float64{1, 1, 1, 1}},
		V: WindGrid{Header: h, Data: []float64{0, 0, 0, 0}},
	}
	fires := []FirePoint{{Latitude: -4.6, Longitude: 100.4, Intensity: 10}}
	p := DefaultDispersionParams()

	zones, err := AssembleZones(fires, field, p)
	require.NoError(t, err)
	require.Len(t, zones, 1)

	z := zones[0]
	assert.Equal(t, 1.0, z.Intensity)
	assert.InDelta(t, 2*p.ScalingFactor, z.RedRadius, 1e-12)
	assert.Equal(t, -4.6, z.RedLat)
	assert.Greater(t, z.RedLon, 100.4)
	assert.Greater(t, z.YellowArea, 0.0)
}

func TestAssembleZones_HotterFireReachesFurther(t *testing.T) {
	h := testHeader()
	field := uniformField(h, 2, 1)
	fires := []FirePoint{
		{Latitude: -5, Longitude: 101, Intensity: 5},
		{Latitude: -5, Longitude: 101, Intensity: 10},
	}

	zones, err := AssembleZones(fires, field, DefaultDispersionParams())
	require.NoError(t, err)
	require.Len(t, zones, 2)

	assert.Greater(t, zones[1].RedArea, zones[0].RedArea)
	assert.Greater(t, zones[1].YellowArea, zones[0].YellowArea)
}

func TestAssembleZones_PreservesOrder(t *testing.T) {
	h := testHeader()
	field := WindField{U: sequentialGrid(h), V: sequentialGrid(h)}
	fires := []FirePoint{
		{Latitude: -4, Longitude: 101.5, Intensity: 3},
		{Latitude: -6, Longitude: 100, Intensity: 1},
		{Latitude: -5, Longitude: 100.5, Intensity: 2},
	}

	zones, err := AssembleZones(fires, field, DefaultDispersionParams())
	require.NoError(t, err)
	require.Len(t, zones, len(fires))

	for i, fp := range fires {
		assert.Equal(t, fp.Latitude, zones[i].SourceLat)
		assert.Equal(t, fp.Longitude, zones[i].SourceLon)
	}
	// Second fire sits on node 0 where the wind is calm.
	assert.Zero(t, zones[1].RedArea)
}

func TestAssembleZones_Idempotent(t *testing.T) {
	h := testHeader()
	field := WindField{U: sequentialGrid(h), V: uniformField(h, -1.5, 0).U}
	fires := []FirePoint{
		{Latitude: -4.2, Longitude: 100.9, Intensity: 12.3},
		{Latitude: -5.7, Longitude: 101.2, Intensity: 45.6},
	}
	p := DispersionParams{YellowExtension: 0.75, ScalingFactor: 3.6}

	first, err := AssembleZones(fires, field, p)
	require.NoError(t, err)
	second, err := AssembleZones(fires, field, p)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("repeated run differs (-first +second):\n%s", diff)
	}
}

func TestAssembleZones_EmptyFires(t *testing.T) {
	zones, err := AssembleZones(nil, uniformField(testHeader(), 1, 1), DefaultDispersionParams())
	require.NoError(t, err)
	assert.NotNil(t, zones)
	assert.Empty(t, zones)
}

func TestAssembleZones_ZeroIntensities(t *testing.T) {
	fires := []FirePoint{{Latitude: -5, Longitude: 101}, {Latitude: -4, Longitude: 100}}

	zones, err := AssembleZones(fires, uniformField(testHeader(), 1, 1), DefaultDispersionParams())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrZeroMaxIntensity)
	assert.Nil(t, zones)
}

func TestAssembleZones_GeometryMismatch(t *testing.T) {
	h := testHeader()
	other := h
	other.Lo1 = 99
	field := WindField{U: sequentialGrid(h), V: sequentialGrid(other)}
	fires := []FirePoint{{Latitude: -5, Longitude: 101, Intensity: 1}}

	zones, err := AssembleZones(fires, field, DefaultDispersionParams())
	assert.ErrorIs(t, err, ErrGridMismatch)
	assert.Nil(t, zones)
}

func TestAssembleZones_BadDataLength(t *testing.T) {
	h := testHeader()
	field := uniformField(h, 1, 1)
	field.U.Data = field.U.Data[:len(field.U.Data)-1]

	_, err := AssembleZones(nil, field, DefaultDispersionParams())
	assert.ErrorIs(t, err, ErrGridData)
}
