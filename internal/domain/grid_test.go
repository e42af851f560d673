package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testHeader is a 3x4 grid: latitudes -6..-4 (step 1), longitudes 100..101.5 (step 0.5).
func testHeader() GridHeader {
	return GridHeader{Lo1: 100, La1: -6, Lo2: 101.5, La2: -4, Dx: 0.5, Dy: 1, Nx: 4, Ny: 3}
}

func sequentialGrid(h GridHeader) WindGrid {
	data := make([]float64, h.Nx*h.Ny)
	for i := range data {
		data[i] = float64(i)
	}
	return WindGrid{Header: h, Data: data}
}

func TestLinspace(t *testing.T) {
	tests := []struct {
		name        string
		start, stop float64
		n           int
		expected    []float64
	}{
		{"ascending", 0, 1, 3, []float64{0, 0.5, 1}},
		{"descending", 5.5, -10.25, 4, []float64{5.5, 0.25, -5, -10.25}},
		{"single point", 3, 7, 1, []float64{3}},
		{"empty", 0, 1, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDeltaSlice(t, tt.expected, linspace(tt.start, tt.stop, tt.n), 1e-12)
		})
	}
}

func TestNearestIndex(t *testing.T) {
	axis := []float64{100, 100.5, 101, 101.5}

	tests := []struct {
		name     string
		x        float64
		expected int
	}{
		{"exact node", 101, 2},
		{"closer to lower", 100.2, 0},
		{"closer to upper", 100.4, 1},
		{"tie resolves to first", 100.25, 0},
		{"below range clamps", 90, 0},
		{"above range clamps", 120, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, nearestIndex(axis, tt.x))
		})
	}
}

func TestSampler_ExactNodes(t *testing.T) {
	h := testHeader()
	g := sequentialGrid(h)
	s := NewSampler(h)

	lats := linspace(h.La1, h.La2, h.Ny)
	lons := linspace(h.Lo1, h.Lo2, h.Nx)
	for row, lat := range lats {
		for col, lon := range lons {
			assert.Equal(t, g.Data[row*h.Nx+col], s.Sample(g, lat, lon), "node (%v, %v)", lat, lon)
		}
	}
}

func TestSampler_NearestNeighbor(t *testing.T) {
	h := testHeader()
	g := sequentialGrid(h)
	s := NewSampler(h)

	// (-4.9, 100.7): row 1 (-5), col 1 (100.5) -> index 5.
	assert.Equal(t, 5.0, s.Sample(g, -4.9, 100.7))
	// Outside the grid resolves to the nearest corner.
	assert.Equal(t, 0.0, s.Sample(g, -30, 80))
	assert.Equal(t, 11.0, s.Sample(g, 30, 150))
}

func TestSampler_DescendingLatitudes(t *testing.T) {
	// grib2json usually scans north to south: la1 > la2.
	h := GridHeader{Lo1: 100, La1: 5, Lo2: 101, La2: 4, Dx: 1, Dy: 1, Nx: 2, Ny: 2}
	g := WindGrid{Header: h, Data: []float64{1, 2, 3, 4}}
	s := NewSampler(h)

	assert.Equal(t, 1.0, s.Sample(g, 4.9, 100.1))
	assert.Equal(t, 3.0, s.Sample(g, 4.1, 100.1))
}

func TestSampler_SampleVector(t *testing.T) {
	h := testHeader()
	u := sequentialGrid(h)
	v := sequentialGrid(h)
	for i := range v.Data {
		v.Data[i] *= -1
	}
	s := NewSampler(h)

	got := s.SampleVector(WindField{U: u, V: v}, -5, 101)
	assert.Equal(t, WindVector{U: 6, V: -6}, got)
}

func TestWindGrid_Validate(t *testing.T) {
	h := testHeader()

	require.NoError(t, sequentialGrid(h).Validate())

	short := WindGrid{Header: h, Data: make([]float64, 5)}
	assert.ErrorIs(t, short.Validate(), ErrGridData)

	empty := WindGrid{Header: GridHeader{Nx: 0, Ny: 3}}
	assert.ErrorIs(t, empty.Validate(), ErrGridShape)
}

func TestWindField_Validate(t *testing.T) {
	h := testHeader()

	t.Run("matching", func(t *testing.T) {
		f := WindField{U: sequentialGrid(h), V: sequentialGrid(h)}
		require.NoError(t, f.Validate())
	})

	t.Run("different step", func(t *testing.T) {
		other := h
		other.Dx = 0.25
		f := WindField{U: sequentialGrid(h), V: sequentialGrid(other)}
		assert.ErrorIs(t, f.Validate(), ErrGridMismatch)
	})

	t.Run("different origin", func(t *testing.T) {
		other := h
		other.La1 = -7
		f := WindField{U: sequentialGrid(h), V: sequentialGrid(other)}
		assert.ErrorIs(t, f.Validate(), ErrGridMismatch)
	})

	t.Run("bad v data", func(t *testing.T) {
		f := WindField{U: sequentialGrid(h), V: WindGrid{Header: h, Data: []float64{1}}}
		err := f.Validate()
		assert.ErrorIs(t, err, ErrGridData)
		assert.Contains(t, err.Error(), "v grid")
	})

	t.Run("grib metadata ignored", func(t *testing.T) {
		two, three := 2, 3
		uh, vh := h, h
		uh.ParameterNumber = &two
		vh.ParameterNumber = &three
		f := WindField{U: sequentialGrid(uh), V: sequentialGrid(vh)}
		require.NoError(t, f.Validate())
	})
}
