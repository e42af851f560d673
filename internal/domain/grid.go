package domain

import (
	"fmt"
	"math"
)

// Validate checks that the grid's shape is usable and its data covers every node.
func (g WindGrid) Validate() error {
	if g.Header.Nx < 1 || g.Header.Ny < 1 {
		return fmt.Errorf("%w: nx=%d ny=%d", ErrGridShape, g.Header.Nx, g.Header.Ny)
	}
	if want := g.Header.Nx * g.Header.Ny; len(g.Data) != want {
		return fmt.Errorf("%w: got %d values, want %d", ErrGridData, len(g.Data), want)
	}
	return nil
}

// SameGeometry reports whether two headers describe the same mesh.
func (h GridHeader) SameGeometry(o GridHeader) bool {
	return h.Nx == o.Nx && h.Ny == o.Ny &&
		h.La1 == o.La1 && h.Lo1 == o.Lo1 &&
		h.La2 == o.La2 && h.Lo2 == o.Lo2 &&
		h.Dy == o.Dy && h.Dx == o.Dx
}

// Validate checks both components and that they share one geometry.
func (f WindField) Validate() error {
	if err := f.U.Validate(); err != nil {
		return fmt.Errorf("u grid: %w", err)
	}
	if err := f.V.Validate(); err != nil {
		return fmt.Errorf("v grid: %w", err)
	}
	if !f.U.Header.SameGeometry(f.V.Header) {
		return ErrGridMismatch
	}
	return nil
}

// Sampler maps coordinates to grid nodes by nearest axis value.
// The axes are built once from a header and reused for every query.
type Sampler struct {
	nx   int
	lats []float64
	lons []float64
}

// NewSampler builds the latitude axis (ny points from la1 to la2) and the
// longitude axis (nx points from lo1 to lo2).
func NewSampler(h GridHeader) *Sampler {
	return &Sampler{
		nx:   h.Nx,
		lats: linspace(h.La1, h.La2, h.Ny),
		lons: linspace(h.Lo1, h.Lo2, h.Nx),
	}
}

// Index returns the row-major data index of the node nearest to (lat, lon).
// Rows and columns are searched independently, so points outside the grid
// land on the nearest edge.
func (s *Sampler) Index(lat, lon float64) int {
	row := nearestIndex(s.lats, lat)
	col := nearestIndex(s.lons, lon)
	return row*s.nx + col
}

// Sample returns the grid value at the node nearest to (lat, lon).
// No interpolation is performed.
func (s *Sampler) Sample(g WindGrid, lat, lon float64) float64 {
	return g.Data[s.Index(lat, lon)]
}

// SampleVector samples both wind components at (lat, lon).
func (s *Sampler) SampleVector(f WindField, lat, lon float64) WindVector {
	i := s.Index(lat, lon)
	return WindVector{U: f.U.Data[i], V: f.V.Data[i]}
}

// linspace returns n evenly spaced values from start to stop inclusive.
func linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}

// nearestIndex returns the index of the axis value closest to x.
// The first index wins ties.
func nearestIndex(axis []float64, x float64) int {
	best := 0
	bestDist := math.Inf(1)
	for i, v := range axis {
		if d := math.Abs(v - x); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
