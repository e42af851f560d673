package domain

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// NormalizeIntensities divides each point's intensity by the batch maximum,
// so the hottest fire(s) map to exactly 1. Callers with no fire points should
// skip normalization entirely; an empty batch is reported as ErrNoFirePoints.
// Any NaN or infinite intensity fails the whole batch with ErrNonFiniteIntensity.
func NormalizeIntensities(points []FirePoint) ([]float64, error) {
	if len(points) == 0 {
		return nil, ErrNoFirePoints
	}

	intensities := make([]float64, len(points))
	for i, p := range points {
		if math.IsInf(p.Intensity, 0) {
			return nil, fmt.Errorf("%w: point %d", ErrNonFiniteIntensity, i)
		}
		intensities[i] = p.Intensity
	}
	if floats.HasNaN(intensities) {
		return nil, ErrNonFiniteIntensity
	}

	maxIntensity := floats.Max(intensities)
	if maxIntensity == 0 {
		return nil, ErrZeroMaxIntensity
	}

	for i := range intensities {
		intensities[i] /= maxIntensity
	}
	return intensities, nil
}
