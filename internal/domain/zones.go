package domain

import "fmt"

// AssembleZones computes one DispersedZone per fire point, in input order.
//
// The wind field is validated before any zone is computed, and any failure
// aborts the whole batch. An empty fire collection yields an empty result
// without normalizing intensities.
func AssembleZones(points []FirePoint, field WindField, p DispersionParams) ([]DispersedZone, error) {
	if err := field.Validate(); err != nil {
		return nil, fmt.Errorf("validate wind field: %w", err)
	}
	if len(points) == 0 {
		return []DispersedZone{}, nil
	}

	normalized, err := NormalizeIntensities(points)
	if err != nil {
		return nil, fmt.Errorf("normalize intensities: %w", err)
	}

	sampler := NewSampler(field.U.Header)
	zones := make([]DispersedZone, len(points))
	for i, fp := range points {
		wind := sampler.SampleVector(field, fp.Latitude, fp.Longitude)
		zones[i] = Disperse(fp.Latitude, fp.Longitude, wind, normalized[i], p)
	}
	return zones, nil
}
