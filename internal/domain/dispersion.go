package domain

import "math"

// EarthRadiusKm is the mean Earth radius used for the equirectangular offset.
const EarthRadiusKm = 6371.0

const (
	DefaultYellowExtension = 0.5
	DefaultScalingFactor   = 1.0
)

// DispersionParams tunes the advection model.
type DispersionParams struct {
	// YellowExtension is the fraction by which the yellow zone's wind vector
	// exceeds the red zone's.
	YellowExtension float64 `json:"yellow_extension"`
	// ScalingFactor converts wind speed to displacement: km per m/s.
	ScalingFactor float64 `json:"scaling_factor"`
}

// DefaultDispersionParams returns the stock extension and scaling factor.
func DefaultDispersionParams() DispersionParams {
	return DispersionParams{
		YellowExtension: DefaultYellowExtension,
		ScalingFactor:   DefaultScalingFactor,
	}
}

// Disperse derives the red and yellow zones for a fire at (lat, lon) given
// the sampled wind and the fire's normalized intensity.
func Disperse(lat, lon float64, wind WindVector, normalized float64, p DispersionParams) DispersedZone {
	// Hotter fires push smoke further: linear, uncapped.
	boost := 1 + normalized
	u := wind.U * boost
	v := wind.V * boost

	redRadius, redLat, redLon := advect(lat, lon, u, v, p.ScalingFactor)

	ext := 1 + p.YellowExtension
	yellowRadius, yellowLat, yellowLon := advect(lat, lon, u*ext, v*ext, p.ScalingFactor)

	return DispersedZone{
		SourceLat:    lat,
		SourceLon:    lon,
		RedLat:       redLat,
		RedLon:       redLon,
		RedArea:      circleArea(redRadius),
		YellowLat:    yellowLat,
		YellowLon:    yellowLon,
		YellowArea:   math.Pi * (yellowRadius*yellowRadius - redRadius*redRadius),
		RedRadius:    redRadius,
		YellowRadius: yellowRadius,
		Intensity:    normalized,
	}
}

// advect moves (lat, lon) by the wind vector scaled to km and returns the
// travelled distance together with the displaced point.
func advect(lat, lon, u, v, scaling float64) (distance, newLat, newLon float64) {
	distance = math.Hypot(u, v) * scaling

	deltaLat := (v * scaling) / EarthRadiusKm * (180 / math.Pi)
	deltaLon := (u * scaling) / (EarthRadiusKm * math.Cos(math.Pi*lat/180)) * (180 / math.Pi)

	return distance, lat + deltaLat, lon + deltaLon
}

func circleArea(radius float64) float64 {
	return math.Pi * radius * radius
}
