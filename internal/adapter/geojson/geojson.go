// Package geojson renders zone batches for map clients.
package geojson

import (
	"github.com/couchcryptid/smoke-zone-etl/internal/domain"
	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
)

// circleSegments is the number of vertices used to approximate a zone circle.
const circleSegments = 64

// FeatureCollection converts a batch into GeoJSON. Each zone yields three
// features: the fire source point, the red circle and the yellow circle.
func FeatureCollection(batch domain.ZoneBatch) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.ExtraMembers = geojson.Properties{
		"run_id":       batch.RunID,
		"generated_at": batch.GeneratedAt,
		"fire_count":   batch.FireCount,
	}

	for i, z := range batch.Zones {
		source := geojson.NewFeature(orb.Point{z.SourceLon, z.SourceLat})
		source.Properties = geojson.Properties{
			"zone":      "source",
			"index":     i,
			"intensity": z.Intensity,
		}

		red := geojson.NewFeature(Circle(z.RedLat, z.RedLon, z.RedRadius))
		red.Properties = geojson.Properties{
			"zone":      "red",
			"index":     i,
			"area_km2":  z.RedArea,
			"radius_km": z.RedRadius,
			"drift_km":  driftKm(z.SourceLat, z.SourceLon, z.RedLat, z.RedLon),
		}

		yellow := geojson.NewFeature(Circle(z.YellowLat, z.YellowLon, z.YellowRadius))
		yellow.Properties = geojson.Properties{
			"zone":      "yellow",
			"index":     i,
			"area_km2":  z.YellowArea,
			"radius_km": z.YellowRadius,
			"drift_km":  driftKm(z.SourceLat, z.SourceLon, z.YellowLat, z.YellowLon),
		}

		fc.Append(source)
		fc.Append(red)
		fc.Append(yellow)
	}
	return fc
}

// Circle approximates a circle of radiusKm around (lat, lon) as a closed
// polygon. A zero radius degenerates to a ring of identical points.
func Circle(lat, lon, radiusKm float64) orb.Polygon {
	center := orb.Point{lon, lat}
	ring := make(orb.Ring, 0, circleSegments+1)
	for i := 0; i < circleSegments; i++ {
		bearing := float64(i) * 360 / circleSegments
		ring = append(ring, geo.PointAtBearingAndDistance(center, bearing, radiusKm*1000))
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}

// driftKm is the great-circle distance between the fire and a zone centre.
func driftKm(lat1, lon1, lat2, lon2 float64) float64 {
	a := s2.LatLngFromDegrees(lat1, lon1)
	b := s2.LatLngFromDegrees(lat2, lon2)
	return a.Distance(b).Radians() * domain.EarthRadiusKm
}
