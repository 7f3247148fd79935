package spatial

import (
	"math"

	"github.com/golang/geo/s2"
)

// HaversineDistance calculates the great-circle distance between two points in meters
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// MetersToDegrees converts a metric grid size into latitude and longitude
// degree steps at the given reference latitude.
func MetersToDegrees(meters, refLat float64) (latStep, lonStep float64) {
	latStep = meters / MetersPerDegree
	cos := math.Cos(refLat * math.Pi / 180)
	if cos < 1e-6 {
		cos = 1e-6
	}
	lonStep = meters / (MetersPerDegree * cos)
	return latStep, lonStep
}

// Constants
const (
	EarthRadiusMeters = 6371000.0 // Earth's mean radius in meters
	MetersPerDegree   = 111000.0  // Length of one degree of latitude, rounded
)
