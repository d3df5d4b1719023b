package utils

import (
	"math"
)

const earthRadiusKm = 6371 // Earth's radius in kilometers

// HaversineDistance calculates the distance between two points on Earth
// using the Haversine formula. Returns distance in kilometers.
// NaN inputs yield NaN.
func HaversineDistance(lat1, lng1, lat2, lng2 float64) float64 {
	// Convert degrees to radians
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180

	dlat := (lat2 - lat1) * math.Pi / 180
	dlng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dlng/2)*math.Sin(dlng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// IsWithinGeofence reports whether distanceKm is strictly below thresholdKm.
func IsWithinGeofence(distanceKm, thresholdKm float64) bool {
	return distanceKm < thresholdKm
}

// KmToMeters rounds a kilometre distance to whole meters.
func KmToMeters(distanceKm float64) int64 {
	return int64(math.Round(distanceKm * 1000))
}
