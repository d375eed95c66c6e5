package geo

import (
	"math"

	"github.com/mmcloughlin/geohash"

	"github.com/ridecrew/ridecrew/internal/pkg/models"
)

// earthRadiusKm is the mean Earth radius used by the haversine formula
const earthRadiusKm = 6371.0

// HaversineKm calculates the great-circle distance between two points in
// kilometers using the Haversine formula
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	rlat1 := lat1 * math.Pi / 180.0
	rlng1 := lng1 * math.Pi / 180.0
	rlat2 := lat2 * math.Pi / 180.0
	rlng2 := lng2 * math.Pi / 180.0

	dLat := rlat2 - rlat1
	dLng := rlng2 - rlng1
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// AverageSpeed returns the rounded arithmetic mean of the reported speeds
// over points where a speed is present and positive, 0 when none are.
// Order-independent.
func AverageSpeed(points []models.RoutePoint) float64 {
	var sum float64
	var count int
	for _, p := range points {
		if p.Speed != nil && *p.Speed > 0 {
			sum += *p.Speed
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return math.Round(sum / float64(count))
}

// MeanSpeed returns the rounded mean from a running sum and count. Zero
// count yields 0. Used for the incremental per-point recompute.
func MeanSpeed(sum float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return math.Round(sum / float64(count))
}

// Encode converts a coordinate to a geohash string of the given precision
func Encode(lat, lng float64, precision uint) string {
	return geohash.EncodeWithPrecision(lat, lng, precision)
}
