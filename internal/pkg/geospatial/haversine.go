package geospatial

import (
	"math"
	"strconv"

	"github.com/samirrijal/geovocab/internal/core/domain"
)

const earthRadiusKm = 6371.0

// Distance returns the great-circle distance in meters between two points.
func Distance(a, b domain.GeoPoint) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c * 1000
}

// FormatDistance renders meters as "850 m" below a kilometre and "12.3 km" above.
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return strconv.FormatFloat(math.Round(meters), 'f', 0, 64) + " m"
	}
	return strconv.FormatFloat(meters/1000, 'f', 1, 64) + " km"
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
