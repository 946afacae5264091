package geo

import (
	"math"

	"photomap-backend/internal/models"
)

// DefaultRadiusKm is the proximity radius used when the caller does not
// supply one.
const DefaultRadiusKm = 5

// Point is a geographic coordinate in degrees (WGS 84).
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Distance returns the great-circle distance in kilometers between two
// coordinates, using the haversine formula with an Earth radius of 6371 km.
// NaN inputs propagate.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371

	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// Nearby returns the photos within radiusKm of center, preserving input
// order. Photos without both coordinates finite are never included.
func Nearby(center Point, radiusKm float64, photos []models.Photo) []models.Photo {
	result := make([]models.Photo, 0)
	for _, p := range photos {
		lat, lon, ok := p.Coordinates()
		if !ok {
			continue
		}
		if Distance(center.Lat, center.Lon, lat, lon) <= radiusKm {
			result = append(result, p)
		}
	}
	return result
}
