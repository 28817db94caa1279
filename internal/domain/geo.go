package domain

import "math"

const earthRadiusKm = 6371.0

// Kilometers per degree of latitude (and of longitude at the equator).
const kmPerDegree = 111.32

// HaversineKm returns the great-circle distance between two points in kilometers.
func HaversineKm(a, b Coordinates) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// DegreeDistanceKm approximates the distance between two points as Euclidean
// degree distance scaled by a fixed constant. Cheap and adequate at the small
// proximity radii (1-10 km) the infrastructure index operates at; not a
// geodesic computation.
func DegreeDistanceKm(a, b Coordinates) float64 {
	dLat := b.Lat - a.Lat
	dLon := b.Lon - a.Lon
	return math.Sqrt(dLat*dLat+dLon*dLon) * kmPerDegree
}
