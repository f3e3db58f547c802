// Package geo computes distances between listings and campus.
package geo

import "math"

// Campus is the fixed reference point used for listing distances.
var Campus = Point{Lat: -20.165, Lng: 28.642}

const earthRadiusKm = 6371.0

type Point struct {
	Lat float64
	Lng float64
}

// Haversine returns the great-circle distance between a and b in kilometres.
func Haversine(a, b Point) float64 {
	lat1, lng1 := radians(a.Lat), radians(a.Lng)
	lat2, lng2 := radians(b.Lat), radians(b.Lng)

	dLat := lat2 - lat1
	dLng := lng2 - lng1
	h := math.Pow(math.Sin(dLat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLng/2), 2)
	return earthRadiusKm * 2 * math.Asin(math.Sqrt(h))
}

// DistanceFromCampus returns the distance in km, rounded to one decimal.
// ok is false when either coordinate is missing or not a finite number;
// callers omit the distance in that case rather than reporting zero.
func DistanceFromCampus(lat, lng *float64) (km float64, ok bool) {
	if lat == nil || lng == nil || !finite(*lat) || !finite(*lng) {
		return 0, false
	}
	d := Haversine(Campus, Point{Lat: *lat, Lng: *lng})
	return math.Round(d*10) / 10, true
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
