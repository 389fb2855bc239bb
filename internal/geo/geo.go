// Package geo holds the small-area geometry used to place map items:
// point rotation, bearings, the local meters-per-degree scale and
// great-circle distances.
package geo

import "math"

const (
	// LatLength is the length of one degree of latitude in meters.
	LatLength = 111300.0

	// EarthRadius is the mean earth radius in meters used for distances.
	EarthRadius = 6371000.0
)

// LatLng is a geographic position in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Sub returns the component-wise difference l - o.
func (l LatLng) Sub(o LatLng) LatLng {
	return LatLng{Lat: l.Lat - o.Lat, Lng: l.Lng - o.Lng}
}

// Add returns the component-wise sum l + o.
func (l LatLng) Add(o LatLng) LatLng {
	return LatLng{Lat: l.Lat + o.Lat, Lng: l.Lng + o.Lng}
}

// Midpoint returns the point halfway between l and o.
func (l LatLng) Midpoint(o LatLng) LatLng {
	return LatLng{Lat: (l.Lat + o.Lat) / 2, Lng: (l.Lng + o.Lng) / 2}
}

// RotatePoint rotates (x, y) counter-clockwise by degrees around the origin.
func RotatePoint(x, y, degrees float64) (float64, float64) {
	return RotationDegrees(degrees).TransformPoint(x, y)
}

// BearingAngle returns the angle in degrees from pivot to point, measured
// clockwise from north. The result lies in (-180, 180].
func BearingAngle(pivot, point LatLng) float64 {
	dx := point.Lng - pivot.Lng
	dy := point.Lat - pivot.Lat
	return math.Atan2(dx, dy) * (180 / math.Pi)
}

// MetersToDegrees returns the meters covered by one degree of latitude and
// one degree of longitude at the given latitude. Only valid for small local
// areas.
func MetersToDegrees(lat float64) (latLength, lngLength float64) {
	return LatLength, LatLength * math.Cos(lat*math.Pi/180.0)
}

// Distance returns the great-circle distance between a and b in meters.
func Distance(a, b LatLng) float64 {
	rad := math.Pi / 180
	lat1 := a.Lat * rad
	lat2 := b.Lat * rad
	sinDLat := math.Sin((b.Lat - a.Lat) * rad / 2)
	sinDLng := math.Sin((b.Lng - a.Lng) * rad / 2)
	h := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLng*sinDLng
	return 2 * EarthRadius * math.Asin(math.Sqrt(math.Min(1, h)))
}

// PathLength returns the summed distance between consecutive points.
func PathLength(points []LatLng) float64 {
	var length float64
	for i := 0; i+1 < len(points); i++ {
		length += Distance(points[i], points[i+1])
	}
	return length
}
