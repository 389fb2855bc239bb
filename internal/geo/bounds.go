package geo

// Bounds is an axis-aligned box in degrees.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
	valid bool
}

// BoundsOf returns the smallest bounds containing all points.
func BoundsOf(points ...LatLng) Bounds {
	var b Bounds
	for _, p := range points {
		b = b.Extend(p)
	}
	return b
}

// Extend returns b grown to contain p.
func (b Bounds) Extend(p LatLng) Bounds {
	if !b.valid {
		return Bounds{South: p.Lat, West: p.Lng, North: p.Lat, East: p.Lng, valid: true}
	}
	b.South = min(b.South, p.Lat)
	b.North = max(b.North, p.Lat)
	b.West = min(b.West, p.Lng)
	b.East = max(b.East, p.Lng)
	return b
}

// Union returns the smallest bounds containing both boxes.
func (b Bounds) Union(other Bounds) Bounds {
	if !b.valid {
		return other
	}
	if !other.valid {
		return b
	}
	return b.Extend(LatLng{Lat: other.South, Lng: other.West}).
		Extend(LatLng{Lat: other.North, Lng: other.East})
}

// IsEmpty reports whether no point was ever added.
func (b Bounds) IsEmpty() bool {
	return !b.valid
}

// Contains checks if a point is inside the bounds.
func (b Bounds) Contains(p LatLng) bool {
	return b.valid && p.Lat >= b.South && p.Lat <= b.North && p.Lng >= b.West && p.Lng <= b.East
}

// Center returns the center point of the bounds.
func (b Bounds) Center() LatLng {
	return LatLng{Lat: (b.South + b.North) / 2, Lng: (b.West + b.East) / 2}
}

// Pad returns b grown by margin degrees on every side.
func (b Bounds) Pad(margin float64) Bounds {
	if !b.valid {
		return b
	}
	b.South -= margin
	b.West -= margin
	b.North += margin
	b.East += margin
	return b
}
