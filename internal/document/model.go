package document

import (
	"encoding/json"

	"github.com/festmap/festmap/backend-go/internal/geo"
)

type ItemType string

const (
	ItemTypeRectangle ItemType = "Rectangle"
	ItemTypeCircle    ItemType = "Circle"
	ItemTypePath      ItemType = "Path"
	ItemTypeCable     ItemType = "Cable"
	ItemTypeSocket    ItemType = "Socket"
	ItemTypeMarker    ItemType = "Marker"
)

// Known reports whether t names a variant the editor can build.
func (t ItemType) Known() bool {
	switch t {
	case ItemTypeRectangle, ItemTypeCircle, ItemTypePath, ItemTypeCable, ItemTypeSocket, ItemTypeMarker:
		return true
	}
	return false
}

type Current string

const (
	CurrentSchuko Current = "Schuko"
	Current16A    Current = "16A"
	Current32A    Current = "32A"
	Current63A    Current = "63A"
	Current125A   Current = "125A"
)

// Currents lists the selectable cable ratings in display order.
var Currents = []Current{CurrentSchuko, Current16A, Current32A, Current63A, Current125A}

func (c Current) Valid() bool {
	for _, known := range Currents {
		if c == known {
			return true
		}
	}
	return false
}

// Record is the serialized form of one map item. Pointer fields distinguish
// "absent" from zero so that required values can be enforced on import.
type Record struct {
	Type     ItemType `json:"type"`
	Name     string   `json:"name" validate:"required"`
	Category string   `json:"category" validate:"required"`
	Color    string   `json:"color" validate:"required,hexcolor"`
	Lat      *float64 `json:"lat" validate:"required"`
	Lng      *float64 `json:"lng" validate:"required"`
	Material []string `json:"material"`

	// Rectangle
	XSize    *float64 `json:"xSize,omitempty" validate:"required_if=Type Rectangle"`
	YSize    *float64 `json:"ySize,omitempty" validate:"required_if=Type Rectangle"`
	Rotation *float64 `json:"rotation,omitempty" validate:"required_if=Type Rectangle"`

	// Circle
	Radius *float64 `json:"radius,omitempty" validate:"required_if=Type Circle"`

	// Path and Cable
	LatLngs []geo.LatLng `json:"latLngs,omitempty" validate:"required_if=Type Path,required_if=Type Cable"`

	// Cable
	Length  *float64 `json:"length,omitempty"`
	Current Current  `json:"current,omitempty" validate:"omitempty,oneof=Schuko 16A 32A 63A 125A"`
}

// MarshalJSON keeps an empty but present vertex list, which Path and Cable
// records require on the way back in.
func (r Record) MarshalJSON() ([]byte, error) {
	type plain Record
	out := struct {
		plain
		LatLngs *[]geo.LatLng `json:"latLngs,omitempty"`
	}{plain: plain(r)}
	if r.LatLngs != nil {
		out.LatLngs = &r.LatLngs
	}
	return json.Marshal(out)
}

// Position returns the record anchor, zero when absent.
func (r Record) Position() geo.LatLng {
	var p geo.LatLng
	if r.Lat != nil {
		p.Lat = *r.Lat
	}
	if r.Lng != nil {
		p.Lng = *r.Lng
	}
	return p
}

// Clone returns a deep copy so that clipboard and history entries never
// share slices or pointers with live items.
func (r Record) Clone() Record {
	c := r
	c.Lat = cloneFloat(r.Lat)
	c.Lng = cloneFloat(r.Lng)
	c.XSize = cloneFloat(r.XSize)
	c.YSize = cloneFloat(r.YSize)
	c.Rotation = cloneFloat(r.Rotation)
	c.Radius = cloneFloat(r.Radius)
	c.Length = cloneFloat(r.Length)
	if r.Material != nil {
		c.Material = append([]string{}, r.Material...)
	}
	if r.LatLngs != nil {
		c.LatLngs = append([]geo.LatLng{}, r.LatLngs...)
	}
	return c
}

// Float returns a pointer to v, for building records in code.
func Float(v float64) *float64 {
	return &v
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	return Float(*p)
}

// Viewport is the visible map center and zoom level.
type Viewport struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Zoom float64 `json:"zoom"`
}

// Center returns the viewport center.
func (v Viewport) Center() geo.LatLng {
	return geo.LatLng{Lat: v.Lat, Lng: v.Lng}
}

// Envelope is the export format: all live items plus, for human-facing
// exports and saves, the view they were arranged in.
type Envelope struct {
	Items []Record  `json:"items"`
	Map   *Viewport `json:"map,omitempty"`
}
