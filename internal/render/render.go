// Package render defines the contract between map items and whatever draws
// them (a browser map widget, a terminal canvas, a test harness) and
// provides Scene, an in-process renderer that records primitives and
// compiles them into draw commands.
package render

import (
	"github.com/festmap/festmap/backend-go/internal/document"
	"github.com/festmap/festmap/backend-go/internal/geo"
)

type Kind string

const (
	KindPolygon  Kind = "polygon"
	KindCircle   Kind = "circle"
	KindPolyline Kind = "polyline"
	KindMarker   Kind = "marker"
)

// Style is the visual state of a primitive.
type Style struct {
	Color     string `json:"color,omitempty"`
	Draggable bool   `json:"draggable,omitempty"`
	// Handle marks vertex and midpoint edit handles of a selected path.
	Handle bool `json:"handle,omitempty"`
}

type EventType string

const (
	EventClick       EventType = "click"
	EventDragStart   EventType = "dragstart"
	EventDrag        EventType = "drag"
	EventDragEnd     EventType = "dragend"
	EventContextMenu EventType = "contextmenu"
	EventMouseDown   EventType = "mousedown"
	EventMouseMove   EventType = "mousemove"
)

// Mouse buttons as reported by Event.Button and Event.Buttons.
const (
	ButtonLeft  = 0
	ButtonRight = 2

	ButtonsLeft  = 1
	ButtonsRight = 2
)

// Event is an input event delivered to a primitive or to the map.
type Event struct {
	Type   EventType  `json:"type"`
	LatLng geo.LatLng `json:"latLng"`
	// Button is the button that changed state (mousedown).
	Button int `json:"button"`
	// Buttons is the bitmask of buttons held (mousemove).
	Buttons int  `json:"buttons"`
	Ctrl    bool `json:"ctrl"`
	Shift   bool `json:"shift"`
}

type Handler func(Event)

// Handle is one drawable primitive owned by exactly one item.
type Handle interface {
	ID() string
	SetLatLngs(points []geo.LatLng)
	SetLatLng(point geo.LatLng)
	SetRadius(meters float64)
	SetStyle(style Style)
	BindTooltip(text string)
	On(event EventType, fn Handler)
	AddTo(layer Layer)
	RemoveFrom(layer Layer)
	// Center is the center of the primitive's bounds.
	Center() geo.LatLng
}

// Layer groups primitives that are shown and hidden together.
type Layer interface {
	Name() string
}

// Renderer creates primitives and layers and exposes map-level events and
// the current view.
type Renderer interface {
	Create(id string, kind Kind, style Style) Handle
	NewLayer(name string) Layer
	RemoveLayer(layer Layer)
	// OnMap registers a map-level handler and returns a function removing it.
	OnMap(event EventType, fn Handler) (off func())
	View() document.Viewport
	SetView(view document.Viewport)
}
