package render

import "github.com/festmap/festmap/backend-go/internal/geo"

// node is the Scene implementation of Handle.
type node struct {
	scene    *Scene
	id       string
	kind     Kind
	latLngs  []geo.LatLng
	radius   float64
	style    Style
	tooltip  string
	seq      int
	layer    *sceneLayer
	handlers map[EventType][]Handler
}

func (n *node) ID() string { return n.id }

func (n *node) SetLatLngs(points []geo.LatLng) {
	n.latLngs = append(n.latLngs[:0:0], points...)
}

func (n *node) SetLatLng(point geo.LatLng) {
	n.latLngs = []geo.LatLng{point}
}

func (n *node) SetRadius(meters float64) { n.radius = meters }

func (n *node) SetStyle(style Style) {
	// Handles keep their role across restyles.
	style.Handle = style.Handle || n.style.Handle
	n.style = style
}

func (n *node) BindTooltip(text string) { n.tooltip = text }

func (n *node) On(event EventType, fn Handler) {
	n.handlers[event] = append(n.handlers[event], fn)
}

func (n *node) AddTo(layer Layer) {
	sl, ok := layer.(*sceneLayer)
	if !ok || sl.scene != n.scene {
		return
	}
	n.layer = sl
	n.scene.nodes[n.id] = n
}

func (n *node) RemoveFrom(layer Layer) {
	sl, ok := layer.(*sceneLayer)
	if !ok || n.layer != sl {
		return
	}
	n.layer = nil
	if n.scene.nodes[n.id] == n {
		delete(n.scene.nodes, n.id)
	}
}

func (n *node) Center() geo.LatLng {
	switch n.kind {
	case KindCircle, KindMarker:
		if len(n.latLngs) == 0 {
			return geo.LatLng{}
		}
		return n.latLngs[0]
	}
	return geo.BoundsOf(n.latLngs...).Center()
}

func (n *node) anchor() geo.LatLng {
	if n.kind == KindPolyline && len(n.latLngs) > 0 {
		return n.latLngs[0]
	}
	return n.Center()
}

func (n *node) bounds() geo.Bounds {
	if n.kind == KindCircle && len(n.latLngs) > 0 {
		c := n.latLngs[0]
		latLength, lngLength := geo.MetersToDegrees(c.Lat)
		dLat := n.radius / latLength
		dLng := n.radius / lngLength
		return geo.BoundsOf(
			geo.LatLng{Lat: c.Lat - dLat, Lng: c.Lng - dLng},
			geo.LatLng{Lat: c.Lat + dLat, Lng: c.Lng + dLng},
		)
	}
	return geo.BoundsOf(n.latLngs...)
}

func (n *node) command() DrawCommand {
	cmd := DrawCommand{
		Op:        n.kind,
		ObjectID:  n.id,
		LatLngs:   append([]geo.LatLng(nil), n.latLngs...),
		Color:     n.style.Color,
		Draggable: n.style.Draggable,
		Handle:    n.style.Handle,
		Tooltip:   n.tooltip,
	}
	if n.kind == KindCircle {
		cmd.Radius = n.radius
	}
	if n.layer != nil {
		cmd.Layer = n.layer.name
	}
	return cmd
}
