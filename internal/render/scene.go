package render

import (
	"sort"

	"github.com/festmap/festmap/backend-go/internal/document"
	"github.com/festmap/festmap/backend-go/internal/geo"
)

// Scene is a retained, in-memory Renderer. Only primitives currently added
// to a live layer are part of the scene. It is not safe for concurrent use.
type Scene struct {
	nodes   map[string]*node // attached primitives by id
	layers  []*sceneLayer
	seq     int
	mapSubs []*mapSub
	nextSub int
	view    document.Viewport
}

type sceneLayer struct {
	name    string
	visible bool
	scene   *Scene
}

func (l *sceneLayer) Name() string { return l.name }

type mapSub struct {
	id     int
	event  EventType
	fn     Handler
	active bool
}

// NewScene creates an empty scene showing view.
func NewScene(view document.Viewport) *Scene {
	return &Scene{
		nodes: make(map[string]*node),
		view:  view,
	}
}

// Create returns a new, detached primitive.
func (s *Scene) Create(id string, kind Kind, style Style) Handle {
	s.seq++
	return &node{
		scene:    s,
		id:       id,
		kind:     kind,
		style:    style,
		seq:      s.seq,
		handlers: make(map[EventType][]Handler),
	}
}

// NewLayer creates a visible layer and adds it to the map.
func (s *Scene) NewLayer(name string) Layer {
	l := &sceneLayer{name: name, visible: true, scene: s}
	s.layers = append(s.layers, l)
	return l
}

// RemoveLayer removes the layer and every primitive still in it.
func (s *Scene) RemoveLayer(layer Layer) {
	sl, ok := layer.(*sceneLayer)
	if !ok {
		return
	}
	for id, n := range s.nodes {
		if n.layer == sl {
			n.layer = nil
			delete(s.nodes, id)
		}
	}
	for i, l := range s.layers {
		if l == sl {
			s.layers = append(s.layers[:i], s.layers[i+1:]...)
			break
		}
	}
}

// OnMap registers a map-level handler.
func (s *Scene) OnMap(event EventType, fn Handler) func() {
	s.nextSub++
	sub := &mapSub{id: s.nextSub, event: event, fn: fn, active: true}
	s.mapSubs = append(s.mapSubs, sub)
	return func() {
		sub.active = false
		for i, m := range s.mapSubs {
			if m == sub {
				s.mapSubs = append(s.mapSubs[:i], s.mapSubs[i+1:]...)
				break
			}
		}
	}
}

func (s *Scene) View() document.Viewport { return s.view }

func (s *Scene) SetView(view document.Viewport) { s.view = view }

// --- Input ---

// MapEvent delivers an event to the map-level handlers. Handlers removed by
// an earlier handler of the same dispatch are skipped.
func (s *Scene) MapEvent(ev Event) {
	subs := append([]*mapSub(nil), s.mapSubs...)
	for _, sub := range subs {
		if sub.active && sub.event == ev.Type {
			sub.fn(ev)
		}
	}
}

// Fire delivers an event to the primitive with the given id. It reports
// whether the primitive is part of the scene.
func (s *Scene) Fire(id string, ev Event) bool {
	n, ok := s.nodes[id]
	if !ok {
		return false
	}
	for _, fn := range append([]Handler(nil), n.handlers[ev.Type]...) {
		fn(ev)
	}
	return true
}

// Click clicks the primitive with the given id.
func (s *Scene) Click(id string, ctrl bool) bool {
	n, ok := s.nodes[id]
	if !ok {
		return false
	}
	return s.Fire(id, Event{Type: EventClick, LatLng: n.Center(), Ctrl: ctrl})
}

// ClickAt clicks the topmost primitive under p, or the empty map when there
// is none. It returns the id of the clicked primitive.
func (s *Scene) ClickAt(p geo.LatLng, tolerance float64, ctrl bool) string {
	id := s.HitTest(p, tolerance)
	if id == "" {
		s.MapEvent(Event{Type: EventClick, LatLng: p, Ctrl: ctrl})
		return ""
	}
	s.Fire(id, Event{Type: EventClick, LatLng: p, Ctrl: ctrl})
	return id
}

// Drag moves a primitive so that its anchor lands on to, firing dragstart,
// drag and dragend. The anchor is the first vertex of a polyline and the
// center of everything else.
func (s *Scene) Drag(id string, to geo.LatLng) bool {
	n, ok := s.nodes[id]
	if !ok || len(n.latLngs) == 0 {
		return false
	}
	from := n.anchor()
	s.Fire(id, Event{Type: EventDragStart, LatLng: from})
	delta := to.Sub(from)
	for i := range n.latLngs {
		n.latLngs[i] = n.latLngs[i].Add(delta)
	}
	s.Fire(id, Event{Type: EventDrag, LatLng: to})
	s.Fire(id, Event{Type: EventDragEnd, LatLng: to})
	return true
}

// RightDrag simulates rotating with the right mouse button held: a map
// mousedown at from followed by a mousemove to to.
func (s *Scene) RightDrag(from, to geo.LatLng) {
	s.MapEvent(Event{Type: EventMouseDown, LatLng: from, Button: ButtonRight})
	s.MapEvent(Event{Type: EventMouseMove, LatLng: to, Buttons: ButtonsRight})
}

// HitTest returns the id of the topmost visible primitive containing p,
// or empty string. Tolerance (degrees) widens point-like primitives.
func (s *Scene) HitTest(p geo.LatLng, tolerance float64) string {
	nodes := s.visibleNodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		b := n.bounds()
		if n.kind == KindMarker || n.kind == KindPolyline {
			b = b.Pad(tolerance)
		}
		if b.Contains(p) {
			return n.id
		}
	}
	return ""
}

// --- Queries ---

// LayerState describes one layer for a layer control.
type LayerState struct {
	Name    string `json:"name"`
	Visible bool   `json:"visible"`
	Count   int    `json:"count"`
}

// Layers returns the layers in creation order.
func (s *Scene) Layers() []LayerState {
	out := make([]LayerState, 0, len(s.layers))
	for _, l := range s.layers {
		count := 0
		for _, n := range s.nodes {
			if n.layer == l && !n.style.Handle {
				count++
			}
		}
		out = append(out, LayerState{Name: l.name, Visible: l.visible, Count: count})
	}
	return out
}

// SetLayerVisible shows or hides every layer with the given name.
func (s *Scene) SetLayerVisible(name string, visible bool) bool {
	found := false
	for _, l := range s.layers {
		if l.name == name {
			l.visible = visible
			found = true
		}
	}
	return found
}

// Lookup returns the compiled state of an attached primitive.
func (s *Scene) Lookup(id string) (DrawCommand, bool) {
	n, ok := s.nodes[id]
	if !ok {
		return DrawCommand{}, false
	}
	return n.command(), true
}

// Len returns the number of attached primitives.
func (s *Scene) Len() int {
	return len(s.nodes)
}

// Bounds returns the combined bounds of all visible primitives.
func (s *Scene) Bounds() geo.Bounds {
	var b geo.Bounds
	for _, n := range s.visibleNodes() {
		b = b.Union(n.bounds())
	}
	return b
}

// visibleNodes returns attached primitives on visible layers in painter's
// order (back to front).
func (s *Scene) visibleNodes() []*node {
	out := make([]*node, 0, len(s.nodes))
	for _, n := range s.nodes {
		if n.layer != nil && n.layer.visible {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].style.Handle != out[j].style.Handle {
			return !out[i].style.Handle
		}
		return out[i].seq < out[j].seq
	})
	return out
}
