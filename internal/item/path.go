package item

import (
	"fmt"

	"github.com/festmap/festmap/backend-go/internal/document"
	"github.com/festmap/festmap/backend-go/internal/geo"
	"github.com/festmap/festmap/backend-go/internal/render"
)

type path struct {
	latLngs []geo.LatLng

	// Edit handles, present only while selected and attached.
	vertices  []render.Handle
	midpoints []render.Handle
}

// cable is a path carrying a nominal length and a plug type.
type cable struct {
	length  *float64
	current document.Current
}

func pathVariant() *variant {
	return &variant{
		primitive: render.KindPolyline,
		styled:    true,
		build: func(it *Item, rec document.Record) {
			it.path = &path{latLngs: append([]geo.LatLng{}, rec.LatLngs...)}
		},
		update: func(it *Item) {
			it.handle.SetLatLngs(it.path.latLngs)
			it.syncHandles()
		},
		export: func(it *Item, rec *document.Record) {
			rec.LatLngs = it.LatLngs()
		},
		fields:      pathFields,
		prepare:     preparePathField,
		setPosition: translatePath,
		onSelect:    func(it *Item) { it.spawnHandles() },
		onDeselect:  func(it *Item) { it.clearHandles() },
		onAttach:    func(it *Item) { it.spawnHandles() },
		onDetach:    func(it *Item) { it.clearHandles() },
	}
}

func cableVariant() *variant {
	v := *pathVariant()
	build, export := v.build, v.export
	v.build = func(it *Item, rec document.Record) {
		build(it, rec)
		it.cable = &cable{current: rec.Current}
		if rec.Length != nil {
			it.cable.length = document.Float(*rec.Length)
		}
	}
	v.export = func(it *Item, rec *document.Record) {
		export(it, rec)
		if it.cable.length != nil {
			rec.Length = document.Float(*it.cable.length)
		}
		rec.Current = it.cable.current
	}
	v.fields = cableFields
	v.prepare = prepareCableField
	return &v
}

func translatePath(it *Item, pos geo.LatLng) {
	if len(it.path.latLngs) == 0 {
		return
	}
	delta := pos.Sub(it.path.latLngs[0])
	for i := range it.path.latLngs {
		it.path.latLngs[i] = it.path.latLngs[i].Add(delta)
	}
}

// LatLngs returns a copy of the path vertices, or nil for other variants.
func (it *Item) LatLngs() []geo.LatLng {
	if it.path == nil {
		return nil
	}
	return append([]geo.LatLng{}, it.path.latLngs...)
}

// Length returns the great-circle length of a path in meters.
func (it *Item) Length() float64 {
	if it.path == nil {
		return 0
	}
	return geo.PathLength(it.path.latLngs)
}

// LengthText formats Length with one decimal and a meter unit.
func (it *Item) LengthText() string {
	return fmt.Sprintf("%.1f m", it.Length())
}

// InsertVertex inserts p before index i. i may equal the vertex count to
// append. Out-of-range indices are ignored.
func (it *Item) InsertVertex(i int, p geo.LatLng) {
	if it.path == nil || i < 0 || i > len(it.path.latLngs) {
		return
	}
	pts := it.path.latLngs
	pts = append(pts, geo.LatLng{})
	copy(pts[i+1:], pts[i:])
	pts[i] = p
	it.path.latLngs = pts
	it.respawnHandles()
	it.Update()
}

func (it *Item) UpdateVertex(i int, p geo.LatLng) {
	if it.path == nil || i < 0 || i >= len(it.path.latLngs) {
		return
	}
	it.path.latLngs[i] = p
	it.Update()
}

func (it *Item) DeleteVertex(i int) {
	if it.path == nil || i < 0 || i >= len(it.path.latLngs) {
		return
	}
	it.path.latLngs = append(it.path.latLngs[:i], it.path.latLngs[i+1:]...)
	it.respawnHandles()
	it.Update()
}

// CableLength returns the nominal cable length and whether it is set.
func (it *Item) CableLength() (float64, bool) {
	if it.cable == nil || it.cable.length == nil {
		return 0, false
	}
	return *it.cable.length, true
}

func (it *Item) SetCableLength(meters float64) {
	if it.cable == nil {
		return
	}
	it.cable.length = document.Float(meters)
	it.Update()
}

func (it *Item) Current() document.Current {
	if it.cable == nil {
		return ""
	}
	return it.cable.current
}

func (it *Item) SetCurrent(c document.Current) {
	if it.cable == nil {
		return
	}
	it.cable.current = c
	it.Update()
}

// VertexHandleID and MidpointHandleID name the edit handles of a selected path.
func VertexHandleID(itemID string, i int) string   { return fmt.Sprintf("%s/vertex/%d", itemID, i) }
func MidpointHandleID(itemID string, i int) string { return fmt.Sprintf("%s/mid/%d", itemID, i) }

func (it *Item) spawnHandles() {
	if it.path == nil || it.layer == nil || !it.selected || it.path.vertices != nil {
		return
	}
	r := it.host.Renderer()
	pts := it.path.latLngs
	it.path.vertices = make([]render.Handle, len(pts))
	for i, p := range pts {
		h := r.Create(VertexHandleID(it.id, i), render.KindMarker, render.Style{Color: HighlightColor, Draggable: true, Handle: true})
		h.SetLatLng(p)
		it.wireVertex(h, i)
		h.AddTo(it.layer)
		it.path.vertices[i] = h
	}
	if len(pts) > 1 {
		it.path.midpoints = make([]render.Handle, len(pts)-1)
		for i := 0; i < len(pts)-1; i++ {
			h := r.Create(MidpointHandleID(it.id, i), render.KindMarker, render.Style{Color: HighlightColor, Draggable: true, Handle: true})
			h.SetLatLng(pts[i].Midpoint(pts[i+1]))
			it.wireMidpoint(h, i)
			h.AddTo(it.layer)
			it.path.midpoints[i] = h
		}
	}
}

func (it *Item) clearHandles() {
	if it.path == nil {
		return
	}
	for _, h := range it.path.vertices {
		h.RemoveFrom(it.layer)
	}
	for _, h := range it.path.midpoints {
		h.RemoveFrom(it.layer)
	}
	it.path.vertices = nil
	it.path.midpoints = nil
}

func (it *Item) respawnHandles() {
	if it.path.vertices == nil {
		return
	}
	it.clearHandles()
	it.spawnHandles()
}

// syncHandles moves existing handles onto the current vertices.
func (it *Item) syncHandles() {
	pts := it.path.latLngs
	if len(it.path.vertices) != len(pts) {
		it.respawnHandles()
		return
	}
	for i, h := range it.path.vertices {
		h.SetLatLng(pts[i])
	}
	for i, h := range it.path.midpoints {
		h.SetLatLng(pts[i].Midpoint(pts[i+1]))
	}
}

func (it *Item) wireVertex(h render.Handle, i int) {
	h.On(render.EventDragStart, func(render.Event) {
		it.host.PushHistorySnapshot()
	})
	h.On(render.EventDrag, func(e render.Event) {
		it.UpdateVertex(i, e.LatLng)
	})
	h.On(render.EventDragEnd, func(e render.Event) {
		it.UpdateVertex(i, e.LatLng)
		it.host.ItemMutated(it)
	})
	h.On(render.EventContextMenu, func(render.Event) {
		it.host.PushHistorySnapshot()
		it.DeleteVertex(i)
		it.host.ItemMutated(it)
	})
}

func (it *Item) wireMidpoint(h render.Handle, i int) {
	h.On(render.EventClick, func(render.Event) {
		it.host.PushHistorySnapshot()
		it.InsertVertex(i+1, it.path.latLngs[i].Midpoint(it.path.latLngs[i+1]))
		it.host.ItemMutated(it)
	})
	h.On(render.EventDragEnd, func(e render.Event) {
		it.host.PushHistorySnapshot()
		it.InsertVertex(i+1, e.LatLng)
		it.host.ItemMutated(it)
	})
}
