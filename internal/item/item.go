// Package item implements the map items: rectangles, circles, paths,
// cables and point markers placed on an event site.
//
// An Item owns its attributes and exactly one rendering primitive. Every
// setter recomputes the geometry and pushes it to the primitive. Items never
// touch the collection they live in; they report back through Host.
package item

import (
	"github.com/festmap/festmap/backend-go/internal/document"
	"github.com/festmap/festmap/backend-go/internal/geo"
	"github.com/festmap/festmap/backend-go/internal/render"
)

// HighlightColor is the stroke color of selected items.
const HighlightColor = "#008000"

// Host is the owner of an item, normally the item manager.
type Host interface {
	Renderer() render.Renderer
	// PushHistorySnapshot records an undo step before a user edit.
	PushHistorySnapshot()
	// PushGestureSnapshot records an undo step for the current map
	// mousedown; items reacting to the same mousedown share it.
	PushGestureSnapshot()
	// DeselectAll clears the selection before a plain click selects one item.
	DeselectAll()
	// SelectionChanged is called after the item was selected or deselected.
	SelectionChanged()
	// ItemMutated is called after an interactive edit changed the item.
	ItemMutated(it *Item)
	RemoveFromCategory(it *Item)
	AddToCategory(it *Item)
}

type Item struct {
	id       string
	kind     document.ItemType
	variant  *variant
	name     string
	category string
	color    string
	material []string
	position geo.LatLng
	selected bool

	rect   *rectangle
	circle *circle
	path   *path
	cable  *cable

	host   Host
	handle render.Handle
	layer  render.Layer
	wired  bool
}

// New validates rec and builds the item. rec.Type must name a known variant.
func New(host Host, id string, rec document.Record) (*Item, error) {
	v, ok := variants[rec.Type]
	if !ok {
		return nil, &ValidationError{Kind: rec.Type, Fields: []string{"type"}}
	}
	if err := Validate(rec); err != nil {
		return nil, err
	}

	it := &Item{
		id:       id,
		kind:     rec.Type,
		variant:  v,
		name:     rec.Name,
		category: rec.Category,
		color:    rec.Color,
		material: append([]string{}, rec.Material...),
		position: rec.Position(),
		host:     host,
	}
	v.build(it, rec)
	it.handle = host.Renderer().Create(id, v.primitive, render.Style{Color: it.color, Draggable: true})
	return it, nil
}

func (it *Item) ID() string                { return it.id }
func (it *Item) Type() document.ItemType   { return it.kind }
func (it *Item) Name() string              { return it.name }
func (it *Item) Category() string          { return it.category }
func (it *Item) Color() string             { return it.color }
func (it *Item) Position() geo.LatLng      { return it.position }
func (it *Item) Selected() bool            { return it.selected }
func (it *Item) Handle() render.Handle     { return it.handle }
func (it *Item) Material() []string        { return append([]string{}, it.material...) }
func (it *Item) Attached() bool            { return it.layer != nil }

// Materials returns the bill-of-materials entries of the item: its
// material list, or its name when that list is empty.
func (it *Item) Materials() []string {
	if len(it.material) == 0 {
		return []string{it.name}
	}
	return it.Material()
}

// Attach adds the primitive to layer, wires input callbacks on first use
// and syncs the geometry.
func (it *Item) Attach(layer render.Layer) {
	if !it.wired {
		it.handle.BindTooltip(it.name)
		it.handle.On(render.EventDragStart, it.onDragStart)
		it.handle.On(render.EventDragEnd, it.onDragEnd)
		it.handle.On(render.EventClick, it.onClick)
		it.wired = true
	}
	it.handle.AddTo(layer)
	it.layer = layer
	if it.selected && it.variant.onAttach != nil {
		it.variant.onAttach(it)
	}
	it.Update()
}

// Detach removes the primitive (and any edit handles) from its layer.
func (it *Item) Detach() {
	if it.layer == nil {
		return
	}
	if it.variant.onDetach != nil {
		it.variant.onDetach(it)
	}
	it.handle.RemoveFrom(it.layer)
	it.layer = nil
}

// Update recomputes the primitive from the current attributes and
// reapplies the selection style. Safe to call redundantly.
func (it *Item) Update() {
	it.handle.BindTooltip(it.name)
	it.variant.update(it)
	if !it.variant.styled {
		return
	}
	color := it.color
	if it.selected {
		color = HighlightColor
	}
	it.handle.SetStyle(render.Style{Color: color, Draggable: true})
}

// Select marks the item selected and notifies the host.
func (it *Item) Select() {
	if !it.selected {
		it.selected = true
		if it.variant.onSelect != nil {
			it.variant.onSelect(it)
		}
	}
	it.Update()
	it.host.SelectionChanged()
}

// Deselect clears the selection flag and notifies the host.
func (it *Item) Deselect() {
	if it.selected {
		if it.variant.onDeselect != nil {
			it.variant.onDeselect(it)
		}
		it.selected = false
	}
	it.Update()
	it.host.SelectionChanged()
}

// Delete deselects the item and detaches it from rendering. Removing it
// from the collection is the host's job.
func (it *Item) Delete() {
	it.Deselect()
	if it.layer != nil {
		it.host.RemoveFromCategory(it)
	}
}

// SetPosition moves the item. Paths and cables move all vertices by the
// offset between pos and their first vertex.
func (it *Item) SetPosition(pos geo.LatLng) {
	if it.variant.setPosition != nil {
		it.variant.setPosition(it, pos)
	}
	it.position = pos
	it.Update()
}

func (it *Item) SetName(name string) {
	it.name = name
	it.Update()
}

func (it *Item) SetColor(color string) {
	it.color = color
	it.Update()
}

func (it *Item) SetMaterial(material []string) {
	it.material = append([]string{}, material...)
	it.Update()
}

// SetCategory moves the item to another category layer.
func (it *Item) SetCategory(category string) {
	if it.category == category {
		return
	}
	attached := it.layer != nil
	if attached {
		it.host.RemoveFromCategory(it)
	}
	it.category = category
	if attached {
		it.host.AddToCategory(it)
	}
	it.Update()
}

// Export returns the serialized form of the item.
func (it *Item) Export() document.Record {
	rec := document.Record{
		Type:     it.kind,
		Name:     it.name,
		Category: it.category,
		Color:    it.color,
		Lat:      document.Float(it.position.Lat),
		Lng:      document.Float(it.position.Lng),
		Material: it.Material(),
	}
	it.variant.export(it, &rec)
	return rec
}

func (it *Item) onDragStart(render.Event) {
	it.host.PushHistorySnapshot()
}

func (it *Item) onDragEnd(e render.Event) {
	if it.path != nil {
		it.SetPosition(e.LatLng)
	} else {
		it.SetPosition(it.handle.Center())
	}
	it.host.ItemMutated(it)
}

func (it *Item) onClick(e render.Event) {
	if e.Ctrl {
		if it.selected {
			it.Deselect()
		} else {
			it.Select()
		}
		return
	}
	it.host.DeselectAll()
	it.Select()
}
