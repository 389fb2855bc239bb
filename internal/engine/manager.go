// Package engine implements the item manager: the collection of map items,
// their category layers, selection, clipboard and snapshot undo history.
//
// A Manager is single-threaded. Every operation runs to completion inside
// one input callback; callers that share a Manager across goroutines must
// serialize access themselves.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/festmap/festmap/backend-go/internal/document"
	"github.com/festmap/festmap/backend-go/internal/geo"
	"github.com/festmap/festmap/backend-go/internal/item"
	"github.com/festmap/festmap/backend-go/internal/render"
	"github.com/festmap/festmap/backend-go/internal/typeid"
)

// Manager owns the items of one map and is the Host of each of them.
type Manager struct {
	renderer render.Renderer
	logger   *slog.Logger
	newID    func() string

	// items keeps nil tombstones for deleted entries so positions stay stable.
	items  []*item.Item
	layers map[string]*categoryLayer

	clipboard []document.Record
	history   *History

	selectionHandlers []func([]*item.Item)
	mutationHandlers  []func(*item.Item)
	// quiet suppresses per-item selection events during bulk operations.
	quiet bool

	// mouseDowns counts map mousedowns; gestureStep is the count at which
	// the last gesture snapshot was taken.
	mouseDowns  int
	gestureStep int
}

type categoryLayer struct {
	layer   render.Layer
	members int
}

type Option func(*Manager)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithHistoryLimit caps the number of stored undo snapshots.
func WithHistoryLimit(limit int) Option {
	return func(m *Manager) { m.history = NewHistory(limit) }
}

// WithIDGenerator replaces the typeid item id generator.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) { m.newID = fn }
}

// New creates an empty manager drawing through renderer.
func New(renderer render.Renderer, opts ...Option) *Manager {
	m := &Manager{
		renderer: renderer,
		logger:   slog.Default(),
		newID:    typeid.NewItemID,
		layers:   make(map[string]*categoryLayer),
		history:  NewHistory(0),
	}
	for _, opt := range opts {
		opt(m)
	}
	// Registered before any item subscribes, so the count is current when
	// items react to the same mousedown.
	renderer.OnMap(render.EventMouseDown, func(render.Event) { m.mouseDowns++ })
	return m
}

// --- Host ---

func (m *Manager) Renderer() render.Renderer { return m.renderer }

// SelectionChanged forwards item selection changes to subscribers.
func (m *Manager) SelectionChanged() {
	if m.quiet {
		return
	}
	m.emitSelection()
}

// PushGestureSnapshot records one undo step per map mousedown, however
// many selected items start an edit from it.
func (m *Manager) PushGestureSnapshot() {
	if m.mouseDowns > 0 && m.gestureStep == m.mouseDowns {
		return
	}
	m.gestureStep = m.mouseDowns
	m.PushHistorySnapshot()
}

func (m *Manager) ItemMutated(it *item.Item) {
	for _, fn := range m.mutationHandlers {
		fn(it)
	}
}

// AddToCategory attaches it to the layer of its category, creating the
// layer on first use.
func (m *Manager) AddToCategory(it *item.Item) {
	cl, ok := m.layers[it.Category()]
	if !ok {
		cl = &categoryLayer{layer: m.renderer.NewLayer(it.Category())}
		m.layers[it.Category()] = cl
		m.logger.Debug("created category layer", "category", it.Category())
	}
	cl.members++
	it.Attach(cl.layer)
}

// RemoveFromCategory detaches it from its category layer. Layers without
// members are removed from the map.
func (m *Manager) RemoveFromCategory(it *item.Item) {
	cl, ok := m.layers[it.Category()]
	if !ok || !it.Attached() {
		return
	}
	it.Detach()
	cl.members--
	if cl.members <= 0 {
		m.renderer.RemoveLayer(cl.layer)
		delete(m.layers, it.Category())
	}
}

// --- Events ---

// OnSelectionChanged subscribes to selection changes. fn receives the
// current selection.
func (m *Manager) OnSelectionChanged(fn func(selected []*item.Item)) {
	m.selectionHandlers = append(m.selectionHandlers, fn)
}

// OnItemMutated subscribes to interactive edits (drags, rotation, vertex
// edits, field changes).
func (m *Manager) OnItemMutated(fn func(it *item.Item)) {
	m.mutationHandlers = append(m.mutationHandlers, fn)
}

func (m *Manager) emitSelection() {
	if len(m.selectionHandlers) == 0 {
		return
	}
	selected := m.Selected()
	for _, fn := range m.selectionHandlers {
		fn(selected)
	}
}

// --- Commands ---

// AddItem builds an item from rec and attaches it to its category layer.
// Records without a known type become rectangles.
func (m *Manager) AddItem(rec document.Record) (*item.Item, error) {
	if !rec.Type.Known() {
		m.logger.Warn("unknown item type, using Rectangle", "type", rec.Type, "name", rec.Name)
		rec.Type = document.ItemTypeRectangle
	}
	it, err := item.New(m, m.newID(), rec)
	if err != nil {
		return nil, err
	}
	m.items = append(m.items, it)
	m.AddToCategory(it)
	return it, nil
}

// AddFromTemplate records an undo step and places the named palette
// template at the view center.
func (m *Manager) AddFromTemplate(name string) (*item.Item, error) {
	tpl, ok := document.FindTemplate(name)
	if !ok {
		return nil, fmt.Errorf("template %q: %w", name, ErrUnknownTemplate)
	}
	m.PushHistorySnapshot()
	return m.AddItem(tpl.Record(m.renderer.View().Center()))
}

// DeselectAll deselects every selected item and emits one selection event.
func (m *Manager) DeselectAll() {
	m.quiet = true
	for _, it := range m.Selected() {
		it.Deselect()
	}
	m.quiet = false
	m.emitSelection()
}

// DeleteItem deselects and detaches it and leaves a tombstone in its slot.
func (m *Manager) DeleteItem(it *item.Item) {
	idx := m.indexOf(it)
	if idx < 0 {
		return
	}
	it.Delete()
	m.items[idx] = nil
}

// DeleteSelected deletes every selected item.
func (m *Manager) DeleteSelected() {
	selected := m.Selected()
	if len(selected) == 0 {
		return
	}
	m.quiet = true
	for _, it := range selected {
		m.DeleteItem(it)
	}
	m.quiet = false
	m.emitSelection()
}

// DeleteAllItems deletes every item and tears down all category layers.
func (m *Manager) DeleteAllItems() {
	hadSelection := len(m.Selected()) > 0
	m.quiet = true
	for _, it := range m.items {
		if it != nil {
			it.Delete()
		}
	}
	m.quiet = false
	m.items = nil
	for category, cl := range m.layers {
		m.renderer.RemoveLayer(cl.layer)
		delete(m.layers, category)
	}
	if hadSelection {
		m.emitSelection()
	}
}

// SetField records an undo step and sets one property of it. Invalid
// values leave both the item and the history untouched.
func (m *Manager) SetField(it *item.Item, key, value string) error {
	if m.indexOf(it) < 0 {
		return fmt.Errorf("set %s: %w", key, ErrNotManaged)
	}
	apply, err := it.PrepareField(key, value)
	if err != nil {
		return err
	}
	m.PushHistorySnapshot()
	apply()
	m.ItemMutated(it)
	return nil
}

// SetView moves the map view.
func (m *Manager) SetView(view document.Viewport) {
	m.renderer.SetView(view)
}

// --- Queries ---

// Items returns the live items in insertion order.
func (m *Manager) Items() []*item.Item {
	out := make([]*item.Item, 0, len(m.items))
	for _, it := range m.items {
		if it != nil {
			out = append(out, it)
		}
	}
	return out
}

// Slot returns the item at position i of the collection, or nil for a
// tombstone or an out-of-range index.
func (m *Manager) Slot(i int) *item.Item {
	if i < 0 || i >= len(m.items) {
		return nil
	}
	return m.items[i]
}

// Len returns the collection size including tombstones.
func (m *Manager) Len() int { return len(m.items) }

// Lookup finds a live item by id.
func (m *Manager) Lookup(id string) (*item.Item, bool) {
	for _, it := range m.items {
		if it != nil && it.ID() == id {
			return it, true
		}
	}
	return nil, false
}

// Selected returns the selected live items.
func (m *Manager) Selected() []*item.Item {
	var out []*item.Item
	for _, it := range m.items {
		if it != nil && it.Selected() {
			out = append(out, it)
		}
	}
	return out
}

// Layers returns the category names that currently have a layer.
func (m *Manager) Layers() map[string]int {
	out := make(map[string]int, len(m.layers))
	for category, cl := range m.layers {
		out[category] = cl.members
	}
	return out
}

// View returns the current map view.
func (m *Manager) View() document.Viewport {
	return m.renderer.View()
}

func (m *Manager) indexOf(it *item.Item) int {
	if it == nil {
		return -1
	}
	for i, other := range m.items {
		if other == it {
			return i
		}
	}
	return -1
}

// PasteTarget is the point new pastes and palette items land on.
func (m *Manager) PasteTarget() geo.LatLng {
	return m.renderer.View().Center()
}
