package item

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/festmap/festmap/backend-go/internal/document"
	"github.com/festmap/festmap/backend-go/internal/geo"
	"github.com/festmap/festmap/backend-go/internal/render"
)

type testHost struct {
	scene     *render.Scene
	layer     render.Layer
	snapshots int
	selection int
	mutated   int
	items     []*Item
}

func newTestHost() *testHost {
	scene := render.NewScene(document.Viewport{Lat: 49.02, Lng: 8.42, Zoom: 17})
	return &testHost{scene: scene, layer: scene.NewLayer("test")}
}

func (h *testHost) Renderer() render.Renderer { return h.scene }
func (h *testHost) PushHistorySnapshot()      { h.snapshots++ }
func (h *testHost) PushGestureSnapshot()      { h.snapshots++ }
func (h *testHost) SelectionChanged()         { h.selection++ }
func (h *testHost) ItemMutated(*Item)         { h.mutated++ }
func (h *testHost) RemoveFromCategory(it *Item) {
	it.Detach()
}
func (h *testHost) AddToCategory(it *Item) {
	it.Attach(h.layer)
}
func (h *testHost) DeselectAll() {
	for _, it := range h.items {
		if it.Selected() {
			it.Deselect()
		}
	}
}

func (h *testHost) add(t *testing.T, id string, rec document.Record) *Item {
	t.Helper()
	it, err := New(h, id, rec)
	if err != nil {
		t.Fatalf("expected item, got error %v", err)
	}
	it.Attach(h.layer)
	h.items = append(h.items, it)
	return it
}

func base(kind document.ItemType, name string) document.Record {
	return document.Record{
		Type:     kind,
		Name:     name,
		Category: "Möbel",
		Color:    "#8b5a2b",
		Lat:      document.Float(49.02),
		Lng:      document.Float(8.42),
		Material: []string{},
	}
}

func rectangleRecord() document.Record {
	rec := base(document.ItemTypeRectangle, "Zelt")
	rec.XSize = document.Float(12)
	rec.YSize = document.Float(6)
	rec.Rotation = document.Float(0)
	return rec
}

func circleRecord() document.Record {
	rec := base(document.ItemTypeCircle, "Pavillon")
	rec.Radius = document.Float(4)
	return rec
}

func pathRecord(kind document.ItemType) document.Record {
	rec := base(kind, "Weg")
	rec.LatLngs = []geo.LatLng{{Lat: 49.02, Lng: 8.42}, {Lat: 49.021, Lng: 8.42}, {Lat: 49.021, Lng: 8.421}}
	return rec
}

func cableRecord() document.Record {
	rec := pathRecord(document.ItemTypeCable)
	rec.Name = "Kabel"
	rec.Length = document.Float(25)
	rec.Current = document.Current32A
	return rec
}

func TestRoundTrip(t *testing.T) {
	records := map[string]document.Record{
		"rectangle": rectangleRecord(),
		"circle":    circleRecord(),
		"path":      pathRecord(document.ItemTypePath),
		"cable":     cableRecord(),
		"socket":    base(document.ItemTypeSocket, "Steckdose"),
		"marker":    base(document.ItemTypeMarker, "Treffpunkt"),
	}

	for name, rec := range records {
		t.Run(name, func(t *testing.T) {
			h := newTestHost()
			it := h.add(t, "a", rec)
			it.Select()

			copied := h.add(t, "b", it.Export())
			if copied.Selected() {
				t.Fatalf("expected reconstructed item to be deselected")
			}
			if !reflect.DeepEqual(copied.Export(), it.Export()) {
				t.Fatalf("expected %+v, got %+v", it.Export(), copied.Export())
			}
			if !reflect.DeepEqual(it.Export(), rec) {
				t.Fatalf("expected export %+v to equal input %+v", it.Export(), rec)
			}
		})
	}
}

func TestUpdateIdempotent(t *testing.T) {
	for _, rec := range []document.Record{rectangleRecord(), circleRecord(), pathRecord(document.ItemTypePath)} {
		h := newTestHost()
		it := h.add(t, "a", rec)

		it.Update()
		first, _ := h.scene.Lookup("a")
		it.Update()
		second, _ := h.scene.Lookup("a")
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("expected %+v, got %+v", first, second)
		}
	}
}

func TestRectangleCorners(t *testing.T) {
	h := newTestHost()
	it := h.add(t, "a", rectangleRecord())

	corners := it.Corners()
	if len(corners) != 4 {
		t.Fatalf("expected 4 corners, got %d", len(corners))
	}
	latLength, lngLength := geo.MetersToDegrees(49.02)

	b := geo.BoundsOf(corners...)
	width := (b.East - b.West) * lngLength
	height := (b.North - b.South) * latLength
	if math.Abs(width-12) > 1e-6 {
		t.Fatalf("expected width 12, got %f", width)
	}
	if math.Abs(height-6) > 1e-6 {
		t.Fatalf("expected height 6, got %f", height)
	}
	center := b.Center()
	if math.Abs(center.Lat-49.02) > 1e-12 || math.Abs(center.Lng-8.42) > 1e-12 {
		t.Fatalf("expected center at the anchor, got %+v", center)
	}

	t.Run("rotated quarter turn swaps axes", func(t *testing.T) {
		it.SetRotation(90)
		b := geo.BoundsOf(it.Corners()...)
		width := (b.East - b.West) * lngLength
		height := (b.North - b.South) * latLength
		if math.Abs(width-6) > 1e-6 || math.Abs(height-12) > 1e-6 {
			t.Fatalf("expected 6x12, got %fx%f", width, height)
		}
	})
}

func TestRectangleRightDragRotates(t *testing.T) {
	h := newTestHost()
	it := h.add(t, "a", rectangleRecord())
	center := it.Position()

	// not selected: no rotation
	h.scene.RightDrag(geo.LatLng{Lat: center.Lat + 0.001, Lng: center.Lng}, geo.LatLng{Lat: center.Lat, Lng: center.Lng + 0.001})
	if it.Rotation() != 0 {
		t.Fatalf("expected rotation 0, got %f", it.Rotation())
	}

	it.Select()
	h.scene.RightDrag(geo.LatLng{Lat: center.Lat + 0.001, Lng: center.Lng}, geo.LatLng{Lat: center.Lat, Lng: center.Lng + 0.001})
	if math.Abs(it.Rotation()-90) > 1e-9 {
		t.Fatalf("expected rotation 90, got %f", it.Rotation())
	}
	if h.snapshots != 1 {
		t.Fatalf("expected 1 snapshot, got %d", h.snapshots)
	}
	if h.mutated != 1 {
		t.Fatalf("expected 1 mutation event, got %d", h.mutated)
	}

	it.Deselect()
	h.scene.RightDrag(geo.LatLng{Lat: center.Lat + 0.001, Lng: center.Lng}, geo.LatLng{Lat: center.Lat - 0.001, Lng: center.Lng})
	if math.Abs(it.Rotation()-90) > 1e-9 {
		t.Fatalf("expected rotation to stay 90 after deselect, got %f", it.Rotation())
	}
}

func TestPathLength(t *testing.T) {
	h := newTestHost()
	rec := base(document.ItemTypePath, "Weg")
	rec.LatLngs = []geo.LatLng{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 0.001}}
	it := h.add(t, "a", rec)

	if math.Abs(it.Length()-111) > 1 {
		t.Fatalf("expected about 111 m, got %f", it.Length())
	}
	if it.LengthText() != "111.2 m" {
		t.Fatalf("expected 111.2 m, got %s", it.LengthText())
	}
}

func TestPathSetPositionTranslates(t *testing.T) {
	h := newTestHost()
	it := h.add(t, "a", pathRecord(document.ItemTypePath))
	before := it.LatLngs()

	it.SetPosition(geo.LatLng{Lat: 49.03, Lng: 8.43})

	after := it.LatLngs()
	for i := range before {
		d := after[i].Sub(before[i])
		if math.Abs(d.Lat-0.01) > 1e-9 || math.Abs(d.Lng-0.01) > 1e-9 {
			t.Fatalf("expected vertex %d shifted by 0.01, got %+v", i, d)
		}
	}
}

func TestPathDrag(t *testing.T) {
	h := newTestHost()
	it := h.add(t, "a", pathRecord(document.ItemTypePath))

	if !h.scene.Drag("a", geo.LatLng{Lat: 49.0, Lng: 8.4}) {
		t.Fatalf("expected drag to hit the path")
	}
	if h.snapshots != 1 {
		t.Fatalf("expected 1 snapshot, got %d", h.snapshots)
	}
	first := it.LatLngs()[0]
	if math.Abs(first.Lat-49.0) > 1e-12 || math.Abs(first.Lng-8.4) > 1e-12 {
		t.Fatalf("expected first vertex at drop point, got %+v", first)
	}
	if it.Position() != (geo.LatLng{Lat: 49.0, Lng: 8.4}) {
		t.Fatalf("expected position at drop point, got %+v", it.Position())
	}
}

func TestPathVertexEditing(t *testing.T) {
	h := newTestHost()
	it := h.add(t, "a", pathRecord(document.ItemTypePath))

	if _, ok := h.scene.Lookup(VertexHandleID("a", 0)); ok {
		t.Fatalf("expected no handles before selection")
	}

	it.Select()
	for i := 0; i < 3; i++ {
		if _, ok := h.scene.Lookup(VertexHandleID("a", i)); !ok {
			t.Fatalf("expected vertex handle %d", i)
		}
	}
	if _, ok := h.scene.Lookup(MidpointHandleID("a", 1)); !ok {
		t.Fatalf("expected midpoint handle 1")
	}

	t.Run("drag vertex", func(t *testing.T) {
		to := geo.LatLng{Lat: 49.025, Lng: 8.42}
		h.scene.Drag(VertexHandleID("a", 1), to)
		if it.LatLngs()[1] != to {
			t.Fatalf("expected vertex at %+v, got %+v", to, it.LatLngs()[1])
		}
	})

	t.Run("click midpoint inserts", func(t *testing.T) {
		snapshots := h.snapshots
		pts := it.LatLngs()
		h.scene.Click(MidpointHandleID("a", 0), false)
		if len(it.LatLngs()) != 4 {
			t.Fatalf("expected 4 vertices, got %d", len(it.LatLngs()))
		}
		if it.LatLngs()[1] != pts[0].Midpoint(pts[1]) {
			t.Fatalf("expected midpoint inserted, got %+v", it.LatLngs()[1])
		}
		if h.snapshots != snapshots+1 {
			t.Fatalf("expected snapshot before insert")
		}
		if _, ok := h.scene.Lookup(VertexHandleID("a", 3)); !ok {
			t.Fatalf("expected handles to be rebuilt")
		}
	})

	t.Run("right click deletes", func(t *testing.T) {
		h.scene.Fire(VertexHandleID("a", 3), render.Event{Type: render.EventContextMenu})
		if len(it.LatLngs()) != 3 {
			t.Fatalf("expected 3 vertices, got %d", len(it.LatLngs()))
		}
		if _, ok := h.scene.Lookup(VertexHandleID("a", 3)); ok {
			t.Fatalf("expected stale handle removed")
		}
	})

	t.Run("out of range is a no-op", func(t *testing.T) {
		it.DeleteVertex(10)
		it.InsertVertex(-1, geo.LatLng{})
		it.UpdateVertex(3, geo.LatLng{})
		if len(it.LatLngs()) != 3 {
			t.Fatalf("expected 3 vertices, got %d", len(it.LatLngs()))
		}
	})

	it.Deselect()
	if h.scene.Len() != 1 {
		t.Fatalf("expected only the path left in the scene, got %d", h.scene.Len())
	}
}

func TestSelectionStyle(t *testing.T) {
	h := newTestHost()
	it := h.add(t, "a", rectangleRecord())

	it.Select()
	cmd, _ := h.scene.Lookup("a")
	if cmd.Color != HighlightColor {
		t.Fatalf("expected %s, got %s", HighlightColor, cmd.Color)
	}
	it.Deselect()
	cmd, _ = h.scene.Lookup("a")
	if cmd.Color != "#8b5a2b" {
		t.Fatalf("expected own color, got %s", cmd.Color)
	}
}

func TestClickSelection(t *testing.T) {
	h := newTestHost()
	a := h.add(t, "a", base(document.ItemTypeSocket, "A"))
	b := h.add(t, "b", base(document.ItemTypeSocket, "B"))

	h.scene.Click("a", false)
	h.scene.Click("b", false)
	if a.Selected() || !b.Selected() {
		t.Fatalf("expected only b selected")
	}

	h.scene.Click("a", true)
	if !a.Selected() || !b.Selected() {
		t.Fatalf("expected both selected after ctrl click")
	}

	h.scene.Click("b", true)
	if !a.Selected() || b.Selected() {
		t.Fatalf("expected ctrl click to toggle b only")
	}
}

func TestValidation(t *testing.T) {
	t.Run("missing shared fields", func(t *testing.T) {
		rec := rectangleRecord()
		rec.Name = ""
		rec.Lat = nil
		_, err := New(newTestHost(), "a", rec)
		if !errors.Is(err, ErrInvalidItem) {
			t.Fatalf("expected ErrInvalidItem, got %v", err)
		}
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected ValidationError, got %T", err)
		}
		if !reflect.DeepEqual(ve.Fields, []string{"name", "lat"}) {
			t.Fatalf("expected [name lat], got %v", ve.Fields)
		}
	})

	t.Run("missing variant fields", func(t *testing.T) {
		rec := rectangleRecord()
		rec.Rotation = nil
		if _, err := New(newTestHost(), "a", rec); !errors.Is(err, ErrInvalidItem) {
			t.Fatalf("expected ErrInvalidItem, got %v", err)
		}

		rec = pathRecord(document.ItemTypeCable)
		rec.LatLngs = nil
		if _, err := New(newTestHost(), "a", rec); !errors.Is(err, ErrInvalidItem) {
			t.Fatalf("expected ErrInvalidItem for cable, got %v", err)
		}
	})

	t.Run("empty vertex list is valid", func(t *testing.T) {
		rec := pathRecord(document.ItemTypePath)
		rec.LatLngs = []geo.LatLng{}
		if _, err := New(newTestHost(), "a", rec); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		rec := rectangleRecord()
		rec.Type = "Hexagon"
		if _, err := New(newTestHost(), "a", rec); !errors.Is(err, ErrInvalidItem) {
			t.Fatalf("expected ErrInvalidItem, got %v", err)
		}
	})
}

func TestFields(t *testing.T) {
	h := newTestHost()
	c := h.add(t, "c", cableRecord())

	keys := []string{}
	for _, f := range c.Fields() {
		keys = append(keys, f.Key)
	}
	expected := []string{"name", "category", "color", "material", "length", "cableLength", "current"}
	if !reflect.DeepEqual(keys, expected) {
		t.Fatalf("expected %v, got %v", expected, keys)
	}

	tests := []struct {
		key   string
		value string
		err   error
	}{
		{"name", "Hauptkabel", nil},
		{"color", "#ff0000", nil},
		{"color", "red-ish", ErrInvalidValue},
		{"material", "Kabel, Verteiler", nil},
		{"cableLength", "12,5", nil},
		{"cableLength", "-1", ErrInvalidValue},
		{"cableLength", "NaN", ErrInvalidValue},
		{"cableLength", "+Inf", ErrInvalidValue},
		{"current", "63A", nil},
		{"current", "400V", ErrInvalidValue},
		{"length", "3", ErrInvalidValue},
		{"radius", "3", ErrUnknownField},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			err := c.SetField(tt.key, tt.value)
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected %v, got %v", tt.err, err)
			}
		})
	}

	if c.Name() != "Hauptkabel" || c.Color() != "#ff0000" || c.Current() != document.Current63A {
		t.Fatalf("expected fields applied, got %+v", c.Export())
	}
	if l, _ := c.CableLength(); l != 12.5 {
		t.Fatalf("expected cable length 12.5, got %f", l)
	}
	if !reflect.DeepEqual(c.Materials(), []string{"Kabel", "Verteiler"}) {
		t.Fatalf("expected split material, got %v", c.Materials())
	}
}

func TestFieldsRejectNonFinite(t *testing.T) {
	h := newTestHost()
	r := h.add(t, "r", rectangleRecord())
	c := h.add(t, "c", circleRecord())

	for _, value := range []string{"NaN", "nan", "Inf", "-Inf", "Infinity"} {
		t.Run(value, func(t *testing.T) {
			for _, key := range []string{"xSize", "ySize", "rotation"} {
				if err := r.SetField(key, value); !errors.Is(err, ErrInvalidValue) {
					t.Fatalf("expected ErrInvalidValue for %s=%s, got %v", key, value, err)
				}
			}
			if err := c.SetField("radius", value); !errors.Is(err, ErrInvalidValue) {
				t.Fatalf("expected ErrInvalidValue for radius=%s, got %v", value, err)
			}
		})
	}

	x, y := r.Size()
	if math.IsNaN(x) || math.IsNaN(y) || math.IsNaN(r.Rotation()) {
		t.Fatalf("expected rectangle untouched, got %+v", r.Export())
	}
	if math.IsNaN(c.Radius()) {
		t.Fatalf("expected circle untouched, got %+v", c.Export())
	}
}

func TestSetCategoryMovesLayer(t *testing.T) {
	h := newTestHost()
	it := h.add(t, "a", pathRecord(document.ItemTypePath))
	it.Select()

	if err := it.SetField("category", "Wege"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if it.Category() != "Wege" {
		t.Fatalf("expected category Wege, got %s", it.Category())
	}
	if !it.Attached() {
		t.Fatalf("expected item reattached")
	}
	if _, ok := h.scene.Lookup(VertexHandleID("a", 0)); !ok {
		t.Fatalf("expected handles to follow the item")
	}
}

func TestDelete(t *testing.T) {
	h := newTestHost()
	it := h.add(t, "a", pathRecord(document.ItemTypePath))
	it.Select()
	it.Delete()

	if it.Selected() || it.Attached() {
		t.Fatalf("expected deleted item deselected and detached")
	}
	if h.scene.Len() != 0 {
		t.Fatalf("expected empty scene, got %d", h.scene.Len())
	}
}

func TestMaterials(t *testing.T) {
	h := newTestHost()
	rec := base(document.ItemTypeSocket, "Steckdose")
	it := h.add(t, "a", rec)
	if !reflect.DeepEqual(it.Materials(), []string{"Steckdose"}) {
		t.Fatalf("expected name fallback, got %v", it.Materials())
	}
}
