package render

import (
	"strings"
	"testing"

	"github.com/festmap/festmap/backend-go/internal/document"
	"github.com/festmap/festmap/backend-go/internal/geo"
)

func square(center geo.LatLng, d float64) []geo.LatLng {
	return []geo.LatLng{
		{Lat: center.Lat - d, Lng: center.Lng - d},
		{Lat: center.Lat - d, Lng: center.Lng + d},
		{Lat: center.Lat + d, Lng: center.Lng + d},
		{Lat: center.Lat + d, Lng: center.Lng - d},
	}
}

func TestSceneAttach(t *testing.T) {
	s := NewScene(document.Viewport{Lat: 49, Lng: 8, Zoom: 17})
	layer := s.NewLayer("Zelte")

	h := s.Create("item_1", KindPolygon, Style{Color: "#ff0000", Draggable: true})
	if s.Len() != 0 {
		t.Fatal("expected detached primitive to be outside the scene")
	}

	h.SetLatLngs(square(geo.LatLng{Lat: 49, Lng: 8}, 0.001))
	h.BindTooltip("Zelt")
	h.AddTo(layer)

	cmds := s.Compile()
	if len(cmds) != 1 {
		t.Fatalf("expected 1 command, got %d", len(cmds))
	}
	if cmds[0].ObjectID != "item_1" || cmds[0].Layer != "Zelte" || cmds[0].Tooltip != "Zelt" {
		t.Fatalf("unexpected command %+v", cmds[0])
	}

	h.RemoveFrom(layer)
	if s.Len() != 0 {
		t.Fatal("expected primitive to leave the scene")
	}
}

func TestSceneEvents(t *testing.T) {
	s := NewScene(document.Viewport{})
	layer := s.NewLayer("a")
	h := s.Create("p", KindPolygon, Style{})
	h.SetLatLngs(square(geo.LatLng{Lat: 10, Lng: 10}, 1))
	h.AddTo(layer)

	var got []EventType
	for _, ev := range []EventType{EventClick, EventDragStart, EventDrag, EventDragEnd} {
		h.On(ev, func(e Event) { got = append(got, e.Type) })
	}

	t.Run("click on primitive", func(t *testing.T) {
		got = nil
		if id := s.ClickAt(geo.LatLng{Lat: 10.5, Lng: 9.5}, 0, false); id != "p" {
			t.Fatalf("expected hit on p, got %q", id)
		}
		if len(got) != 1 || got[0] != EventClick {
			t.Fatalf("expected click event, got %v", got)
		}
	})

	t.Run("click on empty map", func(t *testing.T) {
		mapClicks := 0
		off := s.OnMap(EventClick, func(Event) { mapClicks++ })
		defer off()
		if id := s.ClickAt(geo.LatLng{Lat: 50, Lng: 50}, 0, false); id != "" {
			t.Fatalf("expected no hit, got %q", id)
		}
		if mapClicks != 1 {
			t.Fatalf("expected 1 map click, got %d", mapClicks)
		}
	})

	t.Run("drag moves anchor", func(t *testing.T) {
		got = nil
		if !s.Drag("p", geo.LatLng{Lat: 20, Lng: 20}) {
			t.Fatal("expected drag to succeed")
		}
		if len(got) != 3 || got[0] != EventDragStart || got[2] != EventDragEnd {
			t.Fatalf("unexpected event order %v", got)
		}
		if c := h.Center(); c != (geo.LatLng{Lat: 20, Lng: 20}) {
			t.Fatalf("expected center (20,20), got %v", c)
		}
	})
}

func TestSceneMapHandlers(t *testing.T) {
	s := NewScene(document.Viewport{})
	calls := 0
	var offSecond func()
	s.OnMap(EventMouseDown, func(Event) {
		calls++
		offSecond()
	})
	offSecond = s.OnMap(EventMouseDown, func(Event) { calls += 10 })

	s.MapEvent(Event{Type: EventMouseDown})
	if calls != 1 {
		t.Fatalf("expected handler removed mid-dispatch to be skipped, got %d", calls)
	}
	s.MapEvent(Event{Type: EventMouseMove})
	if calls != 1 {
		t.Fatalf("expected mousemove not to reach mousedown handlers, got %d", calls)
	}
}

func TestSceneLayers(t *testing.T) {
	s := NewScene(document.Viewport{})
	a := s.NewLayer("a")
	b := s.NewLayer("b")

	pa := s.Create("pa", KindMarker, Style{})
	pa.SetLatLng(geo.LatLng{Lat: 1, Lng: 1})
	pa.AddTo(a)
	pb := s.Create("pb", KindCircle, Style{})
	pb.SetLatLng(geo.LatLng{Lat: 1, Lng: 1})
	pb.SetRadius(10)
	pb.AddTo(b)

	if id := s.HitTest(geo.LatLng{Lat: 1, Lng: 1}, 0.0001); id != "pb" {
		t.Fatalf("expected topmost pb, got %q", id)
	}

	s.SetLayerVisible("b", false)
	if len(s.Compile()) != 1 {
		t.Fatal("expected hidden layer to be skipped")
	}
	if id := s.HitTest(geo.LatLng{Lat: 1, Lng: 1}, 0.0001); id != "pa" {
		t.Fatalf("expected pa once b is hidden, got %q", id)
	}

	s.RemoveLayer(a)
	if _, ok := s.Lookup("pa"); ok {
		t.Fatal("expected primitive of removed layer to be gone")
	}
	layers := s.Layers()
	if len(layers) != 1 || layers[0].Name != "b" || layers[0].Visible {
		t.Fatalf("unexpected layers %+v", layers)
	}
}

func TestDrawCommandsToJSON(t *testing.T) {
	out, err := DrawCommandsToJSON(nil)
	if err != nil || out != "[]" {
		t.Fatalf("expected [], got %q (%v)", out, err)
	}
	out, err = DrawCommandsToJSON([]DrawCommand{{Op: KindCircle, ObjectID: "c", Radius: 3}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `"radius":3`) {
		t.Fatalf("expected radius in %s", out)
	}
}
