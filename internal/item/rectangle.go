package item

import (
	"math"

	"github.com/festmap/festmap/backend-go/internal/document"
	"github.com/festmap/festmap/backend-go/internal/geo"
	"github.com/festmap/festmap/backend-go/internal/render"
)

type rectangle struct {
	xSize    float64 // meters along the local east axis
	ySize    float64 // meters along the local north axis
	rotation float64 // degrees, clockwise

	rotating      bool
	startRotation float64
	offs          []func()
}

func rectangleVariant() *variant {
	return &variant{
		primitive: render.KindPolygon,
		styled:    true,
		build: func(it *Item, rec document.Record) {
			it.rect = &rectangle{xSize: *rec.XSize, ySize: *rec.YSize, rotation: *rec.Rotation}
		},
		update: func(it *Item) {
			it.handle.SetLatLngs(it.Corners())
		},
		export: func(it *Item, rec *document.Record) {
			rec.XSize = document.Float(it.rect.xSize)
			rec.YSize = document.Float(it.rect.ySize)
			rec.Rotation = document.Float(it.rect.rotation)
		},
		fields:  rectangleFields,
		prepare: prepareRectangleField,
		onSelect: func(it *Item) {
			r := it.host.Renderer()
			it.rect.offs = []func(){
				r.OnMap(render.EventMouseDown, it.onRotateStart),
				r.OnMap(render.EventMouseMove, it.onRotateMove),
			}
		},
		onDeselect: func(it *Item) {
			for _, off := range it.rect.offs {
				off()
			}
			it.rect.offs = nil
			it.rect.rotating = false
		},
	}
}

// Corners returns the four polygon corners of a rectangle, or nil for
// other variants.
func (it *Item) Corners() []geo.LatLng {
	if it.rect == nil {
		return nil
	}
	r := it.rect
	frame := geo.LocalFrame(it.position).Multiply(geo.RotationDegrees(r.rotation))
	north, east := r.ySize/2, r.xSize/2
	offsets := [4][2]float64{
		{north, -east},
		{north, east},
		{-north, east},
		{-north, -east},
	}
	corners := make([]geo.LatLng, 4)
	for i, o := range offsets {
		lat, lng := frame.TransformPoint(o[0], o[1])
		corners[i] = geo.LatLng{Lat: lat, Lng: lng}
	}
	return corners
}

// Size returns the rectangle extent in meters (east, north).
func (it *Item) Size() (x, y float64) {
	if it.rect == nil {
		return 0, 0
	}
	return it.rect.xSize, it.rect.ySize
}

// Rotation returns the rectangle rotation in degrees.
func (it *Item) Rotation() float64 {
	if it.rect == nil {
		return 0
	}
	return it.rect.rotation
}

func (it *Item) SetSize(x, y float64) {
	if it.rect == nil {
		return
	}
	it.rect.xSize, it.rect.ySize = x, y
	it.Update()
}

func (it *Item) SetRotation(degrees float64) {
	if it.rect == nil {
		return
	}
	it.rect.rotation = degrees
	it.Update()
}

// onRotateStart anchors a right-button rotation at the current mouse bearing.
func (it *Item) onRotateStart(e render.Event) {
	if e.Button != render.ButtonRight {
		return
	}
	it.host.PushGestureSnapshot()
	it.rect.rotating = true
	it.rect.startRotation = it.rect.rotation - geo.BearingAngle(it.position, e.LatLng)
}

func (it *Item) onRotateMove(e render.Event) {
	if e.Buttons != render.ButtonsRight || !it.rect.rotating {
		return
	}
	it.rect.rotation = math.Mod(it.rect.startRotation+geo.BearingAngle(it.position, e.LatLng), 360.0)
	it.Update()
	it.host.ItemMutated(it)
}
