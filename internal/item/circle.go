package item

import (
	"github.com/festmap/festmap/backend-go/internal/document"
	"github.com/festmap/festmap/backend-go/internal/render"
)

type circle struct {
	radius float64 // meters
}

func circleVariant() *variant {
	return &variant{
		primitive: render.KindCircle,
		styled:    true,
		build: func(it *Item, rec document.Record) {
			it.circle = &circle{radius: *rec.Radius}
		},
		update: func(it *Item) {
			it.handle.SetLatLng(it.position)
			it.handle.SetRadius(it.circle.radius)
		},
		export: func(it *Item, rec *document.Record) {
			rec.Radius = document.Float(it.circle.radius)
		},
		fields:  circleFields,
		prepare: prepareCircleField,
	}
}

// Radius returns the circle radius in meters.
func (it *Item) Radius() float64 {
	if it.circle == nil {
		return 0
	}
	return it.circle.radius
}

func (it *Item) SetRadius(meters float64) {
	if it.circle == nil {
		return
	}
	it.circle.radius = meters
	it.Update()
}
