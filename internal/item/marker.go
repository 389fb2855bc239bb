package item

import (
	"github.com/festmap/festmap/backend-go/internal/document"
	"github.com/festmap/festmap/backend-go/internal/render"
)

// markerVariant backs sockets and plain markers: a point with no extra
// attributes whose selection is not shown by color.
func markerVariant() *variant {
	return &variant{
		primitive: render.KindMarker,
		styled:    false,
		build:     func(*Item, document.Record) {},
		update: func(it *Item) {
			it.handle.SetLatLng(it.position)
		},
		export: func(*Item, *document.Record) {},
		fields: func(*Item) []Field { return nil },
		prepare: func(*Item, string, string) (func(), bool, error) {
			return nil, false, nil
		},
	}
}
