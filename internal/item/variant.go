package item

import (
	"github.com/festmap/festmap/backend-go/internal/document"
	"github.com/festmap/festmap/backend-go/internal/geo"
	"github.com/festmap/festmap/backend-go/internal/render"
)

// variant is the per-type behavior table. Shared state lives on Item; each
// variant only adds its own geometry and fields.
type variant struct {
	primitive render.Kind
	// styled variants swap to HighlightColor while selected.
	styled bool

	build  func(it *Item, rec document.Record)
	update func(it *Item)
	export func(it *Item, rec *document.Record)
	fields func(it *Item) []Field
	// prepare parses a variant field; ok is false for keys it does not own.
	prepare func(it *Item, key, value string) (apply func(), ok bool, err error)

	setPosition func(it *Item, pos geo.LatLng)
	onSelect    func(it *Item)
	onDeselect  func(it *Item)
	onAttach    func(it *Item)
	onDetach    func(it *Item)
}

var variants map[document.ItemType]*variant

func init() {
	marker := markerVariant()
	variants = map[document.ItemType]*variant{
		document.ItemTypeRectangle: rectangleVariant(),
		document.ItemTypeCircle:    circleVariant(),
		document.ItemTypePath:      pathVariant(),
		document.ItemTypeCable:     cableVariant(),
		document.ItemTypeSocket:    marker,
		document.ItemTypeMarker:    marker,
	}
}
