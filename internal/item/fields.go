package item

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/festmap/festmap/backend-go/internal/document"
)

type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldColor    FieldKind = "color"
	FieldNumber   FieldKind = "number"
	FieldSelect   FieldKind = "select"
	FieldReadonly FieldKind = "readonly"
)

// Field describes one editable property of an item for a property panel.
type Field struct {
	Key     string    `json:"key"`
	Label   string    `json:"label"`
	Kind    FieldKind `json:"kind"`
	Value   string    `json:"value"`
	Options []string  `json:"options,omitempty"`
}

// Fields returns the property descriptors of the item: the shared fields
// followed by the variant's own.
func (it *Item) Fields() []Field {
	fields := []Field{
		{Key: "name", Label: "Name", Kind: FieldText, Value: it.name},
		{Key: "category", Label: "Kategorie", Kind: FieldText, Value: it.category},
		{Key: "color", Label: "Farbe", Kind: FieldColor, Value: it.color},
		{Key: "material", Label: "Material", Kind: FieldText, Value: strings.Join(it.material, ", ")},
	}
	return append(fields, it.variant.fields(it)...)
}

// PrepareField parses value for key without touching the item. The returned
// apply func commits the change; callers record an undo step in between.
func (it *Item) PrepareField(key, value string) (func(), error) {
	switch key {
	case "name":
		if strings.TrimSpace(value) == "" {
			return nil, fmt.Errorf("%s: name must not be empty: %w", it.id, ErrInvalidValue)
		}
		return func() { it.SetName(value) }, nil
	case "category":
		if strings.TrimSpace(value) == "" {
			return nil, fmt.Errorf("%s: category must not be empty: %w", it.id, ErrInvalidValue)
		}
		return func() { it.SetCategory(value) }, nil
	case "color":
		if !isHexColor(value) {
			return nil, fmt.Errorf("%s: color %q: %w", it.id, value, ErrInvalidValue)
		}
		return func() { it.SetColor(value) }, nil
	case "material":
		material := splitMaterial(value)
		return func() { it.SetMaterial(material) }, nil
	}

	apply, ok, err := it.variant.prepare(it, key, value)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s has no field %q: %w", it.kind, key, ErrUnknownField)
	}
	return apply, nil
}

// SetField parses and applies value in one step.
func (it *Item) SetField(key, value string) error {
	apply, err := it.PrepareField(key, value)
	if err != nil {
		return err
	}
	apply()
	return nil
}

func splitMaterial(value string) []string {
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// parseFloat accepts a decimal comma as well as a point.
func parseFloat(key, value string, min float64) (float64, error) {
	v, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(value), ",", ".", 1), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s %q: %w", key, value, ErrInvalidValue)
	}
	if v < min {
		return 0, fmt.Errorf("%s %v below %v: %w", key, v, min, ErrInvalidValue)
	}
	return v, nil
}

func rectangleFields(it *Item) []Field {
	return []Field{
		{Key: "xSize", Label: "Breite", Kind: FieldNumber, Value: formatFloat(it.rect.xSize)},
		{Key: "ySize", Label: "Höhe", Kind: FieldNumber, Value: formatFloat(it.rect.ySize)},
		{Key: "rotation", Label: "Rotation", Kind: FieldNumber, Value: formatFloat(it.rect.rotation)},
	}
}

func prepareRectangleField(it *Item, key, value string) (func(), bool, error) {
	switch key {
	case "xSize", "ySize":
		v, err := parseFloat(key, value, 0)
		if err != nil {
			return nil, true, err
		}
		if key == "xSize" {
			return func() { it.SetSize(v, it.rect.ySize) }, true, nil
		}
		return func() { it.SetSize(it.rect.xSize, v) }, true, nil
	case "rotation":
		v, err := parseFloat(key, value, -360)
		if err != nil {
			return nil, true, err
		}
		return func() { it.SetRotation(v) }, true, nil
	}
	return nil, false, nil
}

func circleFields(it *Item) []Field {
	return []Field{
		{Key: "radius", Label: "Radius", Kind: FieldNumber, Value: formatFloat(it.circle.radius)},
	}
}

func prepareCircleField(it *Item, key, value string) (func(), bool, error) {
	if key != "radius" {
		return nil, false, nil
	}
	v, err := parseFloat(key, value, 0)
	if err != nil {
		return nil, true, err
	}
	return func() { it.SetRadius(v) }, true, nil
}

func pathFields(it *Item) []Field {
	return []Field{
		{Key: "length", Label: "Länge", Kind: FieldReadonly, Value: it.LengthText()},
	}
}

func preparePathField(it *Item, key, value string) (func(), bool, error) {
	if key == "length" {
		return nil, true, fmt.Errorf("length is computed from the vertices: %w", ErrInvalidValue)
	}
	return nil, false, nil
}

func cableFields(it *Item) []Field {
	length := ""
	if v, ok := it.CableLength(); ok {
		length = formatFloat(v)
	}
	options := make([]string, len(document.Currents))
	for i, c := range document.Currents {
		options[i] = string(c)
	}
	return append(pathFields(it),
		Field{Key: "cableLength", Label: "Kabellänge", Kind: FieldNumber, Value: length},
		Field{Key: "current", Label: "Strom", Kind: FieldSelect, Value: string(it.cable.current), Options: options},
	)
}

func prepareCableField(it *Item, key, value string) (func(), bool, error) {
	switch key {
	case "cableLength":
		v, err := parseFloat(key, value, 0)
		if err != nil {
			return nil, true, err
		}
		return func() { it.SetCableLength(v) }, true, nil
	case "current":
		c := document.Current(value)
		if !c.Valid() {
			return nil, true, fmt.Errorf("current %q: %w", value, ErrInvalidValue)
		}
		return func() { it.SetCurrent(c) }, true, nil
	}
	return preparePathField(it, key, value)
}
