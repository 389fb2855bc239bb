package session

import (
	"encoding/json"

	"github.com/festmap/festmap/backend-go/internal/document"
	"github.com/festmap/festmap/backend-go/internal/export"
	"github.com/festmap/festmap/backend-go/internal/geo"
	"github.com/festmap/festmap/backend-go/internal/item"
	"github.com/festmap/festmap/backend-go/internal/render"
)

type Message struct {
	Type     string          `json:"type"`
	ClientID string          `json:"clientId,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload"`
}

const (
	// Connection
	TypeWelcome = "welcome"
	TypeError   = "error"

	// Input from the map widget
	TypeInputClick   = "input.click"
	TypeInputContext = "input.contextmenu"
	TypeInputDrag    = "input.drag"
	TypeInputMap     = "input.map"
	TypeInputKey     = "input.key"

	// Editing
	TypeFieldSet    = "field.set"
	TypeItemAdd     = "item.add"
	TypeViewSet     = "view.set"
	TypeLayerToggle = "layer.toggle"

	// Saves and documents
	TypeSaveStore  = "save.store"
	TypeSaveLoad   = "save.load"
	TypeSaveDelete = "save.delete"
	TypeSaveList   = "save.list"
	TypeDocImport  = "doc.import"
	TypeDocExport  = "doc.export"

	// Server → client state
	TypeSceneDraw = "scene.draw"
	TypeSelection = "selection"
	TypeMaterials = "materials"
	TypeSaves     = "saves"
	TypeExport    = "export"
)

type WelcomePayload struct {
	ClientID string              `json:"clientId"`
	View     document.Viewport   `json:"view"`
	Palette  []document.Template `json:"palette"`
}

type ErrorPayload struct {
	Message string `json:"message"`
	// Payload is the raw data of a corrupt save or import.
	Payload string `json:"payload,omitempty"`
}

// ClickPayload clicks a primitive. An empty ObjectID is a click on the
// empty map.
type ClickPayload struct {
	ObjectID string      `json:"objectId"`
	LatLng   *geo.LatLng `json:"latLng,omitempty"`
	Ctrl     bool        `json:"ctrl"`
}

// DragPayload reports a finished drag of a primitive whose anchor (first
// vertex of a polyline, center otherwise) ended at LatLng.
type DragPayload struct {
	ObjectID string     `json:"objectId"`
	LatLng   geo.LatLng `json:"latLng"`
}

type FieldSetPayload struct {
	ObjectID string `json:"objectId"`
	Key      string `json:"key"`
	Value    string `json:"value"`
}

// ItemAddPayload adds either a palette template at the view center or a
// full record.
type ItemAddPayload struct {
	Template string           `json:"template,omitempty"`
	Record   *document.Record `json:"record,omitempty"`
}

type LayerTogglePayload struct {
	Name    string `json:"name"`
	Visible bool   `json:"visible"`
}

type SavePayload struct {
	Name string `json:"name"`
}

type DocImportPayload struct {
	Data string `json:"data"`
}

type DocExportPayload struct {
	// Separator is the indent of the exported JSON; empty means a tab.
	Separator string `json:"separator,omitempty"`
}

type SceneDrawPayload struct {
	Commands []render.DrawCommand `json:"commands"`
	Layers   []render.LayerState  `json:"layers"`
	View     document.Viewport    `json:"view"`
	CanUndo  bool                 `json:"canUndo"`
	CanRedo  bool                 `json:"canRedo"`
}

type SelectedItem struct {
	ID     string            `json:"id"`
	Type   document.ItemType `json:"type"`
	Fields []item.Field      `json:"fields"`
}

type SelectionPayload struct {
	Items []SelectedItem `json:"items"`
}

type MaterialsPayload struct {
	Counts []export.MaterialCount `json:"counts"`
	Text   string                 `json:"text"`
}

type SavesPayload struct {
	Names []string `json:"names"`
}

type ExportPayload struct {
	Data string `json:"data"`
}

func newMessage(msgType string, payload any) *Message {
	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte("null")
	}
	return &Message{Type: msgType, Payload: data}
}
