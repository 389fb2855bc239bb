package render

import (
	"encoding/json"

	"github.com/festmap/festmap/backend-go/internal/geo"
)

// DrawCommand represents one primitive for the frontend to draw.
// The frontend receives a list of these and mirrors them onto its map widget.
type DrawCommand struct {
	Op        Kind         `json:"op"`                  // polygon, circle, polyline, marker
	ObjectID  string       `json:"objectId"`            // For event correlation
	Layer     string       `json:"layer"`               // Category layer name
	LatLngs   []geo.LatLng `json:"latLngs"`             // Vertices, or the single point of circles and markers
	Radius    float64      `json:"radius,omitempty"`    // Circle radius in meters
	Color     string       `json:"color,omitempty"`     // Stroke/fill color
	Draggable bool         `json:"draggable,omitempty"` // Whether the frontend should allow dragging
	Handle    bool         `json:"handle,omitempty"`    // Path edit handle
	Tooltip   string       `json:"tooltip,omitempty"`   // Hover label
}

// Compile generates the draw command buffer for the visible primitives.
// Commands are in painter's order (back to front), edit handles last.
func (s *Scene) Compile() []DrawCommand {
	nodes := s.visibleNodes()
	commands := make([]DrawCommand, 0, len(nodes))
	for _, n := range nodes {
		commands = append(commands, n.command())
	}
	return commands
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	if commands == nil {
		commands = []DrawCommand{}
	}
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// JSON compiles the scene and serializes the draw commands.
func (s *Scene) JSON() (string, error) {
	return DrawCommandsToJSON(s.Compile())
}
