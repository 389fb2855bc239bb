package document

import "github.com/festmap/festmap/backend-go/internal/geo"

// Template is one entry of the item palette. Templates become rectangles
// placed at the current view center.
type Template struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Color    string  `json:"color"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
}

var palette = []Template{
	{Name: "Biertisch", Category: "Möbel", Color: "#8b5a2b", Width: 2.2, Height: 0.5},
	{Name: "Bierbank", Category: "Möbel", Color: "#a0522d", Width: 2.2, Height: 0.25},
	{Name: "Stehtisch", Category: "Möbel", Color: "#cd853f", Width: 0.8, Height: 0.8},
	{Name: "Zelt 3x3", Category: "Zelte", Color: "#ffffff", Width: 3, Height: 3},
	{Name: "Zelt 6x3", Category: "Zelte", Color: "#f5f5dc", Width: 6, Height: 3},
	{Name: "Zelt 12x6", Category: "Zelte", Color: "#e0e0e0", Width: 12, Height: 6},
	{Name: "Bühne", Category: "Bühne", Color: "#222222", Width: 8, Height: 6},
	{Name: "Theke", Category: "Ausschank", Color: "#1e90ff", Width: 4, Height: 1},
	{Name: "Kühlwagen", Category: "Ausschank", Color: "#4682b4", Width: 6, Height: 2.5},
	{Name: "Toilettenwagen", Category: "Infrastruktur", Color: "#2e8b57", Width: 7, Height: 2.5},
	{Name: "Stromverteiler", Category: "Strom", Color: "#ffd700", Width: 0.6, Height: 0.4},
	{Name: "Bauzaun", Category: "Infrastruktur", Color: "#808080", Width: 3.5, Height: 0.2},
}

// Palette returns a copy of the built-in item templates.
func Palette() []Template {
	return append([]Template(nil), palette...)
}

// FindTemplate looks up a palette entry by name.
func FindTemplate(name string) (Template, bool) {
	for _, t := range palette {
		if t.Name == name {
			return t, true
		}
	}
	return Template{}, false
}

// Record builds the rectangle record for this template at pos.
func (t Template) Record(pos geo.LatLng) Record {
	return Record{
		Type:     ItemTypeRectangle,
		Name:     t.Name,
		Category: t.Category,
		Color:    t.Color,
		Lat:      Float(pos.Lat),
		Lng:      Float(pos.Lng),
		Material: []string{},
		XSize:    Float(t.Width),
		YSize:    Float(t.Height),
		Rotation: Float(0),
	}
}
