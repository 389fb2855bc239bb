package engine

import (
	"github.com/festmap/festmap/backend-go/internal/export"
)

// MaterialCounts counts the material entries of all live items.
func (m *Manager) MaterialCounts() []export.MaterialCount {
	lists := make([][]string, 0, len(m.items))
	for _, it := range m.items {
		if it != nil {
			lists = append(lists, it.Materials())
		}
	}
	return export.CountMaterials(lists)
}

// MaterialList returns the bill of materials as "<count>x <name>" lines.
func (m *Manager) MaterialList() string {
	return export.FormatMaterials(m.MaterialCounts())
}
