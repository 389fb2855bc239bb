package engine

import (
	"github.com/festmap/festmap/backend-go/internal/document"
	"github.com/festmap/festmap/backend-go/internal/geo"
	"github.com/festmap/festmap/backend-go/internal/item"
)

// CopySelected replaces the clipboard with the selected items. Without a
// selection the clipboard is kept.
func (m *Manager) CopySelected() {
	selected := m.Selected()
	if len(selected) == 0 {
		return
	}
	m.clipboard = make([]document.Record, len(selected))
	for i, it := range selected {
		m.clipboard[i] = it.Export()
	}
}

// PasteAt adds a copy of every clipboard record and moves each one to pos.
// All pasted items land on the same point.
func (m *Manager) PasteAt(pos geo.LatLng) ([]*item.Item, error) {
	var pasted []*item.Item
	for _, rec := range m.clipboard {
		it, err := m.AddItem(rec.Clone())
		if err != nil {
			return pasted, err
		}
		it.SetPosition(pos)
		pasted = append(pasted, it)
	}
	return pasted, nil
}

// Clipboard returns a copy of the clipboard records.
func (m *Manager) Clipboard() []document.Record {
	out := make([]document.Record, len(m.clipboard))
	for i, rec := range m.clipboard {
		out[i] = rec.Clone()
	}
	return out
}
