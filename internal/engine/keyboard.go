package engine

import "strings"

// Key is a key press on the map.
type Key struct {
	// Key is the key name as reported by the browser ("Escape", "z", "Delete").
	Key   string `json:"key"`
	Ctrl  bool   `json:"ctrl"`
	Shift bool   `json:"shift"`
}

// HandleKey applies the editor shortcuts. It reports whether the key was
// bound to an action.
func (m *Manager) HandleKey(k Key) bool {
	key := k.Key
	if k.Ctrl {
		key = strings.ToLower(key)
	}
	anySelected := len(m.Selected()) > 0

	switch {
	case key == "Escape":
		m.DeselectAll()
	case k.Ctrl && key == "c":
		m.CopySelected()
	case k.Ctrl && key == "v":
		m.PushHistorySnapshot()
		if _, err := m.PasteAt(m.PasteTarget()); err != nil {
			m.logger.Warn("paste failed", "error", err)
		}
	case k.Ctrl && key == "x":
		if anySelected {
			m.CopySelected()
			m.PushHistorySnapshot()
			m.DeleteSelected()
		}
	case k.Ctrl && key == "z" && !k.Shift:
		m.Undo()
	case k.Ctrl && (key == "y" || (key == "z" && k.Shift)):
		m.Redo()
	case key == "Delete" || key == "Backspace":
		if anySelected {
			m.PushHistorySnapshot()
			m.DeleteSelected()
		}
	default:
		return false
	}
	return true
}
