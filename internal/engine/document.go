package engine

import (
	"fmt"

	"github.com/festmap/festmap/backend-go/internal/document"
)

// Export serializes the live items. sep is the indent ("" for compact
// output); includeViewport adds the current map view.
func (m *Manager) Export(sep string, includeViewport bool) ([]byte, error) {
	env := &document.Envelope{Items: m.Records()}
	if includeViewport {
		view := m.renderer.View()
		env.Map = &view
	}
	return document.Encode(env, sep)
}

// Records returns the serialized form of every live item.
func (m *Manager) Records() []document.Record {
	out := make([]document.Record, 0, len(m.items))
	for _, it := range m.items {
		if it != nil {
			out = append(out, it.Export())
		}
	}
	return out
}

// Import decodes data and adds its items to the current ones.
func (m *Manager) Import(data []byte) error {
	env, err := document.Decode("import", data)
	if err != nil {
		return err
	}
	return m.ImportEnvelope(env)
}

// ImportEnvelope adds every record of env and applies its view. It stops at
// the first invalid record; items added before it are kept.
func (m *Manager) ImportEnvelope(env *document.Envelope) error {
	for i, rec := range env.Items {
		if _, err := m.AddItem(rec); err != nil {
			return fmt.Errorf("import item %d: %w", i, err)
		}
	}
	if env.Map != nil {
		m.renderer.SetView(*env.Map)
	}
	return nil
}

// Replace records an undo step, then swaps all items for the content of
// data. Undecodable data leaves the live state untouched.
func (m *Manager) Replace(source string, data []byte) error {
	env, err := document.Decode(source, data)
	if err != nil {
		return err
	}
	return m.ReplaceEnvelope(env)
}

// ReplaceEnvelope records an undo step, then swaps all items for env.
func (m *Manager) ReplaceEnvelope(env *document.Envelope) error {
	m.PushHistorySnapshot()
	m.DeleteAllItems()
	return m.ImportEnvelope(env)
}

// --- History ---

// PushHistorySnapshot records the current items as an undo step. A state
// that cannot be encoded is not recorded.
func (m *Manager) PushHistorySnapshot() {
	data, err := m.snapshot()
	if err != nil {
		m.logger.Error("failed to encode history snapshot", "error", err)
		return
	}
	m.history.Push(data)
}

// Undo restores the previous snapshot. It is a no-op at the oldest one and
// while the live state cannot be encoded.
func (m *Manager) Undo() bool {
	if !m.history.CanUndo() {
		return false
	}
	current, err := m.snapshot()
	if err != nil {
		m.logger.Error("failed to encode history snapshot", "error", err)
		return false
	}
	data, ok := m.history.Back(func() []byte { return current })
	if !ok {
		return false
	}
	m.restore(data)
	return true
}

// Redo returns to the snapshot undone last. It is a no-op at the head.
func (m *Manager) Redo() bool {
	data, ok := m.history.Forward()
	if !ok {
		return false
	}
	m.restore(data)
	return true
}

func (m *Manager) CanUndo() bool { return m.history.CanUndo() }
func (m *Manager) CanRedo() bool { return m.history.CanRedo() }

// History exposes the undo stack for inspection.
func (m *Manager) History() *History { return m.history }

func (m *Manager) snapshot() ([]byte, error) {
	return m.Export("", false)
}

// restore wipes the items and imports a snapshot taken by snapshot.
func (m *Manager) restore(data []byte) {
	m.DeleteAllItems()
	env, err := document.Decode("history", data)
	if err == nil {
		err = m.ImportEnvelope(env)
	}
	if err != nil {
		m.logger.Error("failed to restore history snapshot", "error", err)
	}
}
