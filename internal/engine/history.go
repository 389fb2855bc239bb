package engine

// History is a linear undo stack of full-state snapshots.
//
// cursor counts steps back from the newest snapshot; -1 means the live
// state is at the head and there is nothing to redo.
type History struct {
	steps  [][]byte
	cursor int
	limit  int
}

// NewHistory creates an empty history keeping at most limit snapshots.
// A limit of 0 keeps everything.
func NewHistory(limit int) *History {
	if limit == 1 {
		// undo needs room for the live state next to the step it returns to
		limit = 2
	}
	return &History{cursor: -1, limit: limit}
}

// Push records a snapshot. Any redo branch is discarded first.
func (h *History) Push(snapshot []byte) {
	if h.cursor > -1 {
		h.steps = h.steps[:len(h.steps)-h.cursor-1]
		h.cursor = -1
	}
	h.steps = append(h.steps, snapshot)
	if h.limit > 0 && len(h.steps) > h.limit {
		h.steps = append([][]byte(nil), h.steps[len(h.steps)-h.limit:]...)
	}
}

func (h *History) CanUndo() bool { return len(h.steps)-h.cursor-1 >= 1 }
func (h *History) CanRedo() bool { return h.cursor >= 1 }

// Back moves one step back and returns the snapshot to restore. On the
// first step back from the head, current is called to save the live state
// so that Forward can return to it.
func (h *History) Back(current func() []byte) ([]byte, bool) {
	if !h.CanUndo() {
		return nil, false
	}
	if h.cursor == -1 {
		h.Push(current())
		h.cursor = 0
	}
	h.cursor++
	return h.steps[len(h.steps)-h.cursor-1], true
}

// Forward moves one step towards the newest snapshot.
func (h *History) Forward() ([]byte, bool) {
	if !h.CanRedo() {
		return nil, false
	}
	h.cursor--
	return h.steps[len(h.steps)-h.cursor-1], true
}

// Len returns the number of stored snapshots.
func (h *History) Len() int { return len(h.steps) }

// Cursor returns the number of steps back from the newest snapshot, or -1.
func (h *History) Cursor() int { return h.cursor }

func (h *History) Clear() {
	h.steps = nil
	h.cursor = -1
}
