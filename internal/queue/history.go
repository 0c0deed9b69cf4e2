package queue

// History keeps a bounded record of recently played track ids, oldest
// first. Pushing past the cap drops the oldest entries.
type History struct {
	ids []string
	cap int
}

// NewHistory creates a history bounded to maxSize entries.
func NewHistory(maxSize int) *History {
	return &History{
		ids: make([]string, 0, maxSize),
		cap: maxSize,
	}
}

// Push records a played track id.
func (h *History) Push(id string) {
	h.ids = append(h.ids, id)
	if len(h.ids) > h.cap {
		excess := len(h.ids) - h.cap
		h.ids = h.ids[excess:]
	}
}

// IDs returns a copy of the recorded ids, oldest first.
func (h *History) IDs() []string {
	out := make([]string, len(h.ids))
	copy(out, h.ids)
	return out
}

// Len returns the number of recorded ids.
func (h *History) Len() int {
	return len(h.ids)
}
