package navigator

// MemoryHistory is an in-process history stack. Pushes always resolve in-process.
type MemoryHistory struct {
	entries []string
	pos     int
}

// NewMemoryHistory creates a history pointing at start.
func NewMemoryHistory(start string) *MemoryHistory {
	return &MemoryHistory{entries: []string{start}}
}

// Location returns the path at the history pointer.
func (h *MemoryHistory) Location() string {
	return h.entries[h.pos]
}

// Push discards any forward entries and appends path.
// POST: Location() == path
func (h *MemoryHistory) Push(path string) bool {
	h.entries = append(h.entries[:h.pos+1], path)
	h.pos = len(h.entries) - 1
	return true
}

// Back moves the pointer one entry back. It reports false at the first entry.
func (h *MemoryHistory) Back() bool {
	if h.pos == 0 {
		return false
	}
	h.pos--
	return true
}

// Forward moves the pointer one entry forward. It reports false at the last entry.
func (h *MemoryHistory) Forward() bool {
	if h.pos == len(h.entries)-1 {
		return false
	}
	h.pos++
	return true
}

// Entries returns a copy of the stack.
func (h *MemoryHistory) Entries() []string {
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}
